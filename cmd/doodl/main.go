package main

import (
	"log"
	_ "time/tzdata"

	"github.com/MrSnakeDoc/doodl/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ doodl failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ doodl stopped with error: %v", err)
	}
}
