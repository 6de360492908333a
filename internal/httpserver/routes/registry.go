package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
)

// Registrar mounts one route group. Registrars receive the deps at mount
// time and attach their own middlewares.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a route group. Called from init, so a new file is all a group needs.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered group. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
