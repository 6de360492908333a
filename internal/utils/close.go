package utils

import (
	"io"

	"github.com/MrSnakeDoc/doodl/internal/logger"
)

// Close closes c and ignores the error. For deferred cleanup of readers.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure under name.
func CloseLogged(c io.Closer, name string, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close",
			logger.String("component", name),
			logger.Error(err))
	}
}
