package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/MrSnakeDoc/doodl/internal/auth"
	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/logger"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain error kinds to status codes. Anything else is a 500
// with a generic body; the cause is only logged.
func writeError(w http.ResponseWriter, log logger.Logger, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			writeMessage(w, http.StatusBadRequest, domain.Message(err))
		case domain.KindConflict:
			writeMessage(w, http.StatusConflict, domain.Message(err))
		case domain.KindAuth:
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		case domain.KindNotFound:
			writeMessage(w, http.StatusNotFound, "Not found")
		default:
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}

	log.Error("request failed",
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Error(err))
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON reads a JSON object body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if !isJSON(r) {
		return domain.Validation("Content-Type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return domain.Validation("Invalid JSON body")
	}
	return nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func scopeOf(r *http.Request) domain.Scope {
	return auth.ScopeFrom(r.Context())
}
