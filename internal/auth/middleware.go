package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/logger"
)

// UserStore links identities to local accounts.
type UserStore interface {
	ResolveUser(ctx context.Context, id domain.Identity) (domain.Scope, error)
	EnsureUser(ctx context.Context, id domain.Identity) (domain.Scope, error)
}

// KeyStore looks API keys up by hash.
type KeyStore interface {
	LookupAPIKey(ctx context.Context, hash string) (*domain.APIKey, error)
	TouchAPIKey(ctx context.Context, id string) error
}

// Session resolves the proxy-asserted identity into a scope.
// Safe methods only look the account up; other methods create or refresh it.
// Requests without an identity continue anonymously.
func Session(p Provider, users UserStore, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := p.Identity(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			var (
				scope domain.Scope
				err   error
			)
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				scope, err = users.ResolveUser(r.Context(), id)
			default:
				scope, err = users.EnsureUser(r.Context(), id)
			}
			if err != nil {
				log.Error("failed to resolve session user", logger.Error(err))
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

// APIKey authenticates "Authorization: Bearer <token>". The key use is
// recorded only when the handler answers 2xx. Any auth failure answers 401
// without detail.
func APIKey(keys KeyStore, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			key, err := keys.LookupAPIKey(r.Context(), domain.HashAPIKey(token))
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					log.Error("failed to lookup api key", logger.Error(err))
				}
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(WithScope(r.Context(), domain.ScopeFor(key.UserID))))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status < 200 || status >= 300 {
				return
			}
			if err := keys.TouchAPIKey(context.WithoutCancel(r.Context()), key.ID); err != nil {
				log.Warn("failed to record api key use",
					logger.String("key_prefix", key.Prefix),
					logger.Error(err))
			}
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
