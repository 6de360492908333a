package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/utils"
)

// AllowOnlyCIDRS admits only clients inside the given IPs/CIDRs. An empty list is a passthrough.
// The app routes rely on it so that forward-auth headers can only come from the trusted proxy.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if m.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("client rejected",
				logger.String("ip", ip),
				logger.String("remote_addr", r.RemoteAddr),
				logger.String("path", r.URL.Path))
			writeError(w, http.StatusForbidden, "Forbidden")
		})
	}
}
