package mw

import (
	"net/http"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/utils"
)

// EnforceHost rejects requests whose Host header matches none of the allowed
// patterns. An empty list is a passthrough.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.ContainsFunc(allowedHosts, func(p string) bool { return matchHost(r.Host, p) }) {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("host rejected", logger.String("host", r.Host), logger.String("path", r.URL.Path))
			writeError(w, http.StatusForbidden, "Forbidden")
		})
	}
}

// matchHost compares host, port stripped and case folded, with an exact
// pattern or a "*.example.com" wildcard. The wildcard does not match the apex.
func matchHost(host, pattern string) bool {
	host = strings.ToLower(utils.ParseHostNoPort(host))
	pattern = strings.ToLower(pattern)

	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return strings.HasSuffix(host, suffix) && len(host) > len(suffix)
	}
	return host == pattern
}
