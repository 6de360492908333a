package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	SchemaVersion *int   `json:"schema_version,omitempty"`
	Entries       *int   `json:"entries,omitempty"`
	Pending       *int   `json:"pending,omitempty"`
	LastPurge     string `json:"last_purge,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"sqlite":         checkSQLite(ctx, d),
			"metadata_cache": checkMetadataCache(ctx, d),
			"enricher":       checkEnricher(d),
			"import":         checkImport(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if db, ok := components["sqlite"]; ok && !db.OK {
		return "critical"
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkSQLite(ctx context.Context, d deps.Deps) componentStatus {
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Impact: "all-routes-failing", Error: err.Error()}
	}
	version, err := d.Store.SchemaVersion(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true, SchemaVersion: &version}
}

func checkMetadataCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisCache != nil {
		if err := d.RedisCache.Ping(ctx); err != nil {
			return componentStatus{
				OK:     false,
				Mode:   "redis",
				Impact: "previews-uncached",
				Error:  "timeout",
			}
		}
		status := componentStatus{OK: true, Mode: "redis"}
		if entries, err := d.RedisCache.CountMetadata(ctx); err == nil {
			status.Entries = &entries
		}
		return status
	}

	if d.MemoryCache == nil {
		return componentStatus{OK: true, Mode: "disabled", Impact: "previews-uncached"}
	}
	entries := d.MemoryCache.Count()
	lastPurge := "never"
	if t := d.MemoryCache.GetLastPurge(); !t.IsZero() {
		lastPurge = t.Format("2006-01-02 15:04:05")
	}
	return componentStatus{OK: true, Mode: "memory", Entries: &entries, LastPurge: lastPurge}
}

func checkEnricher(d deps.Deps) componentStatus {
	if d.Enricher == nil {
		return componentStatus{OK: false, Impact: "stub-titles-kept", Error: "not running"}
	}
	pending := d.Enricher.Pending()
	return componentStatus{OK: true, Pending: &pending}
}

func checkImport(d deps.Deps) componentStatus {
	if d.ImportFile == "" {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{OK: true, Mode: "file"}
}
