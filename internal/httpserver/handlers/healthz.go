package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
}

type healthzView struct {
	Status string    `json:"status"`
	Uptime int64     `json:"uptimeSeconds"`
	Build  buildInfo `json:"build"`
}

// Healthz is the liveness probe. It never touches the database.
func Healthz(d deps.Deps) http.HandlerFunc {
	build := buildInfo{Version: d.Version, Commit: d.Commit, BuildDate: d.BuildDate, GoVersion: d.GoVersion}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzView{
			Status: "ok",
			Uptime: int64(d.Now().Sub(d.StartTime).Seconds()),
			Build:  build,
		})
	}
}
