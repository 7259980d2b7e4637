package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/migrate"
)

type healthzResponse struct {
	Status        string        `json:"status"`
	UptimeSeconds float64       `json:"uptime_seconds"`
	Storage       string        `json:"storage,omitempty"`
	Migration     migrate.Phase `json:"migration,omitempty"`
	Version       string        `json:"version,omitempty"`
	Commit        string        `json:"commit,omitempty"`
	BuildDate     string        `json:"build_date,omitempty"`
	GoVersion     string        `json:"go_version,omitempty"`
}

// Healthz is the liveness probe. It never touches storage; the backend name
// and migration phase come from memory.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthzResponse{
			Status:        "ok",
			UptimeSeconds: now().Sub(d.StartTime).Seconds(),
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		}
		if d.Repo != nil {
			resp.Storage = d.Repo.Backend()
		}
		if d.Reconciler != nil {
			resp.Migration = d.Reconciler.Phase()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
