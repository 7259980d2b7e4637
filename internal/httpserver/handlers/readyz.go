package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready     bool   `json:"ready"`
	Storage   bool   `json:"storage"`
	Migration string `json:"migration"`
	State     bool   `json:"state"`
}

// Readyz is ready once storage answers, the legacy migration finished and
// the state is loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := readyzResponse{
			Storage:   d.Repo.Ping(ctx) == nil,
			Migration: string(d.Reconciler.Phase()),
			State:     d.State.Loaded(),
		}
		resp.Ready = resp.Storage && d.Reconciler.Done() && resp.State

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
