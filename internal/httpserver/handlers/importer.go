package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

type importResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Import triggers a manual link import.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Importer == nil || !d.Importer.Enabled() {
			writeJSON(w, http.StatusNotFound, importResponse{Message: "link import is not configured"})
			return
		}

		if !d.Importer.Trigger() {
			d.Logger.Warn("link import already pending", logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, importResponse{Message: "import already in progress, please wait"})
			return
		}

		d.Logger.Info("manual link import triggered via endpoint", logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusAccepted, importResponse{Triggered: true, Message: "import triggered"})
	}
}
