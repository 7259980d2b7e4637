package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register("prefs", registerPrefs, CIDROnly, HostOnly) }

func registerPrefs(r chi.Router, d deps.Deps) {
	r.Get("/api/state", handlers.State(d))
	r.Put("/api/view", handlers.SetView(d))
	r.Post("/api/categories/collapse-all", handlers.CollapseAll(d))
	r.Post("/api/categories/{name}/toggle", handlers.ToggleCategory(d))
	r.Put("/api/volume", handlers.SetVolume(d))
}
