package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register("theme", registerTheme, CIDROnly, HostOnly) }

func registerTheme(r chi.Router, d deps.Deps) {
	r.Get("/api/theme", handlers.GetTheme(d))
	r.Put("/api/theme", handlers.ApplyTheme(d))
	r.Delete("/api/theme", handlers.ResetTheme(d))
	r.Post("/api/theme/preview", handlers.PreviewTheme(d))
	r.Get("/api/colors", handlers.Colors(d))
}
