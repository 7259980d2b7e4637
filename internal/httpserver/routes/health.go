package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register("health", registerHealth) }

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.With(CIDROnly(d)).Get("/readyz", handlers.Readyz(d))
	r.With(CIDROnly(d), HostOnly(d)).Get("/infra", handlers.Infra(d))
}
