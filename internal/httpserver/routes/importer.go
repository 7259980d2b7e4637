package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register("import", registerImport, CIDROnly, HostOnly) }

func registerImport(r chi.Router, d deps.Deps) {
	r.Post("/api/import", handlers.Import(d))
}
