package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register("links", registerLinks, CIDROnly, HostOnly) }

func registerLinks(r chi.Router, d deps.Deps) {
	r.Get("/api/links", handlers.ListLinks(d))
	r.Post("/api/links", handlers.CreateLink(d))
	r.Post("/api/links/delete", handlers.DeleteLinks(d))
	r.Put("/api/links/{id}", handlers.UpdateLink(d))
	r.Delete("/api/links/{id}", handlers.DeleteLink(d))
	r.Post("/api/links/{id}/favorite", handlers.ToggleFavorite(d))
	r.Post("/api/links/{id}/launch", handlers.LaunchLink(d))
	r.Get("/api/favorites", handlers.ListFavorites(d))
	r.Delete("/api/favorites", handlers.ClearFavorites(d))
}
