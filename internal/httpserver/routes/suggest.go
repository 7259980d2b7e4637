package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/mw"
)

func init() { Register("suggest", registerSuggest, CIDROnly, HostOnly) }

// Suggestions hit a paid search API, so they are rate limited per client IP.
func registerSuggest(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.SuggestBurst,
		RefillPerMin: d.SuggestRefillPerMin,
		MaxEntries:   4096,
		TrustProxy:   d.TrustProxy,
	})
	r.With(limit).Get("/api/suggest", handlers.Suggest(d))
}
