package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

// Suggest returns web results for ?q= that are not saved yet.
func Suggest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeJSON(w, http.StatusOK, []domain.Suggestion{})
			return
		}

		raw, err := d.Host.Searcher.Suggest(r.Context(), query)
		if err != nil {
			d.Logger.Warn("suggestion search failed", logger.String("query", query), logger.Error(err))
			writeError(d, w, r, fmt.Errorf("search failed: %w", asHostError(err)))
			return
		}

		out := d.State.FilterSuggestions(raw)
		if out == nil {
			out = []domain.Suggestion{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}
