package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/host"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

type linkView struct {
	domain.Link
	Favorite bool    `json:"favorite"`
	Score    float64 `json:"score,omitempty"`
}

// ListLinks returns every link, or the links matching ?q= best first.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		snap := d.State.Snapshot()

		matches := d.State.Search(query)
		out := make([]linkView, 0, len(matches))
		for _, m := range matches {
			out = append(out, linkView{Link: m.Link, Favorite: snap.IsFavorite(m.Link.ID), Score: m.Score})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Link
		if err := decodeJSON(r, &in); err != nil {
			writeError(d, w, r, err)
			return
		}
		in.ID = ""

		l, err := d.State.AddLink(r.Context(), in)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		d.Logger.Info("link added", logger.String("id", l.ID), logger.String("url", l.URL))
		writeJSON(w, http.StatusCreated, linkView{Link: l})
	}
}

func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Link
		if err := decodeJSON(r, &in); err != nil {
			writeError(d, w, r, err)
			return
		}

		id := chi.URLParam(r, "id")
		l, err := d.State.UpdateLink(r.Context(), id, in)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, linkView{Link: l, Favorite: d.State.Snapshot().IsFavorite(id)})
	}
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteLink asks the user to confirm before removing the link.
func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		l, ok := d.State.Link(id)
		if !ok {
			writeError(d, w, r, domain.ErrLinkNotFound)
			return
		}

		confirmed, err := d.Host.Dialog.Confirm(r.Context(), host.Prompt{
			Title:   "Delete link",
			Message: fmt.Sprintf("Delete %q?", l.Description),
			Buttons: []string{"Delete", "Cancel"},
		})
		if err != nil {
			writeError(d, w, r, fmt.Errorf("confirmation failed: %w", asHostError(err)))
			return
		}
		if !confirmed {
			writeJSON(w, http.StatusOK, deleteResponse{Deleted: false})
			return
		}

		if _, err := d.State.DeleteLink(r.Context(), id); err != nil {
			writeError(d, w, r, err)
			return
		}
		d.Logger.Info("link deleted", logger.String("id", id))
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: true})
	}
}

type bulkDeleteRequest struct {
	Mode string   `json:"mode"`
	IDs  []string `json:"ids"`
}

type bulkDeleteResponse struct {
	Deleted bool     `json:"deleted"`
	IDs     []string `json:"ids"`
}

// DeleteLinks removes several links at once. mode "selected" takes ids,
// "all" and "keep-favs" compute the selection from the current state.
func DeleteLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in bulkDeleteRequest
		if err := decodeJSON(r, &in); err != nil {
			writeError(d, w, r, err)
			return
		}
		mode, err := domain.ParseDeleteMode(in.Mode)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		ids, err := d.State.DeleteSelection(mode, in.IDs)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		var msg string
		switch mode {
		case domain.DeleteAll:
			msg = fmt.Sprintf("Delete all %d link(s)?", len(ids))
		case domain.DeleteKeepFavorites:
			msg = fmt.Sprintf("Delete %d non-favorite link(s)?", len(ids))
		default:
			msg = fmt.Sprintf("Delete %d selected link(s)?", len(ids))
		}
		confirmed, err := d.Host.Dialog.Confirm(r.Context(), host.Prompt{
			Title:   "Delete links",
			Message: msg,
			Buttons: []string{"Delete", "Cancel"},
		})
		if err != nil {
			writeError(d, w, r, fmt.Errorf("confirmation failed: %w", asHostError(err)))
			return
		}
		if !confirmed {
			writeJSON(w, http.StatusOK, bulkDeleteResponse{Deleted: false, IDs: []string{}})
			return
		}

		removed, err := d.State.DeleteLinks(r.Context(), ids)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		out := make([]string, 0, len(removed))
		for _, l := range removed {
			out = append(out, l.ID)
		}
		d.Logger.Info("links deleted", logger.String("mode", string(mode)), logger.Int("count", len(out)))
		d.Host.Device.Say(r.Context(), "Links deleted.")
		writeJSON(w, http.StatusOK, bulkDeleteResponse{Deleted: true, IDs: out})
	}
}

type favoriteResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		on, err := d.State.ToggleFavorite(r.Context(), id)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		d.Host.Device.Vibrate(r.Context())
		writeJSON(w, http.StatusOK, favoriteResponse{ID: id, Favorite: on})
	}
}

func ListFavorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.State.Favorites())
	}
}

// ClearFavorites asks the user to confirm before emptying the quick-launch list.
func ClearFavorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirmed, err := d.Host.Dialog.Confirm(r.Context(), host.Prompt{
			Title:   "Clear favorites",
			Message: "Remove every link from quick launch?",
			Buttons: []string{"Clear", "Cancel"},
		})
		if err != nil {
			writeError(d, w, r, fmt.Errorf("confirmation failed: %w", asHostError(err)))
			return
		}
		if !confirmed {
			writeJSON(w, http.StatusOK, deleteResponse{Deleted: false})
			return
		}

		if err := d.State.ClearFavorites(r.Context()); err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: true})
	}
}

// LaunchLink asks the host to open the link. Without a host the client is
// redirected to the URL instead.
func LaunchLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		l, ok := d.State.Link(id)
		if !ok {
			writeError(d, w, r, domain.ErrLinkNotFound)
			return
		}

		err := d.Host.Launcher.Launch(r.Context(), l.URL, l.Description)
		switch {
		case errors.Is(err, host.ErrNoHost):
			d.Logger.Debug("no host launcher, redirecting", logger.String("url", l.URL))
			http.Redirect(w, r, l.URL, http.StatusFound)
		case err != nil:
			writeError(d, w, r, fmt.Errorf("launch failed: %w", asHostError(err)))
		default:
			d.Logger.Info("link launched", logger.String("id", id), logger.String("url", l.URL))
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

// asHostError marks collaborator failures as upstream errors.
func asHostError(err error) error {
	return fmt.Errorf("%w: %w", errUpstream, err)
}
