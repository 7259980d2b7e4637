package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
)

// State returns the full launcher state for the presentation layer.
func State(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.State.Snapshot())
	}
}

type viewRequest struct {
	View string `json:"view"`
}

func SetView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in viewRequest
		if err := decodeJSON(r, &in); err != nil {
			writeError(d, w, r, err)
			return
		}
		v, err := d.State.SetView(r.Context(), domain.View(in.View))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, viewRequest{View: string(v)})
	}
}

type collapsedResponse struct {
	Category  string `json:"category,omitempty"`
	Collapsed bool   `json:"collapsed"`
}

func ToggleCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		collapsed, err := d.State.ToggleCategory(r.Context(), name)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, collapsedResponse{Category: name, Collapsed: collapsed})
	}
}

func CollapseAll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collapsed, err := d.State.CollapseAll(r.Context())
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, collapsedResponse{Collapsed: collapsed})
	}
}

type volumeRequest struct {
	Volume float64 `json:"volume"`
}

type volumeResponse struct {
	Volume int `json:"volume"`
}

// SetVolume clamps to 0-100. Failing to store the value does not fail the request.
func SetVolume(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in volumeRequest
		if err := decodeJSON(r, &in); err != nil {
			writeError(d, w, r, err)
			return
		}
		v, err := d.State.SetVolume(r.Context(), domain.ClampVolume(in.Volume))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, volumeResponse{Volume: v})
	}
}
