package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

type themeResponse struct {
	palette.Theme
	Variables map[string]string `json:"variables"`
}

func newThemeResponse(t palette.Theme) themeResponse {
	return themeResponse{Theme: t, Variables: t.Palette.CSSVariables()}
}

func GetTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newThemeResponse(d.State.Theme()))
	}
}

// PreviewTheme generates a palette without applying it.
func PreviewTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req palette.Request
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		t, err := d.State.PreviewTheme(req)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newThemeResponse(t))
	}
}

// ApplyTheme generates and activates a theme. A rejected color leaves the
// current theme in place.
func ApplyTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req palette.Request
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}
		t, err := d.State.ApplyTheme(r.Context(), req)
		if err != nil {
			d.Logger.Debug("theme not applied", logger.String("color", req.Color.String()), logger.Error(err))
			writeError(d, w, r, err)
			return
		}
		d.Logger.Info("theme applied", logger.String("theme", t.Name), logger.String("mode", string(t.Mode)))
		writeJSON(w, http.StatusOK, newThemeResponse(t))
	}
}

// ResetTheme restores the built-in theme; ?mode= picks light or dark.
func ResetTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := palette.ParseMode(r.URL.Query().Get("mode"))
		t, err := d.State.ResetTheme(r.Context(), mode)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newThemeResponse(t))
	}
}

type colorEntry struct {
	Name  string `json:"name"`
	Hex   string `json:"hex"`
	Dark  bool   `json:"dark"`
	Light bool   `json:"light"`
}

// Colors lists the recognised color names and whether each one passes the
// contrast gate in each mode. The table is static, so it is built once.
func Colors(d deps.Deps) http.HandlerFunc {
	names := palette.Names()
	table := make([]colorEntry, 0, len(names))
	for _, name := range names {
		spec := palette.NameSpec(name)
		c, ok := palette.Resolve(spec)
		if !ok {
			continue
		}
		_, darkErr := palette.Generate(spec, palette.Dark, palette.ModifierNone)
		_, lightErr := palette.Generate(spec, palette.Light, palette.ModifierNone)
		table = append(table, colorEntry{
			Name:  name,
			Hex:   c.Hex(),
			Dark:  darkErr == nil,
			Light: lightErr == nil,
		})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, table)
	}
}
