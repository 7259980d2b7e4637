package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/host"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
	"github.com/MrSnakeDoc/launchpad/internal/state"
	"github.com/MrSnakeDoc/launchpad/internal/store"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}

var (
	errBadRequest = errors.New("malformed request body")
	errUpstream   = errors.New("host collaborator failed")
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateLink),
		errors.Is(err, domain.ErrNothingToDelete):
		return http.StatusConflict
	case errors.Is(err, palette.ErrInvalidColor),
		errors.Is(err, palette.ErrPaletteRejected),
		errors.Is(err, domain.ErrInvalidLink),
		errors.Is(err, domain.ErrUnknownDeleteMode),
		errors.Is(err, domain.ErrInvalidURL):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrPersistence),
		errors.Is(err, state.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, errUpstream), errors.Is(err, host.ErrNoHost):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and answers with a message the UI can show.
func writeError(d deps.Deps, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
		if status == http.StatusInternalServerError {
			msg = http.StatusText(status)
		}
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
