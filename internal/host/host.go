// Package host talks to the device the launcher runs on: opening links,
// asking the user, haptics, speech, volume and theme. Each concern has a
// bridge-backed and a local implementation, chosen once by New.
package host

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

// ErrNoHost is returned by Launch when no host can open the link; callers
// fall back to plain page navigation.
var ErrNoHost = errors.New("no host available")

// Prompt describes a confirmation dialog.
type Prompt struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Buttons []string `json:"buttons,omitempty"`
}

type Launcher interface {
	Launch(ctx context.Context, url, name string) error
}

type Dialog interface {
	// Confirm returns true when the user accepted the prompt.
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

type Searcher interface {
	Suggest(ctx context.Context, query string) ([]domain.Suggestion, error)
}

// Device calls are fire-and-forget: failures are logged, never returned.
type Device interface {
	Vibrate(ctx context.Context)
	Say(ctx context.Context, text string)
	SetVolume(ctx context.Context, volume int)
	ApplyTheme(ctx context.Context, t palette.Theme)
}

// Capabilities is the set of collaborators handed to the rest of the app.
type Capabilities struct {
	Launcher Launcher
	Dialog   Dialog
	Searcher Searcher
	Device   Device

	// Bridged is true when a host bridge is configured.
	Bridged bool
}

// New selects implementations from cfg.
func New(cfg *config.Config, log logger.Logger) Capabilities {
	caps := Capabilities{
		Launcher: LocalLauncher{},
		Dialog:   LocalDialog{},
		Searcher: NoopSearcher{},
		Device:   LocalDevice{log: log},
	}

	if cfg.HostBridgeURL != "" {
		b := NewBridge(cfg.HostBridgeURL, cfg.HostTimeout, log)
		caps.Launcher, caps.Dialog, caps.Device = b, b, b
		caps.Bridged = true
		log.Info("host bridge enabled", logger.String("url", cfg.HostBridgeURL))
	} else {
		log.Info("no host bridge configured, using local fallbacks")
	}

	if cfg.SearchURL != "" {
		caps.Searcher = NewSearchClient(cfg.SearchURL, cfg.SearchTimeout)
		log.Info("link suggestions enabled")
	}

	return caps
}

// LocalLauncher cannot open anything itself.
type LocalLauncher struct{}

func (LocalLauncher) Launch(context.Context, string, string) error { return ErrNoHost }

// LocalDialog accepts every prompt; the web UI asks the user before calling in.
type LocalDialog struct{}

func (LocalDialog) Confirm(context.Context, Prompt) (bool, error) { return true, nil }

// NoopSearcher never suggests anything.
type NoopSearcher struct{}

func (NoopSearcher) Suggest(context.Context, string) ([]domain.Suggestion, error) { return nil, nil }

// LocalDevice only logs.
type LocalDevice struct {
	log logger.Logger
}

func (d LocalDevice) Vibrate(context.Context) { d.log.Debug("vibrate") }

func (d LocalDevice) Say(_ context.Context, text string) {
	d.log.Debug("say", logger.String("text", text))
}

func (d LocalDevice) SetVolume(_ context.Context, volume int) {
	d.log.Debug("set volume", logger.Int("volume", volume))
}

func (d LocalDevice) ApplyTheme(_ context.Context, t palette.Theme) {
	d.log.Debug("apply theme", logger.String("theme", t.Name))
}
