package app

import (
	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

// notifySystemd reports state to systemd for Type=notify units. Without
// NOTIFY_SOCKET it does nothing.
func (a *App) notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	switch {
	case err != nil:
		a.logger.Warn("systemd notification failed", logger.String("state", state), logger.Error(err))
	case sent:
		a.logger.Debug("systemd notified", logger.String("state", state))
	}
}
