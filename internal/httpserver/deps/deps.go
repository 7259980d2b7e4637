package deps

import (
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/host"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/migrate"
	"github.com/MrSnakeDoc/launchpad/internal/scheduler"
	"github.com/MrSnakeDoc/launchpad/internal/state"
	"github.com/MrSnakeDoc/launchpad/internal/store"
)

type Deps struct {
	Logger              logger.Logger
	StartTime           time.Time
	Version             string
	Commit              string
	BuildDate           string
	GoVersion           string
	TimeNow             func() time.Time    // for testing, defaults to time.Now
	AllowedHosts        []string            // Host headers allowed to access the server
	AllowedCIDRS        []string            // IPs allowed to access the server
	TrustProxy          bool                // true if running behind a trusted reverse proxy (e.g., cloudflared)
	SuggestBurst        int                 // rate limit burst for /api/suggest
	SuggestRefillPerMin int                 // rate limit refill for /api/suggest
	Repo                *store.Repository   // current-schema storage
	Reconciler          *migrate.Reconciler // legacy storage migration
	State               *state.Manager      // live launcher state
	Host                host.Capabilities   // host collaborators
	Importer            *scheduler.Importer // Homepage link import (may be disabled)
}
