package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/migrate"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	Backend     string `json:"backend,omitempty"`
	Phase       string `json:"phase,omitempty"`
	LinksLoaded *int   `json:"links_loaded,omitempty"`
	LastImport  string `json:"last_import,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links := len(d.State.Snapshot().Links)

		components := map[string]componentStatus{
			"storage": checkStorage(r.Context(), d),
			"migration": {
				OK:    d.Reconciler.Done(),
				Phase: string(d.Reconciler.Phase()),
			},
			"links": {
				OK:          d.State.Loaded(),
				LinksLoaded: &links,
			},
			"host":   hostStatus(d),
			"import": importStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

// overallStatus is critical when the user's data is unreachable and degraded
// when only collaborators are missing.
func overallStatus(components map[string]componentStatus) string {
	for _, name := range []string{"storage", "migration", "links"} {
		if c, ok := components[name]; ok && !c.OK {
			return "critical"
		}
	}
	for _, name := range []string{"host", "import"} {
		if c, ok := components[name]; ok && !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := componentStatus{OK: true, Backend: d.Repo.Backend()}
	if err := d.Repo.Ping(ctx); err != nil {
		status.OK = false
		status.Error = err.Error()
	}
	if d.Reconciler.Phase() == migrate.PhaseFailed {
		status.Impact = "legacy-migration-pending"
	}
	return status
}

func hostStatus(d deps.Deps) componentStatus {
	if !d.Host.Bridged {
		return componentStatus{
			OK:     true,
			Mode:   "local",
			Impact: "launch-falls-back-to-navigation",
		}
	}
	return componentStatus{OK: true, Mode: "bridge"}
}

func importStatus(d deps.Deps) componentStatus {
	if d.Importer == nil || !d.Importer.Enabled() {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	last, ok := d.Importer.Last()
	if !ok {
		return componentStatus{OK: true, Mode: "enabled", LastImport: "never"}
	}
	status := componentStatus{
		OK:         len(last.Failed) < last.Files,
		Mode:       "enabled",
		LastImport: last.At.Format("2006-01-02 15:04:05"),
	}
	if len(last.Failed) > 0 {
		status.Error = "unreadable files: " + strings.Join(last.Failed, ", ")
	}
	return status
}
