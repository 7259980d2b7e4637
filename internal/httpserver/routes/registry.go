package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/mw"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
	// Layer builds a middleware once the dependencies are known.
	Layer func(d deps.Deps) Middleware
)

type entry struct {
	name   string
	reg    Registrar
	layers []Layer
}

var registry []entry

// Register adds a named route group, wrapped in layers outermost first.
// Route files call it from init.
func Register(name string, reg Registrar, layers ...Layer) {
	registry = append(registry, entry{name: name, reg: reg, layers: layers})
}

// RegisterAll mounts every group. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		sub := r
		if len(e.layers) > 0 {
			mws := make([]Middleware, 0, len(e.layers))
			for _, l := range e.layers {
				mws = append(mws, l(d))
			}
			sub = r.With(mws...)
		}
		e.reg(sub, d)
		d.Logger.Debug("routes registered", logger.String("group", e.name), logger.Int("layers", len(e.layers)))
	}
}

// CIDROnly restricts a group to the allowed client IPs.
func CIDROnly(d deps.Deps) Middleware {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}

// HostOnly restricts a group to the allowed Host headers.
func HostOnly(d deps.Deps) Middleware {
	return mw.EnforceHost(d.AllowedHosts, d.Logger)
}
