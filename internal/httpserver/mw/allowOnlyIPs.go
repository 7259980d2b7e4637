package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/utils"
)

// AllowOnlyCIDRS restricts access to the given IPs and CIDRs. An empty list
// does not filter. A list where no entry parses denies everything.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	configured := 0
	for _, a := range allowed {
		if strings.TrimSpace(a) != "" {
			configured++
		}
	}
	if configured == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	m := utils.NewIPMatcher(allowed)
	if m.Len() < configured {
		log.Warn("ignoring unparsable allowed CIDR entries",
			logger.Strings("allowed", allowed),
			logger.Int("parsed", m.Len()))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("client ip rejected",
					logger.String("ip", ip),
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
