package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/utils"
)

// hostSet holds exact names and "*.example.com" suffixes.
type hostSet struct {
	exact    map[string]struct{}
	suffixes []string // ".example.com"
}

func newHostSet(hosts []string) hostSet {
	s := hostSet{exact: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		h = normalizeHost(h)
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			s.suffixes = append(s.suffixes, h[1:])
		default:
			s.exact[h] = struct{}{}
		}
	}
	return s
}

func (s hostSet) empty() bool {
	return len(s.exact) == 0 && len(s.suffixes) == 0
}

// match ignores case, the port and a trailing dot. A wildcard does not match
// the bare domain.
func (s hostSet) match(host string) bool {
	host = normalizeHost(utils.ParseHostNoPort(host))
	if _, ok := s.exact[host]; ok {
		return true
	}
	for _, suffix := range s.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}

// EnforceHost allows requests only if the Host header is one of allowedHosts.
// An empty list does not filter.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	set := newHostSet(allowedHosts)
	if set.empty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.match(r.Host) {
				log.Warn("host header rejected", logger.String("host", r.Host), logger.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
