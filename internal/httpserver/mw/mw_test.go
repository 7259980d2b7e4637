package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, host, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	if host != "" {
		req.Host = host
	}
	if remote != "" {
		req.RemoteAddr = remote
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"launchpad.local", "*.example.org"}, logger.NewNop())(ok)

	tests := []struct {
		host string
		want int
	}{
		{"launchpad.local", http.StatusOK},
		{"LAUNCHPAD.local:8080", http.StatusOK},
		{"r1.example.org", http.StatusOK},
		{"launchpad.local.", http.StatusOK},
		{"example.org", http.StatusForbidden},
		{"evil.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := serve(h, tt.host, ""); got != tt.want {
				t.Errorf("host %q: got %d, want %d", tt.host, got, tt.want)
			}
		})
	}

	if got := serve(EnforceHost(nil, logger.NewNop())(ok), "anything", ""); got != http.StatusOK {
		t.Errorf("empty list should pass through, got %d", got)
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8", "192.168.1.5"}, false, logger.NewNop())(ok)

	if got := serve(h, "", "10.1.2.3:5555"); got != http.StatusOK {
		t.Errorf("cidr member rejected: %d", got)
	}
	if got := serve(h, "", "192.168.1.5:1"); got != http.StatusOK {
		t.Errorf("exact ip rejected: %d", got)
	}
	if got := serve(h, "", "172.16.0.1:1"); got != http.StatusForbidden {
		t.Errorf("outsider allowed: %d", got)
	}

	open := AllowOnlyCIDRS([]string{" ", ""}, false, logger.NewNop())(ok)
	if got := serve(open, "", "172.16.0.1:1"); got != http.StatusOK {
		t.Errorf("blank list should not filter: %d", got)
	}

	broken := AllowOnlyCIDRS([]string{"10.0.0.0/99"}, false, logger.NewNop())(ok)
	if got := serve(broken, "", "10.1.2.3:1"); got != http.StatusForbidden {
		t.Errorf("unparsable list should deny: %d", got)
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := RateLimit(RateLimitConfig{
		Burst:        2,
		RefillPerMin: 60,
		Now:          func() time.Time { return now },
	})(ok)

	for i := 0; i < 2; i++ {
		if got := serve(h, "", "1.2.3.4:1"); got != http.StatusOK {
			t.Fatalf("request %d: got %d", i, got)
		}
	}
	if got := serve(h, "", "1.2.3.4:1"); got != http.StatusTooManyRequests {
		t.Fatalf("burst exceeded: got %d", got)
	}

	// other clients have their own bucket
	if got := serve(h, "", "5.6.7.8:1"); got != http.StatusOK {
		t.Errorf("second client limited: %d", got)
	}

	// one token per second
	now = now.Add(time.Second)
	if got := serve(h, "", "1.2.3.4:1"); got != http.StatusOK {
		t.Errorf("refill not applied: %d", got)
	}
}

func TestLimiterSweepsFullBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewLimiter(RateLimitConfig{
		Burst:        3,
		RefillPerMin: 60,
		Now:          func() time.Time { return now },
	})

	d := l.Take("a")
	if !d.Allowed || d.Remaining != 2 {
		t.Fatalf("first take = %+v", d)
	}
	l.Take("b")
	l.Take("b")
	l.Take("b")
	d = l.Take("b")
	if d.Allowed || d.RetryAfter != time.Second {
		t.Fatalf("empty bucket = %+v, want retry after 1s", d)
	}

	// three seconds refill a bucket of three completely
	now = now.Add(3 * time.Second)
	l.Take("c")
	if got := l.Len(); got != 1 {
		t.Errorf("Len() = %d, want only the new bucket", got)
	}
	if d := l.Take("a"); !d.Allowed || d.Remaining != 2 {
		t.Errorf("swept bucket should behave as new: %+v", d)
	}
}
