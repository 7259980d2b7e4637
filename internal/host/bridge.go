package host

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

// Bridge forwards calls to the host SDK bridge over HTTP. Every call is a
// JSON POST to <base>/<action>.
type Bridge struct {
	base   string
	client *http.Client
	log    logger.Logger
}

func NewBridge(baseURL string, timeout time.Duration, log logger.Logger) *Bridge {
	return &Bridge{
		base:   baseURL,
		client: newHTTPClient(timeout),
		log:    log,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:    4,
			IdleConnTimeout: 90 * time.Second,
		},
	}
}

func (b *Bridge) post(ctx context.Context, action string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+"/"+action, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("host %s: %w", action, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotImplemented {
		return ErrNoHost
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("host %s: status %d: %s", action, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	return nil
}

func (b *Bridge) Launch(ctx context.Context, url, name string) error {
	return b.post(ctx, "launch", map[string]string{"url": url, "name": name}, nil)
}

func (b *Bridge) Confirm(ctx context.Context, p Prompt) (bool, error) {
	var out struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := b.post(ctx, "confirm", p, &out); err != nil {
		return false, err
	}
	return out.Confirmed, nil
}

// notify runs a fire-and-forget call.
func (b *Bridge) notify(ctx context.Context, action string, in any) {
	if err := b.post(ctx, action, in, nil); err != nil {
		b.log.Warn("host notification failed", logger.String("action", action), logger.Error(err))
	}
}

func (b *Bridge) Vibrate(ctx context.Context) {
	b.notify(ctx, "vibrate", struct{}{})
}

func (b *Bridge) Say(ctx context.Context, text string) {
	b.notify(ctx, "say", map[string]string{"text": text})
}

func (b *Bridge) SetVolume(ctx context.Context, volume int) {
	b.notify(ctx, "volume", map[string]int{"volume": volume})
}

func (b *Bridge) ApplyTheme(ctx context.Context, t palette.Theme) {
	b.notify(ctx, "theme", map[string]any{
		"name":      t.Name,
		"mode":      t.Mode,
		"variables": t.Palette.CSSVariables(),
	})
}
