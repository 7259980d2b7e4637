package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

type call struct {
	path string
	body map[string]any
}

func fakeBridge(t *testing.T, status int, reply any) (*httptest.Server, func() []call) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []call
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		calls = append(calls, call{path: r.URL.Path, body: body})
		mu.Unlock()

		w.WriteHeader(status)
		if reply != nil {
			_ = json.NewEncoder(w).Encode(reply)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, func() []call {
		mu.Lock()
		defer mu.Unlock()
		return append([]call(nil), calls...)
	}
}

func TestBridgeLaunch(t *testing.T) {
	ts, calls := fakeBridge(t, http.StatusOK, nil)
	b := NewBridge(ts.URL, time.Second, logger.NewNop())

	require.NoError(t, b.Launch(context.Background(), "https://a.com", "A"))

	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, "/launch", got[0].path)
	assert.Equal(t, "https://a.com", got[0].body["url"])
	assert.Equal(t, "A", got[0].body["name"])
}

func TestBridgeNotImplementedMeansNoHost(t *testing.T) {
	ts, _ := fakeBridge(t, http.StatusNotImplemented, nil)
	b := NewBridge(ts.URL, time.Second, logger.NewNop())

	assert.ErrorIs(t, b.Launch(context.Background(), "https://a.com", "A"), ErrNoHost)
}

func TestBridgeConfirm(t *testing.T) {
	ts, calls := fakeBridge(t, http.StatusOK, map[string]bool{"confirmed": true})
	b := NewBridge(ts.URL, time.Second, logger.NewNop())

	ok, err := b.Confirm(context.Background(), Prompt{Title: "Delete", Message: "Delete A?"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Delete A?", calls()[0].body["message"])
}

func TestBridgeErrorStatus(t *testing.T) {
	ts, _ := fakeBridge(t, http.StatusInternalServerError, nil)
	b := NewBridge(ts.URL, time.Second, logger.NewNop())

	_, err := b.Confirm(context.Background(), Prompt{})
	assert.Error(t, err)
}

func TestBridgeNotificationsSwallowErrors(t *testing.T) {
	ts, calls := fakeBridge(t, http.StatusBadGateway, nil)
	b := NewBridge(ts.URL, time.Second, logger.NewNop())
	ctx := context.Background()

	b.Vibrate(ctx)
	b.Say(ctx, "hello")
	b.SetVolume(ctx, 40)
	b.ApplyTheme(ctx, palette.DefaultTheme(palette.Dark))

	got := calls()
	require.Len(t, got, 4)
	assert.Equal(t, "/theme", got[3].path)
	vars, ok := got[3].body["variables"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "#ff7043", vars["--primary-color"])
}

func TestBridgeUnreachable(t *testing.T) {
	b := NewBridge("http://127.0.0.1:1", 200*time.Millisecond, logger.NewNop())
	assert.Error(t, b.Launch(context.Background(), "https://a.com", "A"))
	b.Vibrate(context.Background())
}

func TestSearchClient(t *testing.T) {
	queries := make(chan string, 2)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"organic_results":[{"title":"Go","link":"https://go.dev"}],"other":1}`))
	}))
	defer ts.Close()

	s := NewSearchClient(ts.URL+"/search?engine=google", time.Second)
	got, err := s.Suggest(context.Background(), " golang ")
	require.NoError(t, err)
	assert.Equal(t, "golang", <-queries)
	require.Len(t, got, 1)
	assert.Equal(t, "https://go.dev", got[0].Link)

	got, err = s.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchClientBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := NewSearchClient(ts.URL, time.Second).Suggest(context.Background(), "go")
	assert.Error(t, err)
}

func TestNewSelectsImplementations(t *testing.T) {
	log := logger.NewNop()

	local := New(&config.Config{}, log)
	assert.False(t, local.Bridged)
	assert.IsType(t, LocalLauncher{}, local.Launcher)
	assert.IsType(t, NoopSearcher{}, local.Searcher)
	assert.ErrorIs(t, local.Launcher.Launch(context.Background(), "https://a.com", "A"), ErrNoHost)

	ok, err := local.Dialog.Confirm(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.True(t, ok)

	bridged := New(&config.Config{
		HostBridgeURL: "http://bridge.local",
		HostTimeout:   time.Second,
		SearchURL:     "http://search.local",
		SearchTimeout: time.Second,
	}, log)
	assert.True(t, bridged.Bridged)
	assert.IsType(t, &Bridge{}, bridged.Launcher)
	assert.IsType(t, &SearchClient{}, bridged.Searcher)
}
