package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line), sc.Text())
		out = append(out, line)
	}
	return out
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchpad.log")
	log := New(Options{Level: "info", File: path, MaxSizeMB: 1})

	log.Debug("hidden")
	log.With(String("component", "test")).Info("hello", Int("links", 3))
	_ = log.Sync()

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0]["msg"])
	assert.Equal(t, "test", lines[0]["component"])
	assert.EqualValues(t, 3, lines[0]["links"])
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if got := parseLevel(lvl); got == nil || got.String() != lvl {
			t.Errorf("parseLevel(%q) = %v", lvl, got)
		}
	}
	if parseLevel("verbose") != nil {
		t.Error("unknown level should be nil")
	}
}
