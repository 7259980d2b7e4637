package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/launchpad/internal/kv"
	"github.com/MrSnakeDoc/launchpad/internal/migrate"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
	"github.com/MrSnakeDoc/launchpad/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPaletteJSON(t *testing.T) {
	out, err := run(t, "palette", "#3366cc", "--modifier", "vibrant", "--json")
	require.NoError(t, err)

	var th struct {
		Name      string            `json:"name"`
		Mode      string            `json:"mode"`
		Palette   map[string]string `json:"palette"`
		Variables map[string]string `json:"variables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &th))
	assert.Equal(t, "custom:#3366cc:vibrant", th.Name)
	assert.Equal(t, "dark", th.Mode)
	assert.Equal(t, "#1e5bd4", th.Palette[string(palette.Primary)])
	assert.Equal(t, "#1e5bd4", th.Variables["--primary-color"])
}

func TestPaletteSwatches(t *testing.T) {
	out, err := run(t, "palette", "teal", "--mode", "light")
	require.NoError(t, err)
	assert.Contains(t, out, "custom:teal")
	for _, role := range palette.Roles {
		assert.Contains(t, out, string(role))
	}
}

func TestPaletteRejected(t *testing.T) {
	_, err := run(t, "palette", "navy")
	assert.ErrorIs(t, err, palette.ErrPaletteRejected)

	_, err = run(t, "palette", "notacolor")
	assert.ErrorIs(t, err, palette.ErrInvalidColor)

	_, err = run(t, "palette")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "launchpad "))
}

func TestMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchpad.db")
	t.Setenv("LAUNCHPAD_STORAGE", "sqlite")
	t.Setenv("LAUNCHPAD_SQLITE_PATH", path)
	t.Setenv("LAUNCHPAD_LOG_LEVEL", "error")

	ctx := context.Background()
	s, err := kv.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "lp_links", []byte(`[{"url":"https://a.com","description":"A"}]`)))
	require.NoError(t, s.Close())

	out, err := run(t, "migrate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN")

	out, err = run(t, "migrate", "--json")
	require.NoError(t, err)
	var report migrate.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, migrate.PhaseMigrated, report.Phase)
	assert.Equal(t, 1, report.LinksAdded)
	assert.Equal(t, []string{"lp_links"}, report.Scanned)

	out, err = run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to migrate.")

	s, err = kv.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	links, found, err := store.New(s).Links(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "https://a.com", links[0].URL)
}

func TestCSSBlock(t *testing.T) {
	css := cssBlock(palette.DefaultTheme(palette.Dark))
	assert.True(t, strings.HasPrefix(css, ":root {\n"))
	assert.Contains(t, css, "  --primary-color: #ff7043;\n")
	assert.True(t, strings.HasSuffix(css, "}\n"))
}
