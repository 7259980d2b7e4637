package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/kv"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

// failingStore fails every operation.
type failingStore struct{ kv.Store }

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingStore) Set(context.Context, string, []byte) error   { return errors.New("disk gone") }

func TestLinksRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := New(kv.NewMemoryStore())

	_, found, err := r.Links(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	links := []domain.Link{{ID: "1", Description: "A", URL: "https://a.com", Category: "Tools"}}
	require.NoError(t, r.SaveLinks(ctx, links))

	got, found, err := r.Links(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, links, got)
}

func TestNilSlicesAreStoredAsEmptyArrays(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	r := New(mem)

	require.NoError(t, r.SaveFavorites(ctx, nil))
	raw, err := mem.Get(ctx, KeyFavorites)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestViewAndVolume(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	r := New(mem)

	require.NoError(t, r.SaveView(ctx, "GROUP"))
	v, found, err := r.View(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.ViewGroup, v)

	require.NoError(t, mem.Set(ctx, KeyVolume, []byte("142.6")))
	vol, found, err := r.Volume(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 100, vol)
}

func TestSaveThemeRejectsIncomplete(t *testing.T) {
	ctx := context.Background()
	r := New(kv.NewMemoryStore())

	err := r.SaveTheme(ctx, palette.Theme{Name: "broken", Palette: palette.Palette{palette.Primary: "#ffffff"}})
	assert.ErrorIs(t, err, palette.ErrIncomplete)

	th := palette.DefaultTheme(palette.Light)
	require.NoError(t, r.SaveTheme(ctx, th))
	got, found, err := r.Theme(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, th, got)
}

func TestCorruptValue(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStoreWith(map[string]string{KeyLinks: "{not json"})
	r := New(mem)

	_, _, err := r.Links(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestPersistenceErrors(t *testing.T) {
	ctx := context.Background()
	r := New(failingStore{})

	_, _, err := r.Links(ctx)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, r.SaveFavorites(ctx, []string{"1"}), ErrPersistence)
	_, err = r.Migrated(ctx)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestMigratedFlag(t *testing.T) {
	ctx := context.Background()
	r := New(kv.NewMemoryStore())

	ok, err := r.Migrated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.MarkMigrated(ctx))
	ok, err = r.Migrated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMergeLegacyBackup(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStoreWith(map[string]string{
		KeyLegacyBackup: `{"old":"kept","shared":1}`,
	})
	r := New(mem)

	require.NoError(t, r.MergeLegacyBackup(ctx, map[string]json.RawMessage{
		"shared": json.RawMessage(`2`),
		"new":    RawJSON([]byte("not json")),
	}))

	b, err := r.LegacyBackup(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `"kept"`, string(b["old"]))
	assert.JSONEq(t, `2`, string(b["shared"]))
	assert.JSONEq(t, `"not json"`, string(b["new"]))
}

func TestMergeLegacyBackupKeepsCorruptArchive(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStoreWith(map[string]string{KeyLegacyBackup: "garbage"})
	r := New(mem)

	require.NoError(t, r.MergeLegacyBackup(ctx, map[string]json.RawMessage{"k": json.RawMessage(`true`)}))

	b, err := r.LegacyBackup(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `"garbage"`, string(b[KeyLegacyBackup]))
	assert.JSONEq(t, `true`, string(b["k"]))
}

func TestMergeLegacyBackupNoEntries(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	require.NoError(t, New(mem).MergeLegacyBackup(ctx, nil))
	assert.Equal(t, 0, mem.Len())
}
