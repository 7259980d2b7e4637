package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/launchpad/internal/kv"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/migrate"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
	"github.com/MrSnakeDoc/launchpad/internal/state"
	"github.com/MrSnakeDoc/launchpad/internal/store"
)

// flakyGetStore fails the first read of one key.
type flakyGetStore struct {
	*kv.MemoryStore
	key    string
	failed atomic.Bool
}

func (s *flakyGetStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == s.key && s.failed.CompareAndSwap(false, true) {
		return nil, errors.New("i/o timeout")
	}
	return s.MemoryStore.Get(ctx, key)
}

type quietDevice struct{}

func (quietDevice) Vibrate(context.Context)                   {}
func (quietDevice) Say(context.Context, string)               {}
func (quietDevice) SetVolume(context.Context, int)            {}
func (quietDevice) ApplyTheme(context.Context, palette.Theme) {}

func TestFailedMigrationKeepsSamplesOut(t *testing.T) {
	s := &flakyGetStore{
		MemoryStore: kv.NewMemoryStoreWith(map[string]string{
			migrate.KeyLinks: `[{"id":"u1","url":"https://mine.example"}]`,
		}),
		key: migrate.KeyLuminanceMode,
	}
	ctx := context.Background()
	log := logger.NewNop()
	repo := store.New(s)
	rec := migrate.New(repo, log, migrate.Options{})
	manager := state.New(repo, quietDevice{}, log, 80)

	err := startState(ctx, rec, manager, log)
	require.ErrorIs(t, err, store.ErrPersistence)
	assert.False(t, manager.Loaded())
	assert.False(t, rec.Done())

	// a direct load is refused too
	require.ErrorIs(t, manager.Load(ctx), state.ErrNotMigrated)
	_, found, err := repo.Links(ctx)
	require.NoError(t, err)
	assert.False(t, found, "sample links must not be seeded before migration")

	require.NoError(t, retryStartState(ctx, rec, manager, log, time.Millisecond, 10*time.Millisecond))
	assert.True(t, rec.Done())
	require.True(t, manager.Loaded())

	links := manager.Snapshot().Links
	require.Len(t, links, 1)
	assert.Equal(t, "u1", links[0].ID)
	assert.Equal(t, "https://mine.example", links[0].URL)
}

func TestRetryStopsWithContext(t *testing.T) {
	s := kv.NewMemoryStore()
	log := logger.NewNop()
	repo := store.New(s)
	rec := migrate.New(repo, log, migrate.Options{LockWait: 0})
	manager := state.New(repo, quietDevice{}, log, 80)

	// another process holds the lock for the whole test
	lease, err := s.Lock(context.Background(), store.KeyMigrationLock, time.Minute)
	require.NoError(t, err)
	defer func() { _ = lease.Release(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = retryStartState(ctx, rec, manager, log, time.Millisecond, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, manager.Loaded())
}
