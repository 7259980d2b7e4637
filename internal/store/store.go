// Package store reads and writes the current storage schema on top of a
// kv.Store. Every value is JSON encoded under the keys in keys.go.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/kv"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
)

var (
	// ErrPersistence wraps every failure of the underlying storage.
	ErrPersistence = errors.New("storage unavailable")
	// ErrCorrupt is returned when a stored value cannot be decoded.
	ErrCorrupt = errors.New("stored value is corrupt")
)

// Repository gives typed access to the current schema.
type Repository struct {
	kv kv.Store
}

// New wraps s.
func New(s kv.Store) *Repository {
	return &Repository{kv: s}
}

// KV returns the underlying store.
func (r *Repository) KV() kv.Store {
	return r.kv
}

// Backend names the storage backend in use.
func (r *Repository) Backend() string {
	return r.kv.Backend()
}

// Ping checks the storage is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.kv.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func read[T any](ctx context.Context, s kv.Store, key string) (T, bool, error) {
	var v T
	data, err := s.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("%w: read %s: %w", ErrPersistence, key, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("%w: %s: %w", ErrCorrupt, key, err)
	}
	return v, true, nil
}

func write(ctx context.Context, s kv.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, key, err)
	}
	return nil
}

// Links returns the stored link collection. found is false when the key is absent.
func (r *Repository) Links(ctx context.Context) (links []domain.Link, found bool, err error) {
	return read[[]domain.Link](ctx, r.kv, KeyLinks)
}

// SaveLinks replaces the stored link collection.
func (r *Repository) SaveLinks(ctx context.Context, links []domain.Link) error {
	if links == nil {
		links = []domain.Link{}
	}
	return write(ctx, r.kv, KeyLinks, links)
}

// Favorites returns the stored favorite ids.
func (r *Repository) Favorites(ctx context.Context) ([]string, bool, error) {
	return read[[]string](ctx, r.kv, KeyFavorites)
}

// SaveFavorites replaces the stored favorite ids.
func (r *Repository) SaveFavorites(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return write(ctx, r.kv, KeyFavorites, ids)
}

// View returns the stored view mode.
func (r *Repository) View(ctx context.Context) (domain.View, bool, error) {
	v, found, err := read[string](ctx, r.kv, KeyView)
	return domain.ParseView(v), found, err
}

// SaveView stores the view mode.
func (r *Repository) SaveView(ctx context.Context, v domain.View) error {
	return write(ctx, r.kv, KeyView, string(domain.ParseView(string(v))))
}

// Collapsed returns the stored folded categories.
func (r *Repository) Collapsed(ctx context.Context) ([]string, bool, error) {
	return read[[]string](ctx, r.kv, KeyCollapsed)
}

// SaveCollapsed stores the folded categories.
func (r *Repository) SaveCollapsed(ctx context.Context, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	return write(ctx, r.kv, KeyCollapsed, categories)
}

// Theme returns the stored theme record.
func (r *Repository) Theme(ctx context.Context) (palette.Theme, bool, error) {
	return read[palette.Theme](ctx, r.kv, KeyTheme)
}

// SaveTheme stores the theme record. Incomplete themes are refused.
func (r *Repository) SaveTheme(ctx context.Context, t palette.Theme) error {
	if err := t.Valid(); err != nil {
		return err
	}
	return write(ctx, r.kv, KeyTheme, t)
}

// Volume returns the stored volume.
func (r *Repository) Volume(ctx context.Context) (int, bool, error) {
	v, found, err := read[float64](ctx, r.kv, KeyVolume)
	if err != nil || !found {
		return 0, found, err
	}
	return domain.ClampVolume(v), true, nil
}

// SaveVolume stores v clamped to 0-100.
func (r *Repository) SaveVolume(ctx context.Context, v int) error {
	return write(ctx, r.kv, KeyVolume, domain.ClampVolume(float64(v)))
}

// Migrated reports whether the legacy reconciliation has completed.
func (r *Repository) Migrated(ctx context.Context) (bool, error) {
	ok, err := kv.Exists(ctx, r.kv, KeyMigrated)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", ErrPersistence, KeyMigrated, err)
	}
	return ok, nil
}

// MarkMigrated sets the reconciliation flag.
func (r *Repository) MarkMigrated(ctx context.Context) error {
	return write(ctx, r.kv, KeyMigrated, true)
}

// LegacyBackup returns the archived legacy values keyed by their original key name.
func (r *Repository) LegacyBackup(ctx context.Context) (map[string]json.RawMessage, error) {
	b, _, err := read[map[string]json.RawMessage](ctx, r.kv, KeyLegacyBackup)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = map[string]json.RawMessage{}
	}
	return b, nil
}

// MergeLegacyBackup adds entries to the archive. Existing entries under
// other keys are kept; an entry under the same key is replaced by the newer
// value. An archive that is not a JSON object is kept verbatim under its own
// key name instead of being dropped.
func (r *Repository) MergeLegacyBackup(ctx context.Context, entries map[string]json.RawMessage) error {
	if len(entries) == 0 {
		return nil
	}

	merged, err := r.LegacyBackup(ctx)
	if errors.Is(err, ErrCorrupt) {
		raw, getErr := r.kv.Get(ctx, KeyLegacyBackup)
		if getErr != nil {
			return fmt.Errorf("%w: read %s: %w", ErrPersistence, KeyLegacyBackup, getErr)
		}
		merged = map[string]json.RawMessage{KeyLegacyBackup: RawJSON(raw)}
	} else if err != nil {
		return err
	}

	for k, v := range entries {
		merged[k] = v
	}
	return write(ctx, r.kv, KeyLegacyBackup, merged)
}

// RawJSON returns data unchanged when it is valid JSON and as a JSON string otherwise.
func RawJSON(data []byte) json.RawMessage {
	if json.Valid(data) {
		return json.RawMessage(data)
	}
	quoted, _ := json.Marshal(string(data))
	return quoted
}
