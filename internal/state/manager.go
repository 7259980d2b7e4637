// Package state owns the live launcher state: it loads it once from storage,
// serialises every change and persists it before making it visible.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/host"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
	"github.com/MrSnakeDoc/launchpad/internal/store"
)

var (
	// ErrNotLoaded is returned by mutations before Load succeeded.
	ErrNotLoaded = errors.New("state not loaded")
	// ErrNotMigrated is returned by Load while legacy storage is still
	// waiting for its migration.
	ErrNotMigrated = errors.New("legacy storage not migrated yet")
)

type Manager struct {
	mu     sync.RWMutex
	st     *domain.State
	repo   *store.Repository
	device host.Device
	log    logger.Logger

	defaultVolume int
}

func New(repo *store.Repository, device host.Device, log logger.Logger, defaultVolume int) *Manager {
	return &Manager{
		repo:          repo,
		device:        device,
		log:           log,
		defaultVolume: domain.ClampVolume(float64(defaultVolume)),
	}
}

// Load reads the current schema. It refuses to run before the legacy
// migration set its flag, so sample links never land in an installation
// whose legacy links are still pending. Missing or corrupt values fall back
// to defaults; a fresh installation is seeded with sample links.
func (m *Manager) Load(ctx context.Context) error {
	migrated, err := m.repo.Migrated(ctx)
	if err != nil {
		return err
	}
	if !migrated {
		return ErrNotMigrated
	}

	st := domain.NewState()
	st.Volume = m.defaultVolume

	links, found, err := m.repo.Links(ctx)
	switch {
	case errors.Is(err, store.ErrCorrupt):
		m.log.Warn("stored links are corrupt, starting empty", logger.Error(err))
	case err != nil:
		return err
	case found:
		st.Links = m.sanitize(links)
	default:
		st.Links = domain.SampleLinks()
		if err := m.repo.SaveLinks(ctx, st.Links); err != nil {
			m.log.Warn("failed to store sample links", logger.Error(err))
		}
	}

	if favs, found, err := m.repo.Favorites(ctx); m.usable("favorites", found, err) {
		st.Favorites = favs
	} else if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return err
	}
	if pruned := st.PruneFavorites(); pruned > 0 {
		m.log.Info("dropped dangling favorites", logger.Int("count", pruned))
		if err := m.repo.SaveFavorites(ctx, st.Favorites); err != nil {
			m.log.Warn("failed to store pruned favorites", logger.Error(err))
		}
	}

	if v, found, err := m.repo.View(ctx); m.usable("view", found, err) {
		st.View = v
	}
	if c, found, err := m.repo.Collapsed(ctx); m.usable("collapsed", found, err) && c != nil {
		st.Collapsed = c
	}
	if t, found, err := m.repo.Theme(ctx); m.usable("theme", found, err) {
		if verr := t.Valid(); verr != nil {
			m.log.Warn("stored theme is incomplete, using default", logger.Error(verr))
		} else {
			st.Theme = t
		}
	}
	if v, found, err := m.repo.Volume(ctx); m.usable("volume", found, err) {
		st.Volume = v
	}

	m.mu.Lock()
	m.st = st
	m.mu.Unlock()

	m.device.ApplyTheme(ctx, st.Theme)
	m.device.SetVolume(ctx, st.Volume)

	m.log.Info("state loaded",
		logger.Int("links", len(st.Links)),
		logger.Int("favorites", len(st.Favorites)),
		logger.String("view", string(st.View)),
		logger.String("theme", st.Theme.Name),
	)
	return nil
}

// usable logs read problems and reports whether the value can be used.
func (m *Manager) usable(what string, found bool, err error) bool {
	if err != nil {
		m.log.Warn("failed to read stored "+what+", using default", logger.Error(err))
		return false
	}
	return found
}

// sanitize drops stored links that no longer validate and repeats of an id or URL.
func (m *Manager) sanitize(links []domain.Link) []domain.Link {
	merger := domain.NewLinkMerger(nil, func(domain.Link) string { return domain.NewLinkID() })
	for _, l := range links {
		if _, _, err := merger.Add(l); err != nil {
			m.log.Warn("dropping invalid stored link", logger.String("id", l.ID), logger.Error(err))
		}
	}
	return merger.Links()
}

// Loaded reports whether Load has succeeded.
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st != nil
}

// Snapshot returns a copy of the whole state.
func (m *Manager) Snapshot() *domain.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return domain.NewState()
	}
	return m.st.Clone()
}

type saver func(ctx context.Context, r *store.Repository, s *domain.State) error

func saveLinks(ctx context.Context, r *store.Repository, s *domain.State) error {
	return r.SaveLinks(ctx, s.Links)
}

func saveFavorites(ctx context.Context, r *store.Repository, s *domain.State) error {
	return r.SaveFavorites(ctx, s.Favorites)
}

func saveCollapsed(ctx context.Context, r *store.Repository, s *domain.State) error {
	return r.SaveCollapsed(ctx, s.Collapsed)
}

func saveView(ctx context.Context, r *store.Repository, s *domain.State) error {
	return r.SaveView(ctx, s.View)
}

func saveTheme(ctx context.Context, r *store.Repository, s *domain.State) error {
	return r.SaveTheme(ctx, s.Theme)
}

// mutate applies fn to a copy of the state, persists it with savers and only
// then publishes it. On any error the visible state is unchanged.
func (m *Manager) mutate(ctx context.Context, fn func(s *domain.State) error, savers ...saver) (*domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.st == nil {
		return nil, ErrNotLoaded
	}
	next := m.st.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	for _, save := range savers {
		if err := save(ctx, m.repo, next); err != nil {
			return nil, err
		}
	}
	m.st = next
	return next.Clone(), nil
}

// Link returns one link.
func (m *Manager) Link(id string) (domain.Link, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return domain.Link{}, false
	}
	return m.st.Link(id)
}

// Search ranks links against query; an empty query lists every link.
func (m *Manager) Search(query string) []domain.LinkMatch {
	snap := m.Snapshot()
	if query == "" {
		out := make([]domain.LinkMatch, len(snap.Links))
		for i, l := range snap.Links {
			out[i] = domain.LinkMatch{Link: l}
		}
		return out
	}
	return domain.RankLinks(query, snap.Links)
}

// FilterSuggestions drops suggestions for URLs already saved.
func (m *Manager) FilterSuggestions(s []domain.Suggestion) []domain.Suggestion {
	return domain.FilterSuggestions(s, m.Snapshot().Links, domain.MaxSuggestions)
}

func (m *Manager) AddLink(ctx context.Context, l domain.Link) (domain.Link, error) {
	var added domain.Link
	_, err := m.mutate(ctx, func(s *domain.State) error {
		var err error
		added, err = s.AddLink(l)
		return err
	}, saveLinks, saveCollapsed)
	return added, err
}

func (m *Manager) UpdateLink(ctx context.Context, id string, l domain.Link) (domain.Link, error) {
	var updated domain.Link
	_, err := m.mutate(ctx, func(s *domain.State) error {
		var err error
		updated, err = s.UpdateLink(id, l)
		return err
	}, saveLinks)
	return updated, err
}

// DeleteLink removes a link and its favorite entry.
func (m *Manager) DeleteLink(ctx context.Context, id string) (domain.Link, error) {
	var removed domain.Link
	_, err := m.mutate(ctx, func(s *domain.State) error {
		var err error
		removed, err = s.DeleteLink(id)
		return err
	}, saveLinks, saveFavorites)
	return removed, err
}

// DeleteSelection resolves which links a bulk delete in mode would remove.
func (m *Manager) DeleteSelection(mode domain.DeleteMode, ids []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return nil, ErrNotLoaded
	}
	return m.st.DeleteSelection(mode, ids)
}

// DeleteLinks removes ids in one write and prunes the favorites that
// pointed at them.
func (m *Manager) DeleteLinks(ctx context.Context, ids []string) ([]domain.Link, error) {
	var removed []domain.Link
	_, err := m.mutate(ctx, func(s *domain.State) error {
		removed = s.DeleteLinks(ids)
		return nil
	}, saveLinks, saveFavorites)
	return removed, err
}

// ToggleFavorite returns the new favorite status of id.
func (m *Manager) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	var on bool
	_, err := m.mutate(ctx, func(s *domain.State) error {
		var err error
		on, err = s.ToggleFavorite(id)
		return err
	}, saveFavorites)
	return on, err
}

func (m *Manager) ClearFavorites(ctx context.Context) error {
	_, err := m.mutate(ctx, func(s *domain.State) error {
		s.ClearFavorites()
		return nil
	}, saveFavorites)
	return err
}

// Favorites returns the quick-launch links in collection order.
func (m *Manager) Favorites() []domain.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st == nil {
		return []domain.Link{}
	}
	return m.st.FavoriteLinks()
}

func (m *Manager) SetView(ctx context.Context, v domain.View) (domain.View, error) {
	next, err := m.mutate(ctx, func(s *domain.State) error {
		s.View = domain.ParseView(string(v))
		return nil
	}, saveView)
	if err != nil {
		return "", err
	}
	return next.View, nil
}

// ToggleCategory returns whether the category is now collapsed.
func (m *Manager) ToggleCategory(ctx context.Context, category string) (bool, error) {
	var collapsed bool
	_, err := m.mutate(ctx, func(s *domain.State) error {
		collapsed = s.ToggleCategory(category)
		return nil
	}, saveCollapsed)
	return collapsed, err
}

// CollapseAll returns whether everything is now collapsed.
func (m *Manager) CollapseAll(ctx context.Context) (bool, error) {
	var collapsed bool
	_, err := m.mutate(ctx, func(s *domain.State) error {
		collapsed = s.CollapseAll()
		return nil
	}, saveCollapsed)
	return collapsed, err
}

// SetVolume applies the volume for the session even when storing it fails.
func (m *Manager) SetVolume(ctx context.Context, v int) (int, error) {
	m.mu.Lock()
	if m.st == nil {
		m.mu.Unlock()
		return 0, ErrNotLoaded
	}
	vol := m.st.SetVolume(v)
	m.mu.Unlock()

	m.device.SetVolume(ctx, vol)
	if err := m.repo.SaveVolume(ctx, vol); err != nil {
		m.log.Warn("failed to store volume", logger.Int("volume", vol), logger.Error(err))
	}
	return vol, nil
}

// PreviewTheme generates a theme without applying it.
func (m *Manager) PreviewTheme(req palette.Request) (palette.Theme, error) {
	return req.Build()
}

// ApplyTheme generates, stores and activates a theme. On failure the
// previous theme stays active.
func (m *Manager) ApplyTheme(ctx context.Context, req palette.Request) (palette.Theme, error) {
	t, err := req.Build()
	if err != nil {
		return palette.Theme{}, err
	}
	return m.setTheme(ctx, t)
}

// ResetTheme activates the built-in theme for mode.
func (m *Manager) ResetTheme(ctx context.Context, mode palette.Mode) (palette.Theme, error) {
	return m.setTheme(ctx, palette.DefaultTheme(mode))
}

func (m *Manager) setTheme(ctx context.Context, t palette.Theme) (palette.Theme, error) {
	if _, err := m.mutate(ctx, func(s *domain.State) error {
		s.Theme = t
		return nil
	}, saveTheme); err != nil {
		return palette.Theme{}, err
	}
	m.device.ApplyTheme(ctx, t)
	m.device.Vibrate(ctx)
	return t, nil
}

// Theme returns the active theme.
func (m *Manager) Theme() palette.Theme {
	return m.Snapshot().Theme
}

// ImportLinks merges links by URL and returns how many were new. Links
// without an id get one derived from their URL so repeated imports agree.
func (m *Manager) ImportLinks(ctx context.Context, links []domain.Link) (int, error) {
	added := 0
	_, err := m.mutate(ctx, func(s *domain.State) error {
		merger := domain.NewLinkMerger(s.Links, func(l domain.Link) string { return domain.StableLinkID(l.URL) })
		for _, l := range links {
			_, ok, err := merger.Add(l)
			if err != nil {
				m.log.Debug("skipping imported link", logger.String("url", l.URL), logger.Error(err))
				continue
			}
			if ok {
				added++
			}
		}
		s.Links = merger.Links()
		return nil
	}, func(ctx context.Context, r *store.Repository, s *domain.State) error {
		if added == 0 {
			return nil
		}
		return saveLinks(ctx, r, s)
	})
	return added, err
}
