// Package migrate folds every earlier storage layout into the current schema,
// once per installation.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/kv"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/palette"
	"github.com/MrSnakeDoc/launchpad/internal/store"
)

var (
	// ErrMigrationInProgress is returned when another process holds the migration lock.
	ErrMigrationInProgress = errors.New("migration already running in another process")
	// ErrLockLost is returned when the lock expired mid-pass and another
	// process took it. The pass stops before its next write.
	ErrLockLost = errors.New("migration lock lost")
)

// KeyError records a legacy key whose value could not be migrated. The value
// itself is kept in the legacy backup.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string { return fmt.Sprintf("legacy key %s: %v", e.Key, e.Err) }
func (e *KeyError) Unwrap() error { return e.Err }

func (e *KeyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   string `json:"key"`
		Error string `json:"error"`
	}{e.Key, e.Err.Error()})
}

// Phase is the migration state of the installation.
type Phase string

const (
	PhaseNotMigrated Phase = "not_migrated"
	PhaseMigrating   Phase = "migrating"
	PhaseMigrated    Phase = "migrated"
	PhaseFailed      Phase = "failed"
)

// Report describes one Run.
type Report struct {
	Phase          Phase       `json:"phase"`
	DryRun         bool        `json:"dryRun,omitempty"`
	Scanned        []string    `json:"scanned"`
	Archived       []string    `json:"archived"`
	LinksAdded     int         `json:"linksAdded"`
	FavoritesAdded int         `json:"favoritesAdded"`
	Errors         []*KeyError `json:"errors,omitempty"`
	Duration       string      `json:"duration"`
}

type Options struct {
	// LockTTL bounds how long a crashed process can block others. The lock
	// is refreshed before every legacy key is committed, so it only has to
	// cover the slowest single key.
	LockTTL time.Duration
	// LockWait is how long Run waits for another process to finish before
	// giving up with ErrMigrationInProgress.
	LockWait time.Duration
	// DryRun reports what would change without writing anything.
	DryRun bool
}

// Reconciler runs the legacy migration. It is safe to call Run from several
// goroutines or processes; only one pass does the work.
type Reconciler struct {
	repo  *store.Repository
	log   logger.Logger
	opts  Options
	phase atomic.Value
}

func New(repo *store.Repository, log logger.Logger, opts Options) *Reconciler {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	r := &Reconciler{repo: repo, log: log, opts: opts}
	r.phase.Store(PhaseNotMigrated)
	return r
}

// Phase returns the state reached by the last Run.
func (r *Reconciler) Phase() Phase {
	return r.phase.Load().(Phase)
}

// Done reports whether current-schema state can be read.
func (r *Reconciler) Done() bool {
	return r.Phase() == PhaseMigrated
}

// Run migrates legacy keys unless the installation is already migrated.
// Current-schema write failures abort the pass without setting the flag, so
// the next Run resumes it.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{Phase: PhaseMigrated, DryRun: r.opts.DryRun, Scanned: []string{}, Archived: []string{}}
	defer func() { report.Duration = time.Since(start).Round(time.Millisecond).String() }()

	done, err := r.repo.Migrated(ctx)
	if err != nil {
		r.phase.Store(PhaseFailed)
		return nil, err
	}
	if done {
		r.log.Debug("legacy storage already migrated")
		r.phase.Store(PhaseMigrated)
		return report, nil
	}

	var lease *kv.Lease
	if !r.opts.DryRun {
		lease, err = r.acquire(ctx)
		if err != nil {
			r.phase.Store(PhaseFailed)
			return nil, err
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				r.log.Warn("failed to release migration lock", logger.Error(err))
			}
		}()

		// Another process may have finished while we waited for the lock.
		if done, err := r.repo.Migrated(ctx); err != nil || done {
			if err != nil {
				r.phase.Store(PhaseFailed)
				return nil, err
			}
			r.phase.Store(PhaseMigrated)
			return report, nil
		}
	}

	r.phase.Store(PhaseMigrating)
	if err := r.migrate(ctx, report, lease); err != nil {
		r.phase.Store(PhaseFailed)
		report.Phase = PhaseFailed
		return report, err
	}

	if r.opts.DryRun {
		report.Phase = PhaseNotMigrated
		r.phase.Store(PhaseNotMigrated)
	} else {
		r.phase.Store(PhaseMigrated)
	}

	r.log.Info("legacy storage migrated",
		logger.Bool("dry_run", r.opts.DryRun),
		logger.Strings("scanned", report.Scanned),
		logger.Strings("archived", report.Archived),
		logger.Int("links_added", report.LinksAdded),
		logger.Int("favorites_added", report.FavoritesAdded),
		logger.Int("errors", len(report.Errors)),
	)
	return report, nil
}

// acquire takes the migration lock, polling until LockWait elapses.
func (r *Reconciler) acquire(ctx context.Context) (*kv.Lease, error) {
	locker, ok := r.repo.KV().(kv.Locker)
	if !ok {
		return nil, nil
	}

	deadline := time.Now().Add(r.opts.LockWait)
	wait := 50 * time.Millisecond
	for {
		lease, err := locker.Lock(ctx, store.KeyMigrationLock, r.opts.LockTTL)
		if err == nil {
			return lease, nil
		}
		if !errors.Is(err, kv.ErrLocked) {
			return nil, fmt.Errorf("%w: migration lock: %w", store.ErrPersistence, err)
		}
		if time.Now().Add(wait).After(deadline) {
			return nil, ErrMigrationInProgress
		}

		r.log.Debug("waiting for migration lock", logger.Duration("retry_in", wait))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, time.Second)
	}
}

func (r *Reconciler) migrate(ctx context.Context, report *Report, lease *kv.Lease) error {
	p, err := r.newPass(ctx, report, lease)
	if err != nil {
		return err
	}

	for _, lk := range legacyKeys {
		data, err := r.repo.KV().Get(ctx, lk.key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", store.ErrPersistence, lk.key, err)
		}

		v := Decode(data, true)
		report.Scanned = append(report.Scanned, lk.key)

		c, err := lk.handle(ctx, p, v)
		if err != nil {
			c = change{archive: v.Backup(), problem: err}
		}
		if c.problem != nil {
			ke := &KeyError{Key: lk.key, Err: c.problem}
			report.Errors = append(report.Errors, ke)
			r.log.Warn("legacy value archived", logger.String("key", lk.key), logger.Error(c.problem))
		}

		if err := p.commit(ctx, lk.key, c); err != nil {
			return err
		}
	}

	if r.opts.DryRun {
		return nil
	}
	if err := p.refresh(ctx); err != nil {
		return err
	}
	if err := r.repo.SaveFavorites(ctx, p.favorites); err != nil {
		return err
	}
	return r.repo.MarkMigrated(ctx)
}

// pass is the working state of one migration run.
type pass struct {
	repo   *store.Repository
	log    logger.Logger
	lease  *kv.Lease
	dryRun bool
	report *Report

	links     *domain.LinkMerger
	favorites []string
	aliases   map[string]string
	positions map[int]string
	collapsed []string
	mode      palette.Mode
	hasTheme  bool
}

func (r *Reconciler) newPass(ctx context.Context, report *Report, lease *kv.Lease) (*pass, error) {
	p := &pass{
		repo:      r.repo,
		log:       r.log,
		lease:     lease,
		dryRun:    r.opts.DryRun,
		report:    report,
		aliases:   map[string]string{},
		positions: map[int]string{},
		mode:      palette.Dark,
	}

	links, _, err := r.repo.Links(ctx)
	if err = p.keepCorrupt(ctx, store.KeyLinks, err); err != nil {
		return nil, err
	}
	p.links = domain.NewLinkMerger(links, func(l domain.Link) string { return domain.StableLinkID(l.URL) })

	favorites, _, err := r.repo.Favorites(ctx)
	if err = p.keepCorrupt(ctx, store.KeyFavorites, err); err != nil {
		return nil, err
	}
	p.addFavorites(favorites)

	p.collapsed, _, err = r.repo.Collapsed(ctx)
	if err = p.keepCorrupt(ctx, store.KeyCollapsed, err); err != nil {
		return nil, err
	}

	t, found, err := r.repo.Theme(ctx)
	if err = p.keepCorrupt(ctx, store.KeyTheme, err); err != nil {
		return nil, err
	}
	if found {
		p.hasTheme = true
		p.mode = palette.ParseMode(string(t.Mode))
	}
	return p, nil
}

// refresh extends the migration lock before the next write.
func (p *pass) refresh(ctx context.Context) error {
	err := p.lease.Refresh(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, kv.ErrLocked):
		return ErrLockLost
	default:
		return fmt.Errorf("%w: %w", store.ErrPersistence, err)
	}
}

// keepCorrupt moves an undecodable current-schema value into the legacy
// backup so the merge can start from scratch without losing it.
func (p *pass) keepCorrupt(ctx context.Context, key string, err error) error {
	if !errors.Is(err, store.ErrCorrupt) {
		return err
	}
	p.report.Errors = append(p.report.Errors, &KeyError{Key: key, Err: err})
	p.log.Warn("current value is corrupt, archiving it", logger.String("key", key), logger.Error(err))
	if p.dryRun {
		return nil
	}
	raw, getErr := p.repo.KV().Get(ctx, key)
	if getErr != nil {
		return fmt.Errorf("%w: read %s: %w", store.ErrPersistence, key, getErr)
	}
	return p.repo.MergeLegacyBackup(ctx, map[string]json.RawMessage{key: store.RawJSON(raw)})
}

// addFavorites unions ids into the favorites, resolving legacy ids of links
// that were merged under another id. It returns how many were new.
func (p *pass) addFavorites(ids []string) int {
	added := 0
	for _, id := range ids {
		if alias, ok := p.aliases[id]; ok {
			id = alias
		}
		if id == "" || slices.Contains(p.favorites, id) {
			continue
		}
		p.favorites = append(p.favorites, id)
		added++
	}
	return added
}

// allCategories prefers the legacy category list and falls back to the
// categories of the merged links.
func (p *pass) allCategories(ctx context.Context) []string {
	if data, err := p.repo.KV().Get(ctx, KeyLPCategories); err == nil {
		if items, ok := Decode(data, true).Array(); ok {
			if cats := stringsOf(items); len(cats) > 0 {
				return cats
			}
		}
	}
	s := domain.State{Links: p.links.Links()}
	return s.UsedCategories()
}

// commit applies c to the pass and persists it: current-schema writes first,
// then the backup, then removal of the legacy key.
func (p *pass) commit(ctx context.Context, key string, c change) error {
	linksAdded := 0
	for _, ll := range c.links {
		id, added, err := p.links.Add(ll.link)
		if err != nil {
			continue
		}
		if ll.legacyID != "" {
			p.aliases[ll.legacyID] = id
		}
		if c.indexed {
			p.positions[ll.position] = id
		}
		if added {
			linksAdded++
		}
		if ll.favorite {
			c.favorites = append(c.favorites, id)
		}
	}
	p.report.LinksAdded += linksAdded

	favoritesAdded := p.addFavorites(c.favorites)
	p.report.FavoritesAdded += favoritesAdded

	collapsedChanged := false
	for _, cat := range c.collapsed {
		if !slices.Contains(p.collapsed, cat) {
			p.collapsed = append(p.collapsed, cat)
			collapsedChanged = true
		}
	}

	if c.mode != "" {
		p.mode = c.mode
	}
	if c.archive != nil {
		p.report.Archived = append(p.report.Archived, key)
	}

	if p.dryRun {
		return nil
	}

	if err := p.refresh(ctx); err != nil {
		return err
	}

	if merged := p.links.Links(); linksAdded > 0 && len(merged) > 0 {
		if err := p.repo.SaveLinks(ctx, merged); err != nil {
			return err
		}
	}
	if favoritesAdded > 0 {
		if err := p.repo.SaveFavorites(ctx, p.favorites); err != nil {
			return err
		}
	}
	if collapsedChanged {
		if err := p.repo.SaveCollapsed(ctx, p.collapsed); err != nil {
			return err
		}
	}
	if c.view != "" {
		if err := p.repo.SaveView(ctx, c.view); err != nil {
			return err
		}
	}
	if c.mode != "" && !p.hasTheme && c.theme == nil {
		t := palette.DefaultTheme(c.mode)
		c.theme = &t
	}
	if c.theme != nil {
		if err := p.repo.SaveTheme(ctx, *c.theme); err != nil {
			return err
		}
		p.hasTheme = true
	}
	if c.volume != nil {
		if err := p.repo.SaveVolume(ctx, *c.volume); err != nil {
			p.log.Warn("failed to migrate volume", logger.Error(err))
		}
	}
	if c.archive != nil {
		if err := p.repo.MergeLegacyBackup(ctx, map[string]json.RawMessage{key: c.archive}); err != nil {
			return err
		}
	}

	if err := p.repo.KV().Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: delete %s: %w", store.ErrPersistence, key, err)
	}
	return nil
}
