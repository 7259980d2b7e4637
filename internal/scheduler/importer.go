package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/sources/homepage"
)

// LinkSink receives imported links. state.Manager implements it.
type LinkSink interface {
	ImportLinks(ctx context.Context, links []domain.Link) (int, error)
}

// Source produces links to import.
type Source interface {
	Path() string
	Load() ([]domain.Link, error)
}

// Result describes the last import run.
type Result struct {
	At      time.Time `json:"at"`
	Files   int       `json:"files"`
	Loaded  int       `json:"loaded"`
	Added   int       `json:"added"`
	Failed  []string  `json:"failed,omitempty"`
	Elapsed string    `json:"elapsed"`
}

// Importer periodically merges links from Homepage files into the collection
type Importer struct {
	sources       []Source
	sink          LinkSink
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu   sync.Mutex
	last *Result
}

// NewImporter creates an importer for the given Homepage YAML files
func NewImporter(files []string, sink LinkSink, log logger.Logger, interval time.Duration) *Importer {
	sources := make([]Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, homepage.NewLoader(f))
	}
	return newImporter(sources, sink, log, interval)
}

func newImporter(sources []Source, sink LinkSink, log logger.Logger, interval time.Duration) *Importer {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Importer{
		sources:       sources,
		sink:          sink,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: make(chan struct{}, 1),
	}
}

// Enabled reports whether any file is configured.
func (im *Importer) Enabled() bool {
	return len(im.sources) > 0
}

// Start imports once, then on every tick and manual trigger until Stop or ctx is done.
// A failing first import is logged; the loop still starts.
func (im *Importer) Start(ctx context.Context) {
	if !im.Enabled() {
		im.logger.Info("link import disabled, no files configured")
		return
	}

	if _, err := im.Import(ctx); err != nil {
		im.logger.Error("initial link import failed", logger.Error(err))
	}

	ticker := time.NewTicker(im.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				im.run(ctx)
			case <-im.manualTrigger:
				im.logger.Info("manual link import triggered")
				im.run(ctx)
			case <-im.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (im *Importer) run(ctx context.Context) {
	if _, err := im.Import(ctx); err != nil {
		im.logger.Error("failed to import links", logger.Error(err))
	}
}

// Trigger requests an import. It never blocks; a pending request absorbs new ones.
func (im *Importer) Trigger() bool {
	select {
	case im.manualTrigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop stops the import loop
func (im *Importer) Stop() {
	im.stopOnce.Do(func() { close(im.stopCh) })
}

// Last returns the result of the latest import, if any.
func (im *Importer) Last() (Result, bool) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.last == nil {
		return Result{}, false
	}
	return *im.last, true
}

// Import loads every source and merges the links. Unreadable files are
// skipped; the error reports them only when nothing could be loaded.
func (im *Importer) Import(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{At: start, Files: len(im.sources)}

	var links []domain.Link
	var errs []error
	for _, src := range im.sources {
		loaded, err := src.Load()
		if err != nil {
			im.logger.Warn("failed to load import file",
				logger.String("file", src.Path()), logger.Error(err))
			res.Failed = append(res.Failed, src.Path())
			errs = append(errs, err)
			continue
		}
		links = append(links, loaded...)
	}
	res.Loaded = len(links)

	var err error
	if len(links) > 0 {
		res.Added, err = im.sink.ImportLinks(ctx, links)
		if err != nil {
			err = fmt.Errorf("failed to store imported links: %w", err)
		}
	} else if len(errs) > 0 {
		err = errors.Join(errs...)
	}
	res.Elapsed = time.Since(start).String()

	im.mu.Lock()
	im.last = &res
	im.mu.Unlock()

	if err != nil {
		return res, err
	}
	im.logger.Info("links imported",
		logger.Int("files", res.Files),
		logger.Int("loaded", res.Loaded),
		logger.Int("added", res.Added),
	)
	return res, nil
}
