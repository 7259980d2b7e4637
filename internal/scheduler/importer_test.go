package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

type fakeSink struct {
	mu    sync.Mutex
	calls int
	got   []domain.Link
	err   error
}

func (s *fakeSink) ImportLinks(_ context.Context, links []domain.Link) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.got = append(s.got, links...)
	return len(links), nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

const bookmarks = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
`

func writeBookmarks(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(bookmarks), 0o644); err != nil {
		t.Fatalf("failed to write bookmarks: %v", err)
	}
	return path
}

func TestImporter_Import(t *testing.T) {
	sink := &fakeSink{}
	im := NewImporter([]string{writeBookmarks(t), "/nonexistent/services.yaml"}, sink, logger.NewNop(), time.Hour)

	res, err := im.Import(context.Background())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Loaded != 1 || res.Added != 1 {
		t.Errorf("expected 1 loaded and added, got %+v", res)
	}
	if len(res.Failed) != 1 {
		t.Errorf("expected the missing file to be reported, got %v", res.Failed)
	}
	if sink.got[0].Category != "Developer" {
		t.Errorf("unexpected category %q", sink.got[0].Category)
	}

	last, ok := im.Last()
	if !ok || last.Added != 1 {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestImporter_ImportNothingLoaded(t *testing.T) {
	sink := &fakeSink{}
	im := NewImporter([]string{"/nonexistent/a.yaml"}, sink, logger.NewNop(), time.Hour)

	if _, err := im.Import(context.Background()); err == nil {
		t.Fatal("expected an error when no file can be read")
	}
	if sink.count() != 0 {
		t.Errorf("sink should not be called, got %d calls", sink.count())
	}
}

func TestImporter_SinkError(t *testing.T) {
	sink := &fakeSink{err: errors.New("storage down")}
	im := NewImporter([]string{writeBookmarks(t)}, sink, logger.NewNop(), time.Hour)

	if _, err := im.Import(context.Background()); err == nil {
		t.Fatal("expected the sink error to propagate")
	}
}

func TestImporter_TriggerAndStop(t *testing.T) {
	sink := &fakeSink{}
	im := NewImporter([]string{writeBookmarks(t)}, sink, logger.NewNop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	im.Start(ctx)
	if sink.count() != 1 {
		t.Fatalf("expected an import on start, got %d", sink.count())
	}

	if !im.Trigger() {
		t.Fatal("Trigger() should accept a request")
	}

	deadline := time.Now().Add(2 * time.Second)
	for sink.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sink.count() != 2 {
		t.Errorf("expected a second import after Trigger, got %d", sink.count())
	}

	im.Stop()
	im.Stop()
}

func TestImporter_Disabled(t *testing.T) {
	sink := &fakeSink{}
	im := NewImporter(nil, sink, logger.NewNop(), 0)

	if im.Enabled() {
		t.Error("importer without files should be disabled")
	}
	im.Start(context.Background())
	if sink.count() != 0 {
		t.Errorf("disabled importer should not import, got %d", sink.count())
	}
	im.Stop()
}
