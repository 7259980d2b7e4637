package app

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/migrate"
	"github.com/MrSnakeDoc/launchpad/internal/state"
)

const (
	startRetryFirst = time.Second
	startRetryMax   = time.Minute
)

// startState migrates legacy storage, then loads the state. The state is
// not touched when the migration fails.
func startState(ctx context.Context, rec *migrate.Reconciler, manager *state.Manager, log logger.Logger) error {
	report, err := rec.Run(ctx)
	if err != nil {
		return err
	}
	if len(report.Scanned) > 0 {
		log.Info("legacy storage migrated",
			logger.Int("keys", len(report.Scanned)),
			logger.Int("archived", len(report.Archived)),
			logger.Int("links_added", report.LinksAdded),
			logger.Int("favorites_added", report.FavoritesAdded),
			logger.Int("errors", len(report.Errors)))
	}
	return manager.Load(ctx)
}

// retryStartState repeats startState with capped exponential backoff until
// it succeeds or ctx ends. Mutations answer 503 meanwhile.
func retryStartState(ctx context.Context, rec *migrate.Reconciler, manager *state.Manager, log logger.Logger, first, maxWait time.Duration) error {
	wait := first
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		err := startState(ctx, rec, manager, log)
		if err == nil {
			log.Info("state loaded after retry")
			return nil
		}
		wait = min(wait*2, maxWait)
		log.Warn("startup still waiting for legacy migration",
			logger.Error(err),
			logger.Duration("retry_in", wait))
	}
}
