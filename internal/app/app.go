package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/host"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/kv"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/migrate"
	"github.com/MrSnakeDoc/launchpad/internal/scheduler"
	"github.com/MrSnakeDoc/launchpad/internal/state"
	"github.com/MrSnakeDoc/launchpad/internal/store"
	"github.com/MrSnakeDoc/launchpad/internal/utils"
	"github.com/MrSnakeDoc/launchpad/internal/version"
)

type App struct {
	cfg        *config.Config
	logger     logger.Logger
	kv         kv.Store
	reconciler *migrate.Reconciler
	state      *state.Manager
	importer   *scheduler.Importer
	server     *httpserver.Server
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg *config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Pretty:     cfg.PrettyLog,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
}

// New opens storage, migrates legacy keys, loads the state and builds the
// HTTP server. Storage failures are fatal. When the migration or the load
// fails the state stays unloaded and Run keeps retrying in the background.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	loggerClient.Infof("Opening %s storage", cfg.Storage)
	kvStore, err := kv.Open(ctx, cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	repo := store.New(kvStore)

	reconciler := migrate.New(repo, loggerClient, migrate.Options{
		LockTTL:  cfg.MigrationLockTTL,
		LockWait: cfg.MigrationLockTTL,
	})

	caps := host.New(cfg, loggerClient)

	manager := state.New(repo, caps.Device, loggerClient, cfg.DefaultVolume)
	if err := startState(ctx, reconciler, manager, loggerClient); err != nil {
		loggerClient.Error("legacy storage migration did not finish, state stays unloaded until it does",
			logger.String("phase", string(reconciler.Phase())),
			logger.Error(err))
	}

	importer := scheduler.NewImporter(cfg.ImportFiles, manager, loggerClient, cfg.ImportInterval)

	d := deps.Deps{
		Logger:              loggerClient,
		StartTime:           time.Now(),
		Version:             version.Version,
		Commit:              version.Commit,
		BuildDate:           version.BuildDate,
		GoVersion:           version.GoVersion,
		TimeNow:             time.Now,
		AllowedHosts:        cfg.AllowedHosts,
		AllowedCIDRS:        cfg.AllowedCIDRS,
		TrustProxy:          cfg.TrustProxy,
		SuggestBurst:        cfg.SuggestBurst,
		SuggestRefillPerMin: cfg.SuggestRefillPerMin,
		Repo:                repo,
		Reconciler:          reconciler,
		State:               manager,
		Host:                caps,
		Importer:            importer,
	}

	return &App{
		cfg:        cfg,
		logger:     loggerClient,
		kv:         kvStore,
		reconciler: reconciler,
		state:      manager,
		importer:   importer,
		server:     httpserver.New(cfg, loggerClient, d),
	}, nil
}

func (a *App) startImporter(ctx context.Context) {
	a.importer.Start(ctx)
	if a.importer.Enabled() {
		a.logger.Info("link importer started",
			logger.Strings("files", a.cfg.ImportFiles),
			logger.Duration("interval", a.cfg.ImportInterval))
	}
}

// Run serves until SIGINT/SIGTERM or a server error.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Launchpad v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.server.Listen(); err != nil {
		utils.MustClose(a.kv, "storage", a.logger)
		_ = a.logger.Sync()
		return err
	}

	if a.state.Loaded() {
		a.startImporter(ctx)
	} else {
		go func() {
			if err := retryStartState(ctx, a.reconciler, a.state, a.logger, startRetryFirst, startRetryMax); err != nil {
				return
			}
			a.startImporter(ctx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()
	a.notifySystemd(daemon.SdNotifyReady)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.notifySystemd(daemon.SdNotifyStopping)
	a.importer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to stop server: %w", err))
	}

	utils.MustClose(a.kv, "storage", a.logger)

	if runErr == nil {
		a.logger.Info("✅ Launchpad stopped cleanly")
	}
	_ = a.logger.Sync()
	return runErr
}
