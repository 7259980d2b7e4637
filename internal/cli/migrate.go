package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchpad/internal/app"
	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/kv"
	"github.com/MrSnakeDoc/launchpad/internal/migrate"
	"github.com/MrSnakeDoc/launchpad/internal/store"
	"github.com/MrSnakeDoc/launchpad/internal/utils"
)

func newMigrateCmd() *cobra.Command {
	var (
		dryRun  bool
		asJSON  bool
		lockTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate legacy storage keys",
		Long: "Fold legacy storage keys into the current schema once. " +
			"Unrecognised values are kept in the legacy backup. Safe to run repeatedly.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := app.NewLogger(cfg)
			defer func() { _ = log.Sync() }()

			s, err := kv.Open(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer utils.MustClose(s, "storage", log)

			ttl := cfg.MigrationLockTTL
			if lockTTL > 0 {
				ttl = lockTTL
			}
			rec := migrate.New(store.New(s), log, migrate.Options{
				LockTTL:  ttl,
				LockWait: ttl,
				DryRun:   dryRun,
			})

			report, err := rec.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			writeReport(cmd.OutOrStdout(), s.Backend(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().DurationVar(&lockTTL, "lock-ttl", 0, "override the migration lock expiry (e.g., 1m)")
	return cmd
}

func writeReport(out io.Writer, backend string, r *migrate.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "BACKEND\t%s\n", backend)
	_, _ = fmt.Fprintf(w, "PHASE\t%s\n", r.Phase)
	if r.DryRun {
		_, _ = fmt.Fprintf(w, "DRY RUN\tyes, nothing was written\n")
	}
	_, _ = fmt.Fprintf(w, "KEYS SCANNED\t%d\n", len(r.Scanned))
	_, _ = fmt.Fprintf(w, "KEYS ARCHIVED\t%d\n", len(r.Archived))
	_, _ = fmt.Fprintf(w, "LINKS ADDED\t%d\n", r.LinksAdded)
	_, _ = fmt.Fprintf(w, "FAVORITES ADDED\t%d\n", r.FavoritesAdded)
	_, _ = fmt.Fprintf(w, "DURATION\t%s\n", r.Duration)
	_ = w.Flush()

	if len(r.Scanned) == 0 {
		_, _ = fmt.Fprintln(out, "\nNothing to migrate.")
	}
	if len(r.Errors) > 0 {
		_, _ = fmt.Fprintln(out, "\nKeys kept in the legacy backup:")
		for _, e := range r.Errors {
			_, _ = fmt.Fprintf(out, "  %s: %v\n", e.Key, e.Err)
		}
	}
}
