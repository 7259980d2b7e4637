package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchpad/internal/app"
	"github.com/MrSnakeDoc/launchpad/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the launcher API",
		Long:  "Open storage, migrate legacy keys, load the state and serve the HTTP API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg := config.Load()
	log := app.NewLogger(cfg)

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		_ = log.Sync()
		return err
	}
	return a.Run()
}
