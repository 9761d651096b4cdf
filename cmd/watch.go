package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/claude-usage-tracker/internal/adapters/tui"
)

func newWatchCmd(app *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch usage windows with periodic refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.ensureCredentials(cmd.Context()); err != nil {
				return err
			}

			if interval <= 0 {
				interval = app.config.RefreshInterval
			}

			return tui.Run(app.service, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default: refresh.interval from config)")

	return cmd
}
