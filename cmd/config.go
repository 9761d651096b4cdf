package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	configadapter "github.com/bnema/claude-usage-tracker/internal/adapters/config"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change tracker settings",
	}

	cmd.AddCommand(
		newConfigPathCmd(app),
		newConfigGetCmd(app),
		newConfigSetCmd(app),
	)

	return cmd
}

func newConfigPathCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.config.Path())
			return err
		},
	}
}

func newConfigGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print one setting, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				value, err := app.config.Get(args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}

			for _, key := range configadapter.Keys() {
				value, err := app.config.Get(key)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
			}
			return nil
		},
	}
}

func newConfigSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.config.Set(args[0], args[1]); err != nil {
				return err
			}

			return app.config.Save()
		},
	}
}
