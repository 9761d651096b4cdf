package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cu",
		Short:         "Claude Usage Tracker (cu): watch rate-limit windows from the terminal",
		Long:          "cu (Claude Usage Tracker) polls the Claude usage endpoint and shows percent-used figures for the five-hour, weekly, and Sonnet rate-limit windows, with credentials kept in the system keychain.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newWatchCmd(app),
		newStatusCmd(app),
		newSettingsCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
