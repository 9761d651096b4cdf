package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/claude-usage-tracker/internal/adapters/tui"
	"github.com/bnema/claude-usage-tracker/internal/domain"
)

func newSettingsCmd(app *app) *cobra.Command {
	var sessionKey string
	var orgID string
	var openPage bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Configure the session key and organization id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if openPage {
				return tui.OpenSettingsPage()
			}

			creds := domain.Credentials{SessionKey: sessionKey, OrgID: orgID}

			// Flags given: non-interactive save. Otherwise run the wizard.
			if sessionKey != "" || orgID != "" {
				if err := creds.Validate(); err != nil {
					return err
				}
			} else {
				entered, err := tui.RunSettings()
				if err != nil {
					if errors.Is(err, tui.ErrCanceled) {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Canceled; nothing saved.")
						return nil
					}
					return err
				}
				creds = entered
			}

			if err := app.service.SaveCredentials(cmd.Context(), creds); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials saved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionKey, "session-key", "", "Session key (sk-ant-sid01-...)")
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization ID (UUID)")
	cmd.Flags().BoolVar(&openPage, "open", false, "Open the Claude usage settings page in a browser")

	return cmd
}
