package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/claude-usage-tracker/internal/adapters/render/menu"
	"github.com/bnema/claude-usage-tracker/internal/domain"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Fetch usage once and print the current windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, app, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

type statusOutput struct {
	Title    string                `json:"title"`
	Session  string                `json:"session"`
	Weekly   string                `json:"weekly"`
	Sonnet   string                `json:"sonnet"`
	Snapshot *domain.UsageSnapshot `json:"snapshot,omitempty"`
}

func runStatus(cmd *cobra.Command, app *app, asJSON bool) error {
	ctx := cmd.Context()

	if err := app.ensureCredentials(ctx); err != nil {
		return err
	}

	var state domain.DisplayState
	var refreshErr error

	refresh := func() {
		state, refreshErr = app.service.Refresh(ctx)
	}

	if asJSON {
		refresh()
	} else {
		if err := runFetchSpinner(ctx, cmd.ErrOrStderr(), refresh); err != nil {
			return err
		}
	}

	if asJSON {
		output := statusOutput{
			Title:    state.Title,
			Session:  state.Session,
			Weekly:   state.Weekly,
			Sonnet:   state.Sonnet,
			Snapshot: app.service.Snapshot(),
		}
		encoded, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("encode status output: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	} else {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), menu.Render(state, app.service.Snapshot()))
	}

	if refreshErr != nil && !errors.Is(refreshErr, domain.ErrNotConfigured) {
		return refreshErr
	}

	return nil
}
