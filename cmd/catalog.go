package cmd

import (
	"context"
	"fmt"

	catalogview "github.com/bnema/assetforge-cli/internal/adapters/render/catalog"
	"github.com/bnema/assetforge-cli/internal/application"
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/spf13/cobra"
)

const loadingLabel = "Loading catalog..."

// fetchViews runs fetch behind a spinner on stderr for text output and merges the reports.
func fetchViews(cmd *cobra.Command, format string, fetch ...func(context.Context) application.RefreshReport) (application.RefreshReport, error) {
	merged := application.RefreshReport{Errors: map[domain.ViewKind]error{}}
	run := func(ctx context.Context) error {
		for _, f := range fetch {
			for kind, err := range f(ctx).Errors {
				merged.Errors[kind] = err
			}
		}
		return nil
	}

	if format != outputText {
		return merged, run(cmd.Context())
	}
	if err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), loadingLabel, run); err != nil {
		return merged, err
	}
	return merged, nil
}

func refreshOf(a *app, kinds ...domain.ViewKind) func(context.Context) application.RefreshReport {
	return func(ctx context.Context) application.RefreshReport {
		return a.catalog.Refresh(ctx, kinds...)
	}
}

// viewError returns the failure of kind, if any. Other views failing is not fatal.
func viewError(report application.RefreshReport, kind domain.ViewKind) error {
	if err, ok := report.Errors[kind]; ok {
		return err
	}
	return nil
}

func renderViews(cmd *cobra.Command, a *app, snap application.CatalogSnapshot, kinds ...domain.ViewKind) error {
	rendered, err := a.renderer(snap, catalogview.RenderOptions{Views: kinds, Selected: -1, Now: a.now()})
	if err != nil {
		return fmt.Errorf("render catalog: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// runDashboard loads every view and renders them together. A failed view is shown
// in place and does not fail the command.
func runDashboard(cmd *cobra.Command, a *app) error {
	if _, err := fetchViews(cmd, outputText, refreshOf(a)); err != nil {
		return err
	}
	return renderViews(cmd, a, a.catalog.Snapshot(), domain.AllViews...)
}
