package cmd

import (
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newStatsCmd(lazy *lazyApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show library totals",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = guarded(lazy, func(cmd *cobra.Command, a *app, _ []string) error {
		format, err := parseOutput(lazy.opts.output)
		if err != nil {
			return err
		}

		report, err := fetchViews(cmd, format, refreshOf(a, domain.ViewStats))
		if err != nil {
			return err
		}
		if err := viewError(report, domain.ViewStats); err != nil {
			return err
		}

		snap := a.catalog.Snapshot()
		if format != outputText {
			return writeStructured(cmd.OutOrStdout(), format, toStatsOutput(snap.Stats))
		}
		return renderViews(cmd, a, snap, domain.ViewStats)
	})

	return cmd
}
