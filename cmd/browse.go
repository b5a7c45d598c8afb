package cmd

import (
	"fmt"

	catalogview "github.com/bnema/assetforge-cli/internal/adapters/render/catalog"
	"github.com/bnema/assetforge-cli/internal/application"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(lazy *lazyApp) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the library interactively",
		Long:  "Opens an interactive view of assets, collections and totals. Typing filters the listing after a short pause.",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = guarded(lazy, func(cmd *cobra.Command, a *app, _ []string) error {
		return runBrowse(cmd, a, metricsAddr)
	})

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while browsing")

	return cmd
}

func runBrowse(cmd *cobra.Command, a *app, metricsAddr string) error {
	stopMetrics, err := serveMetrics(cmd.Context(), metricsAddr, a.registry, a.logger)
	if err != nil {
		return err
	}
	defer stopMetrics()

	model := catalogview.NewBrowseModel(cmd.Context(), a.catalog)
	p := tea.NewProgram(
		model,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	a.catalog.OnChange(func(snap application.CatalogSnapshot) {
		p.Send(catalogview.SnapshotMsg(snap))
	})
	defer a.catalog.OnChange(nil)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
