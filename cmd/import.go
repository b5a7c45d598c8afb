package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/assetforge-cli/internal/adapters/localfs"
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newImportCmd(lazy *lazyApp) *cobra.Command {
	var (
		include     []string
		collection  string
		tags        []string
		watch       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Upload asset files from a local folder",
		Long:  "Scans a folder for files with known asset extensions and uploads each as a new asset. With --watch, keeps running and uploads files as they are added or changed.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = guarded(lazy, func(cmd *cobra.Command, a *app, args []string) error {
		root := args[0]
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("import folder: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("import folder: %s is not a directory", root)
		}

		matcher, err := localfs.NewMatcher(include)
		if err != nil {
			return err
		}
		entries, err := localfs.Scan(root, matcher)
		if err != nil {
			return err
		}

		importer := localfs.NewImporter(a.mutations, localfs.ImportOptions{
			CollectionID: domain.CollectionID(collection),
			Tags:         tags,
		}, a.logger)

		results, err := importer.ImportAll(cmd.Context(), entries)
		for _, r := range results {
			printImportResult(cmd, r)
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d files, uploaded %d\n", len(entries), countUploaded(results))

		if !watch {
			return localfs.Failed(results)
		}
		return followFolder(cmd, a, importer, root, matcher, metricsAddr)
	})

	cmd.Flags().StringSliceVar(&include, "include", nil, "Only import files matching these globs (** allowed), relative to the folder")
	cmd.Flags().StringVar(&collection, "collection", "", "Collection ID for imported assets")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags added to every imported asset")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep watching the folder for new or changed files")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching")

	return cmd
}

func followFolder(cmd *cobra.Command, a *app, importer *localfs.Importer, root string, matcher localfs.Matcher, metricsAddr string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopMetrics, err := serveMetrics(ctx, metricsAddr, a.registry, a.logger)
	if err != nil {
		return err
	}
	defer stopMetrics()

	watcher, err := localfs.NewWatcher(root, matcher, localfs.DefaultSettle, a.logger)
	if err != nil {
		return err
	}

	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(ctx) }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", root)
	if err := importer.Follow(ctx, watcher.Changes(), func(r localfs.Result) { printImportResult(cmd, r) }); err != nil {
		return err
	}

	if err := <-watchErr; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func printImportResult(cmd *cobra.Command, r localfs.Result) {
	if r.Err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", r.Entry.RelPath, r.Err)
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s as %s (%s)\n", r.Entry.RelPath, r.Asset.ID, r.Asset.Type.Label())
}

func countUploaded(results []localfs.Result) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}
