package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	apiURL   string
	logLevel string
	output   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	lazy := &lazyApp{opts: opts}

	rootCmd := &cobra.Command{
		Use:           "af",
		Short:         "Asset Forge CLI (af): browse and manage your game asset library",
		Long:          "af signs in to an Asset Forge backend and lets you browse, filter, upload, import and delete game assets and collections from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			lazy.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", "", "Asset Forge API base URL (overrides config file and environment)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.StringVarP(&opts.output, "output", "o", outputText, "Output format (text|json|yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(lazy),
		newLogoutCmd(lazy),
		newWhoamiCmd(lazy),
		newAssetsCmd(lazy),
		newCollectionsCmd(lazy),
		newStatsCmd(lazy),
		newBrowseCmd(lazy),
		newImportCmd(lazy),
	)

	return rootCmd
}
