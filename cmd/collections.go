package cmd

import (
	"fmt"

	"github.com/bnema/assetforge-cli/internal/application"
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newCollectionsCmd(lazy *lazyApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection"},
		Short:   "List and create collections",
	}

	cmd.AddCommand(newCollectionsListCmd(lazy), newCollectionsCreateCmd(lazy))

	return cmd
}

func newCollectionsListCmd(lazy *lazyApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = guarded(lazy, func(cmd *cobra.Command, a *app, _ []string) error {
		format, err := parseOutput(lazy.opts.output)
		if err != nil {
			return err
		}

		report, err := fetchViews(cmd, format, refreshOf(a, domain.ViewCollections))
		if err != nil {
			return err
		}
		if err := viewError(report, domain.ViewCollections); err != nil {
			return err
		}

		snap := a.catalog.Snapshot()
		if format != outputText {
			out := make([]collectionOutput, 0, len(snap.Collections))
			for _, c := range snap.Collections {
				out = append(out, toCollectionOutput(c))
			}
			return writeStructured(cmd.OutOrStdout(), format, out)
		}
		return renderViews(cmd, a, snap, domain.ViewCollections)
	})

	return cmd
}

func newCollectionsCreateCmd(lazy *lazyApp) *cobra.Command {
	var name, description, color string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collection",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = guarded(lazy, func(cmd *cobra.Command, a *app, _ []string) error {
		format, err := parseOutput(lazy.opts.output)
		if err != nil {
			return err
		}

		c, err := a.mutations.CreateCollection(cmd.Context(), application.CollectionDraft{
			Name:        name,
			Description: description,
			Color:       color,
		})
		if err != nil {
			return err
		}

		if format != outputText {
			return writeStructured(cmd.OutOrStdout(), format, toCollectionOutput(c))
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created collection %s (%s)\n", c.Name, c.ID)
		return err
	})

	cmd.Flags().StringVar(&name, "name", "", "Collection name")
	cmd.Flags().StringVar(&description, "description", "", "Collection description")
	cmd.Flags().StringVar(&color, "color", "", fmt.Sprintf("Colour as #RRGGBB (default %s)", domain.DefaultCollectionColor))

	return cmd
}
