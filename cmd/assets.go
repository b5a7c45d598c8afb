package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/assetforge-cli/internal/application"
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAssetsCmd(lazy *lazyApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assets",
		Aliases: []string{"asset"},
		Short:   "List, upload and delete assets",
	}

	cmd.AddCommand(newAssetsListCmd(lazy), newAssetsUploadCmd(lazy), newAssetsDeleteCmd(lazy))

	return cmd
}

func newAssetsListCmd(lazy *lazyApp) *cobra.Command {
	var search, assetType, collection string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets matching a filter",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = guarded(lazy, func(cmd *cobra.Command, a *app, _ []string) error {
		format, err := parseOutput(lazy.opts.output)
		if err != nil {
			return err
		}
		t, err := domain.ParseAssetType(assetType)
		if err != nil {
			return err
		}
		filter := domain.QueryFilter{Search: search, Type: t, CollectionID: domain.CollectionID(strings.TrimSpace(collection))}

		fetchers := []func(context.Context) application.RefreshReport{
			func(ctx context.Context) application.RefreshReport { return a.catalog.ApplyFilter(ctx, filter) },
		}
		if format == outputText {
			// collection names for the listing
			fetchers = append(fetchers, refreshOf(a, domain.ViewCollections))
		}

		report, err := fetchViews(cmd, format, fetchers...)
		if err != nil {
			return err
		}
		if err := viewError(report, domain.ViewAssets); err != nil {
			return err
		}

		snap := a.catalog.Snapshot()
		if format != outputText {
			return writeStructured(cmd.OutOrStdout(), format, toAssetOutputs(snap.Assets))
		}
		return renderViews(cmd, a, snap, domain.ViewAssets)
	})

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text matched against name, description and tags")
	cmd.Flags().StringVar(&assetType, "type", "", "Asset type (sprite|texture|icon|audio|model_3d|all)")
	cmd.Flags().StringVar(&collection, "collection", "", "Collection ID (or all)")

	return cmd
}

func newAssetsUploadCmd(lazy *lazyApp) *cobra.Command {
	var (
		name        string
		assetType   string
		description string
		tags        []string
		collection  string
		file        string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Create an asset, optionally with file content",
		Long:  "Creates an asset. With --file, the name defaults to the file name without extension and the type is inferred from the extension.",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = guarded(lazy, func(cmd *cobra.Command, a *app, _ []string) error {
		format, err := parseOutput(lazy.opts.output)
		if err != nil {
			return err
		}

		draft := application.AssetDraft{
			Name:         name,
			Type:         domain.AssetType(strings.ToLower(strings.TrimSpace(assetType))),
			Description:  description,
			Tags:         tags,
			CollectionID: domain.CollectionID(collection),
		}

		var upload *application.Upload
		if file != "" {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open upload: %w", err)
			}
			defer f.Close()

			upload = &application.Upload{FileName: filepath.Base(file), Content: f}
			if strings.TrimSpace(draft.Name) == "" {
				draft.Name = domain.DefaultAssetName(file)
			}
			if draft.Type == "" {
				if inferred, ok := domain.InferAssetType(file); ok {
					draft.Type = inferred
				}
			}
		}

		asset, err := a.mutations.CreateAsset(cmd.Context(), draft, upload)
		if err != nil {
			return err
		}

		if format != outputText {
			return writeStructured(cmd.OutOrStdout(), format, toAssetOutput(asset))
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created asset %s (%s) [%s, %s]\n",
			asset.Name, asset.ID, asset.Type.Label(), domain.FormatFileSize(asset.FileSize))
		return err
	})

	cmd.Flags().StringVar(&name, "name", "", "Asset name (defaults to the file name)")
	cmd.Flags().StringVar(&assetType, "type", "", "Asset type (sprite|texture|icon|audio|model_3d)")
	cmd.Flags().StringVar(&description, "description", "", "Asset description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma separated tags")
	cmd.Flags().StringVar(&collection, "collection", "", "Collection ID")
	cmd.Flags().StringVar(&file, "file", "", "File to upload")

	return cmd
}

func newAssetsDeleteCmd(lazy *lazyApp) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <asset-id>",
		Short: "Delete an asset after confirmation",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = guarded(lazy, func(cmd *cobra.Command, a *app, args []string) error {
		a.confirmer.assumeYes = yes

		id := domain.AssetID(args[0])
		deleted, err := a.mutations.DeleteAsset(cmd.Context(), id)
		if err != nil {
			return err
		}

		if !deleted {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Kept asset %s\n", id)
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted asset %s\n", id)
		return err
	})

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")

	return cmd
}
