package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
)

const (
	opCreateAsset      = "create asset"
	opCreateCollection = "create collection"
	opDeleteAsset      = "delete asset"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type AssetDraft struct {
	Name         string
	Type         domain.AssetType
	Description  string
	Tags         []string
	CollectionID domain.CollectionID
}

// Upload is the optional file content of a new asset.
type Upload struct {
	FileName string
	Content  io.Reader
}

type CollectionDraft struct {
	Name        string
	Description string
	// Color defaults to domain.DefaultCollectionColor.
	Color string
}

// Refresher is the part of CatalogSync the coordinator depends on.
type Refresher interface {
	Refresh(ctx context.Context, kinds ...domain.ViewKind) RefreshReport
}

// MutationCoordinator validates and submits writes, then resynchronises the views
// the write affects. Caches are never modified optimistically.
type MutationCoordinator struct {
	gateway   ports.CatalogGateway
	refresher Refresher
	confirmer ports.Confirmer
	metrics   *SyncMetrics
	logger    *slog.Logger
}

func NewMutationCoordinator(gateway ports.CatalogGateway, refresher Refresher, confirmer ports.Confirmer, metrics *SyncMetrics, logger *slog.Logger) *MutationCoordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &MutationCoordinator{
		gateway:   gateway,
		refresher: refresher,
		confirmer: confirmer,
		metrics:   metrics,
		logger:    logger,
	}
}

func (c *MutationCoordinator) CreateAsset(ctx context.Context, draft AssetDraft, upload *Upload) (domain.Asset, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return domain.Asset{}, c.invalid(opCreateAsset, &domain.ValidationError{Field: "name", Message: "is required"})
	}
	if !draft.Type.Valid() {
		return domain.Asset{}, c.invalid(opCreateAsset, &domain.ValidationError{
			Field:   "asset_type",
			Message: "must be one of " + domain.AssetTypeList(),
		})
	}

	req := ports.CreateAssetRequest{
		Name:         name,
		Type:         draft.Type,
		Description:  strings.TrimSpace(draft.Description),
		Tags:         domain.NormalizeTags(draft.Tags),
		CollectionID: domain.CollectionID(strings.TrimSpace(string(draft.CollectionID))),
	}
	if upload != nil && upload.Content != nil {
		req.File = &ports.FileUpload{Name: upload.FileName, Reader: upload.Content}
	}

	asset, err := c.gateway.CreateAsset(ctx, req)
	if err != nil {
		return domain.Asset{}, c.rejected(opCreateAsset, err)
	}

	c.metrics.observeMutation(opCreateAsset, OutcomeSuccess)
	c.logger.Info("asset created", "asset_id", asset.ID, "type", asset.Type)
	c.resync(ctx, domain.ViewAssets, domain.ViewStats)

	return asset, nil
}

func (c *MutationCoordinator) CreateCollection(ctx context.Context, draft CollectionDraft) (domain.Collection, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return domain.Collection{}, c.invalid(opCreateCollection, &domain.ValidationError{Field: "name", Message: "is required"})
	}

	color := strings.TrimSpace(draft.Color)
	if color == "" {
		color = domain.DefaultCollectionColor
	}
	if !hexColorPattern.MatchString(color) {
		return domain.Collection{}, c.invalid(opCreateCollection, &domain.ValidationError{
			Field:   "color",
			Message: "must be a #RRGGBB hex color",
		})
	}

	collection, err := c.gateway.CreateCollection(ctx, ports.CreateCollectionRequest{
		Name:        name,
		Description: strings.TrimSpace(draft.Description),
		Color:       color,
	})
	if err != nil {
		return domain.Collection{}, c.rejected(opCreateCollection, err)
	}

	c.metrics.observeMutation(opCreateCollection, OutcomeSuccess)
	c.logger.Info("collection created", "collection_id", collection.ID)
	c.resync(ctx, domain.ViewCollections, domain.ViewStats)

	return collection, nil
}

// DeleteAsset asks for confirmation first. A declined confirmation returns false
// and no request is made.
func (c *MutationCoordinator) DeleteAsset(ctx context.Context, id domain.AssetID) (bool, error) {
	if strings.TrimSpace(string(id)) == "" {
		return false, c.invalid(opDeleteAsset, &domain.ValidationError{Field: "asset_id", Message: "is required"})
	}
	if c.confirmer == nil {
		return false, errors.New("delete requires a confirmer")
	}

	confirmed, err := c.confirmer.Confirm(ctx, fmt.Sprintf("Delete asset %s? This cannot be undone.", id))
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !confirmed {
		c.metrics.observeMutation(opDeleteAsset, OutcomeDeclined)
		return false, nil
	}

	if err := c.gateway.DeleteAsset(ctx, id); err != nil {
		return false, c.rejected(opDeleteAsset, err)
	}

	c.metrics.observeMutation(opDeleteAsset, OutcomeSuccess)
	c.logger.Info("asset deleted", "asset_id", id)
	c.resync(ctx, domain.ViewAssets, domain.ViewStats)

	return true, nil
}

func (c *MutationCoordinator) resync(ctx context.Context, kinds ...domain.ViewKind) {
	if c.refresher == nil {
		return
	}
	// Failed reads are reported by the refresher; the write itself succeeded.
	if report := c.refresher.Refresh(ctx, kinds...); !report.OK() {
		c.logger.Debug("resync after mutation incomplete", "error", report.Err())
	}
}

func (c *MutationCoordinator) invalid(op string, err *domain.ValidationError) error {
	c.metrics.observeMutation(op, OutcomeInvalid)
	return err
}

func (c *MutationCoordinator) rejected(op string, err error) error {
	c.metrics.observeMutation(op, OutcomeRejected)

	mutationErr := &domain.MutationError{Op: op, Err: err}
	var remote ports.RemoteError
	if errors.As(err, &remote) {
		mutationErr.Status = remote.StatusCode()
		mutationErr.Detail = remote.ErrorDetail()
	}

	return mutationErr
}
