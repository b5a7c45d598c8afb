package ports

import (
	"context"
	"io"

	"github.com/bnema/assetforge-cli/internal/domain"
)

type AuthGateway interface {
	ExchangeSession(ctx context.Context, sessionID string) (domain.Session, error)
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (domain.Profile, error)
}

type CatalogGateway interface {
	ListAssets(ctx context.Context, filter domain.QueryFilter) ([]domain.Asset, error)
	CreateAsset(ctx context.Context, req CreateAssetRequest) (domain.Asset, error)
	DeleteAsset(ctx context.Context, id domain.AssetID) error
	ListCollections(ctx context.Context) ([]domain.Collection, error)
	CreateCollection(ctx context.Context, req CreateCollectionRequest) (domain.Collection, error)
	GetStats(ctx context.Context) (domain.Stats, error)
}

type CreateAssetRequest struct {
	Name         string
	Type         domain.AssetType
	Description  string
	Tags         []string
	CollectionID domain.CollectionID
	File         *FileUpload
}

// FileUpload is streamed as the multipart "file" part.
type FileUpload struct {
	Name   string
	Reader io.Reader
}

type CreateCollectionRequest struct {
	Name        string
	Description string
	Color       string
}

// RemoteError is implemented by gateway errors that carry a response from the backend.
type RemoteError interface {
	error
	StatusCode() int
	ErrorDetail() string
}
