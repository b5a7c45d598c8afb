package ports

import (
	"context"

	"github.com/bnema/assetforge-cli/internal/domain"
)

// ProfileRepository persists the profile half of a session; the token lives in a SecretStore.
type ProfileRepository interface {
	Load(ctx context.Context) (domain.Profile, error)
	Save(ctx context.Context, profile domain.Profile) error
	Clear(ctx context.Context) error
}
