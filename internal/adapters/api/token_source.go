package api

import (
	"context"
	"errors"
	"os"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
)

// SecretTokenSource reads the bearer token from a secret store without ever writing it.
type SecretTokenSource struct {
	Store ports.SecretStore
	Key   string
}

func (s SecretTokenSource) Token(ctx context.Context) (string, error) {
	if s.Store == nil {
		return "", nil
	}

	token, err := s.Store.Get(ctx, s.Key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, domain.ErrSecretNotFound) {
			return "", nil
		}
		return "", err
	}

	return token, nil
}
