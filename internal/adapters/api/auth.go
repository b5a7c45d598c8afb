package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
)

var errMissingSessionFields = errors.New("session response missing token or user")

var _ ports.AuthGateway = (*Client)(nil)

func (c *Client) ExchangeSession(ctx context.Context, sessionID string) (domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Session{}, errors.New("session id is required")
	}

	req, err := jsonRequest(http.MethodPost, "/auth/session", map[string]string{"session_id": sessionID})
	if err != nil {
		return domain.Session{}, err
	}

	return c.createSession(ctx, req)
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.Session, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return domain.Session{}, err
	}

	return c.createSession(ctx, req)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil)
}

func (c *Client) Me(ctx context.Context) (domain.Profile, error) {
	var user userDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me"}, &user); err != nil {
		return domain.Profile{}, err
	}

	profile := user.toDomain()
	if profile.IsZero() {
		return domain.Profile{}, errors.New("profile response missing user id")
	}

	return profile, nil
}

func (c *Client) createSession(ctx context.Context, req request) (domain.Session, error) {
	var payload sessionDTO
	if err := c.do(ctx, req, &payload); err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{Token: strings.TrimSpace(payload.Token), Profile: payload.User.toDomain()}
	if !session.Valid() {
		return domain.Session{}, errMissingSessionFields
	}

	return session, nil
}
