package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenKey is the secret store key of the bearer token.
const SessionTokenKey = "assetforge/session/token"

// TokenClaims are the display-only claims of a JWT bearer token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// RedirectLogin is the destination of a denied guard decision.
const RedirectLogin = "login"

// Decision is the outcome of Guard. Protected output may only be produced when Allowed.
type Decision struct {
	Allowed    bool
	Profile    domain.Profile
	RedirectTo string
	Err        error
}

// SessionManager owns the authentication state. The token and the profile are
// persisted and purged together.
type SessionManager struct {
	gateway  ports.AuthGateway
	secrets  ports.SecretStore
	profiles ports.ProfileRepository
	logger   *slog.Logger

	exchanged atomic.Bool

	mu      sync.RWMutex
	state   domain.AuthState
	profile domain.Profile
}

func NewSessionManager(gateway ports.AuthGateway, secrets ports.SecretStore, profiles ports.ProfileRepository, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionManager{
		gateway:  gateway,
		secrets:  secrets,
		profiles: profiles,
		logger:   logger,
		state:    domain.AuthStateUnauthenticated,
	}
}

func (m *SessionManager) State() domain.AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *SessionManager) Profile() domain.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// Init restores the persisted session without contacting the backend.
func (m *SessionManager) Init(ctx context.Context) error {
	token, err := m.storedToken(ctx)
	if err != nil {
		m.setUnauthenticated()
		return fmt.Errorf("load session token: %w", err)
	}
	if token == "" {
		m.setUnauthenticated()
		return nil
	}

	profile, err := m.profiles.Load(ctx)
	if err != nil {
		m.setUnauthenticated()
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("load session profile: %w", err)
	}

	m.setAuthenticated(profile)
	return nil
}

// ExchangeOnce trades the one-time credential for a session. Only the first call
// in the lifetime of the manager reaches the backend; every later or concurrent
// call returns ErrExchangeConsumed.
func (m *SessionManager) ExchangeOnce(ctx context.Context, credential string) (domain.Profile, error) {
	if !m.exchanged.CompareAndSwap(false, true) {
		return domain.Profile{}, domain.ErrExchangeConsumed
	}

	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.Profile{}, m.fail(ctx, &domain.AuthError{Reason: "one-time credential is empty"})
	}

	m.setState(domain.AuthStateAuthenticating)

	session, err := m.gateway.ExchangeSession(ctx, credential)
	if err != nil {
		return domain.Profile{}, m.fail(ctx, &domain.AuthError{Reason: "session exchange rejected", Err: err})
	}

	return m.establish(ctx, session)
}

// Login is the password alternative to the one-time exchange. It does not touch the exchange latch.
// A rejected login leaves any stored session in place.
func (m *SessionManager) Login(ctx context.Context, email, password string) (domain.Profile, error) {
	if strings.TrimSpace(email) == "" {
		return domain.Profile{}, &domain.ValidationError{Field: "email", Message: "is required"}
	}
	if password == "" {
		return domain.Profile{}, &domain.ValidationError{Field: "password", Message: "is required"}
	}

	prevState, prevProfile := m.snapshotState()
	m.setState(domain.AuthStateAuthenticating)

	session, err := m.gateway.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		// Nothing was written yet, so a stored session stays usable.
		m.restoreState(prevState, prevProfile)
		return domain.Profile{}, &domain.AuthError{Reason: "login rejected", Err: err}
	}

	return m.establish(ctx, session)
}

// Verify confirms the stored token with the backend. Any failure de-authenticates.
func (m *SessionManager) Verify(ctx context.Context) (domain.Profile, error) {
	token, err := m.storedToken(ctx)
	if err != nil {
		return domain.Profile{}, m.fail(ctx, &domain.AuthError{Reason: "session token unreadable", Err: err})
	}
	if token == "" {
		return domain.Profile{}, m.fail(ctx, &domain.AuthError{Reason: "no session token"})
	}

	if m.State() != domain.AuthStateAuthenticated {
		m.setState(domain.AuthStateAuthenticating)
	}

	profile, err := m.gateway.Me(ctx)
	if err != nil {
		return domain.Profile{}, m.fail(ctx, &domain.AuthError{Reason: verifyFailureReason(err), Err: err})
	}

	if err := m.profiles.Save(ctx, profile); err != nil {
		m.logger.Warn("persist refreshed profile", "error", err)
	}
	m.setAuthenticated(profile)

	return profile, nil
}

// Guard decides whether a protected command may run. A profile handed over by the
// caller, such as one returned by a login that just completed, skips verification.
func (m *SessionManager) Guard(ctx context.Context, contextual *domain.Profile) Decision {
	if contextual != nil && !contextual.IsZero() {
		m.setAuthenticated(*contextual)
		return Decision{Allowed: true, Profile: *contextual}
	}

	profile, err := m.Verify(ctx)
	if err != nil {
		return Decision{RedirectTo: RedirectLogin, Err: err}
	}

	return Decision{Allowed: true, Profile: profile}
}

// Logout always ends in the unauthenticated state. The backend call is best effort.
func (m *SessionManager) Logout(ctx context.Context) error {
	token, err := m.storedToken(ctx)
	if err == nil && token != "" {
		if logoutErr := m.gateway.Logout(ctx); logoutErr != nil {
			m.logger.Warn("backend logout failed", "error", logoutErr)
		}
	}

	purgeErr := m.purge(ctx)
	m.setUnauthenticated()

	if purgeErr != nil {
		return fmt.Errorf("clear local session: %w", purgeErr)
	}
	return nil
}

func (m *SessionManager) establish(ctx context.Context, session domain.Session) (domain.Profile, error) {
	if !session.Valid() {
		return domain.Profile{}, m.fail(ctx, &domain.AuthError{Reason: "backend returned an incomplete session"})
	}

	if err := m.secrets.Put(ctx, SessionTokenKey, session.Token); err != nil {
		return domain.Profile{}, m.fail(ctx, &domain.AuthError{Reason: "store session token", Err: err})
	}
	if err := m.profiles.Save(ctx, session.Profile); err != nil {
		return domain.Profile{}, m.fail(ctx, &domain.AuthError{Reason: "store session profile", Err: err})
	}

	m.setAuthenticated(session.Profile)
	m.logger.Info("signed in", "user_id", session.Profile.ID)

	return session.Profile, nil
}

// fail purges persisted state and returns cause, joined with any purge failure.
func (m *SessionManager) fail(ctx context.Context, cause *domain.AuthError) error {
	purgeErr := m.purge(ctx)
	m.setUnauthenticated()

	if purgeErr != nil {
		return errors.Join(cause, fmt.Errorf("clear local session: %w", purgeErr))
	}
	return cause
}

func (m *SessionManager) purge(ctx context.Context) error {
	// A canceled caller must not leave a half-cleared session behind.
	ctx = context.WithoutCancel(ctx)

	return errors.Join(
		m.secrets.Delete(ctx, SessionTokenKey),
		m.profiles.Clear(ctx),
	)
}

func (m *SessionManager) storedToken(ctx context.Context) (string, error) {
	token, err := m.secrets.Get(ctx, SessionTokenKey)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	return strings.TrimSpace(token), nil
}

// TokenClaims decodes the stored bearer token when it is a JWT. The signature is not
// checked; the claims are for display only. ok is false for opaque or missing tokens.
func (m *SessionManager) TokenClaims(ctx context.Context) (TokenClaims, bool) {
	token, err := m.storedToken(ctx)
	if err != nil {
		m.logger.Debug("read session token", "error", err)
		return TokenClaims{}, false
	}
	if token == "" {
		return TokenClaims{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return TokenClaims{}, false
	}

	var claims TokenClaims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, true
}

func (m *SessionManager) snapshotState() (domain.AuthState, domain.Profile) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.profile
}

func (m *SessionManager) restoreState(state domain.AuthState, profile domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.profile = profile
}

func (m *SessionManager) setState(state domain.AuthState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
}

func (m *SessionManager) setAuthenticated(profile domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = domain.AuthStateAuthenticated
	m.profile = profile
}

func (m *SessionManager) setUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = domain.AuthStateUnauthenticated
	m.profile = domain.Profile{}
}

func verifyFailureReason(err error) string {
	var remote ports.RemoteError
	if errors.As(err, &remote) {
		switch remote.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "session expired or revoked"
		default:
			return fmt.Sprintf("session check returned status %d", remote.StatusCode())
		}
	}

	return "session check failed"
}
