package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports/mocks"
	"github.com/bnema/assetforge-cli/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ada = domain.Profile{ID: "u1", Name: "Ada", Email: "ada@example.com"}

type sessionFixture struct {
	gateway  *mocks.MockAuthGateway
	secrets  *testutil.MemorySecretStore
	profiles *testutil.MemoryProfileRepository
	manager  *SessionManager
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()

	f := sessionFixture{
		gateway:  mocks.NewMockAuthGateway(t),
		secrets:  testutil.NewMemorySecretStore(),
		profiles: &testutil.MemoryProfileRepository{},
	}
	f.manager = NewSessionManager(f.gateway, f.secrets, f.profiles, nil)
	return f
}

func (f sessionFixture) seed(t *testing.T) {
	t.Helper()
	require.NoError(t, f.secrets.Put(context.Background(), SessionTokenKey, "tok-1"))
	require.NoError(t, f.profiles.Save(context.Background(), ada))
}

func (f sessionFixture) assertPurged(t *testing.T) {
	t.Helper()

	_, err := f.secrets.Get(context.Background(), SessionTokenKey)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	_, err = f.profiles.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, domain.AuthStateUnauthenticated, f.manager.State())
	assert.True(t, f.manager.Profile().IsZero())
}

func TestSessionManagerInitRestoresPersistedSession(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t)

	require.NoError(t, f.manager.Init(context.Background()))
	assert.Equal(t, domain.AuthStateAuthenticated, f.manager.State())
	assert.Equal(t, ada, f.manager.Profile())
}

func TestSessionManagerInitWithoutTokenIsUnauthenticated(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.profiles.Save(context.Background(), ada))

	require.NoError(t, f.manager.Init(context.Background()))
	assert.Equal(t, domain.AuthStateUnauthenticated, f.manager.State())
}

func TestSessionManagerInitReportsUnreadableStore(t *testing.T) {
	secrets := mocks.NewMockSecretStore(t)
	manager := NewSessionManager(mocks.NewMockAuthGateway(t), secrets, &testutil.MemoryProfileRepository{}, nil)

	secrets.EXPECT().Get(mockAnyContext(), SessionTokenKey).Return("", errors.New("keyring locked")).Once()

	err := manager.Init(context.Background())
	require.ErrorContains(t, err, "keyring locked")
	assert.Equal(t, domain.AuthStateUnauthenticated, manager.State())
}

func TestSessionManagerExchangeOnceEstablishesSession(t *testing.T) {
	f := newSessionFixture(t)
	f.gateway.EXPECT().ExchangeSession(mockAnyContext(), "sess-1").
		Return(domain.Session{Token: "tok-1", Profile: ada}, nil).Once()

	profile, err := f.manager.ExchangeOnce(context.Background(), " sess-1 ")
	require.NoError(t, err)
	assert.Equal(t, ada, profile)
	assert.Equal(t, domain.AuthStateAuthenticated, f.manager.State())

	token, err := f.secrets.Get(context.Background(), SessionTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	stored, err := f.profiles.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ada, stored)
}

func TestSessionManagerExchangeOnceConcurrentCallsReachBackendOnce(t *testing.T) {
	f := newSessionFixture(t)

	release := make(chan struct{})
	f.gateway.EXPECT().ExchangeSession(mockAnyContext(), "sess-1").
		RunAndReturn(func(context.Context, string) (domain.Session, error) {
			<-release
			return domain.Session{Token: "tok-1", Profile: ada}, nil
		}).Once()

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		consumed  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.manager.ExchangeOnce(context.Background(), "sess-1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrExchangeConsumed):
				consumed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	// Losers return without waiting for the winner.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return consumed == callers-1
	}, testTimeout, testTick)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.secrets.Len())
	assert.Equal(t, domain.AuthStateAuthenticated, f.manager.State())
}

func TestSessionManagerExchangeOnceFailurePurgesAndStaysConsumed(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t)

	f.gateway.EXPECT().ExchangeSession(mockAnyContext(), "sess-bad").
		Return(domain.Session{}, remoteErr{status: 400, detail: "Invalid session"}).Once()

	_, err := f.manager.ExchangeOnce(context.Background(), "sess-bad")
	require.ErrorIs(t, err, domain.ErrAuth)
	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	f.assertPurged(t)

	_, err = f.manager.ExchangeOnce(context.Background(), "sess-good")
	require.ErrorIs(t, err, domain.ErrExchangeConsumed)
}

func TestSessionManagerExchangeOnceRejectsEmptyCredentialWithoutNetwork(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.ExchangeOnce(context.Background(), "  ")
	require.ErrorIs(t, err, domain.ErrAuth)
	f.assertPurged(t)
}

func TestSessionManagerExchangeOnceRejectsIncompleteSession(t *testing.T) {
	f := newSessionFixture(t)
	f.gateway.EXPECT().ExchangeSession(mockAnyContext(), "sess-1").
		Return(domain.Session{Token: "tok-1"}, nil).Once()

	_, err := f.manager.ExchangeOnce(context.Background(), "sess-1")
	require.ErrorIs(t, err, domain.ErrAuth)
	f.assertPurged(t)
}

func TestSessionManagerExchangeOncePurgesWhenPersistenceFails(t *testing.T) {
	gateway := mocks.NewMockAuthGateway(t)
	secrets := testutil.NewMemorySecretStore()
	profiles := mocks.NewMockProfileRepository(t)
	manager := NewSessionManager(gateway, secrets, profiles, nil)

	gateway.EXPECT().ExchangeSession(mockAnyContext(), "sess-1").
		Return(domain.Session{Token: "tok-1", Profile: ada}, nil).Once()
	profiles.EXPECT().Save(mockAnyContext(), ada).Return(errors.New("disk full")).Once()
	profiles.EXPECT().Clear(mockAnyContext()).Return(nil).Once()

	_, err := manager.ExchangeOnce(context.Background(), "sess-1")
	require.ErrorIs(t, err, domain.ErrAuth)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 0, secrets.Len())
	assert.Equal(t, domain.AuthStateUnauthenticated, manager.State())
}

func TestSessionManagerVerifyWithoutTokenSkipsNetwork(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.Verify(context.Background())
	require.ErrorIs(t, err, domain.ErrAuth)
	f.assertPurged(t)
}

func TestSessionManagerVerifyRefreshesProfile(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t)

	renamed := ada
	renamed.Name = "Ada L."
	f.gateway.EXPECT().Me(mockAnyContext()).Return(renamed, nil).Once()

	profile, err := f.manager.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, renamed, profile)
	assert.Equal(t, domain.AuthStateAuthenticated, f.manager.State())

	stored, err := f.profiles.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, renamed, stored)
}

func TestSessionManagerVerifyFailuresDeauthenticate(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason string
	}{
		{name: "unauthorized", err: remoteErr{status: 401, detail: "Invalid token"}, wantReason: "session expired or revoked"},
		{name: "server error", err: remoteErr{status: 500}, wantReason: "status 500"},
		{name: "transport", err: errors.New("connection refused"), wantReason: "session check failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			f.seed(t)
			require.NoError(t, f.manager.Init(context.Background()))

			f.gateway.EXPECT().Me(mockAnyContext()).Return(domain.Profile{}, tt.err).Once()

			_, err := f.manager.Verify(context.Background())
			require.ErrorIs(t, err, domain.ErrAuth)
			assert.ErrorContains(t, err, tt.wantReason)
			f.assertPurged(t)
		})
	}
}

func TestSessionManagerGuardUsesContextualProfile(t *testing.T) {
	f := newSessionFixture(t)

	decision := f.manager.Guard(context.Background(), &ada)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ada, decision.Profile)
	assert.Empty(t, decision.RedirectTo)
}

func TestSessionManagerGuardDeniesAndRedirects(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t)
	f.gateway.EXPECT().Me(mockAnyContext()).Return(domain.Profile{}, remoteErr{status: 401}).Once()

	decision := f.manager.Guard(context.Background(), nil)
	assert.False(t, decision.Allowed)
	assert.Equal(t, RedirectLogin, decision.RedirectTo)
	require.ErrorIs(t, decision.Err, domain.ErrAuth)
	assert.True(t, decision.Profile.IsZero())
	f.assertPurged(t)
}

func TestSessionManagerGuardAllowsVerifiedSession(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t)
	f.gateway.EXPECT().Me(mockAnyContext()).Return(ada, nil).Once()

	decision := f.manager.Guard(context.Background(), nil)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ada, decision.Profile)
}

func TestSessionManagerLoginValidatesBeforeNetwork(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.Login(context.Background(), " ", "pw")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "email", validation.Field)

	_, err = f.manager.Login(context.Background(), "ada@example.com", "")
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "password", validation.Field)
}

func TestSessionManagerLoginDoesNotConsumeExchangeLatch(t *testing.T) {
	f := newSessionFixture(t)
	f.gateway.EXPECT().Login(mockAnyContext(), "ada@example.com", "pw").
		Return(domain.Session{Token: "tok-pw", Profile: ada}, nil).Once()
	f.gateway.EXPECT().ExchangeSession(mockAnyContext(), "sess-1").
		Return(domain.Session{Token: "tok-x", Profile: ada}, nil).Once()

	_, err := f.manager.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	_, err = f.manager.ExchangeOnce(context.Background(), "sess-1")
	require.NoError(t, err)
}

func TestSessionManagerRejectedLoginKeepsStoredSession(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t)
	require.NoError(t, f.manager.Init(context.Background()))

	f.gateway.EXPECT().Login(mockAnyContext(), "ada@example.com", "typo").
		Return(domain.Session{}, remoteErr{status: 401, detail: "Invalid email or password"}).Once()

	_, err := f.manager.Login(context.Background(), "ada@example.com", "typo")
	require.ErrorIs(t, err, domain.ErrAuth)

	token, err := f.secrets.Get(context.Background(), SessionTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	stored, err := f.profiles.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ada, stored)
	assert.Equal(t, domain.AuthStateAuthenticated, f.manager.State())
	assert.Equal(t, ada, f.manager.Profile())
}

func TestSessionManagerRejectedLoginWithoutSessionStaysSignedOut(t *testing.T) {
	f := newSessionFixture(t)

	f.gateway.EXPECT().Login(mockAnyContext(), "ada@example.com", "typo").
		Return(domain.Session{}, remoteErr{status: 401, detail: "Invalid email or password"}).Once()

	_, err := f.manager.Login(context.Background(), "ada@example.com", "typo")
	require.ErrorIs(t, err, domain.ErrAuth)
	f.assertPurged(t)
}

func TestSessionManagerTokenClaims(t *testing.T) {
	f := newSessionFixture(t)

	_, ok := f.manager.TokenClaims(context.Background())
	assert.False(t, ok, "no token stored")

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": ada.ID,
		"exp": expires.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	require.NoError(t, f.secrets.Put(context.Background(), SessionTokenKey, token))

	claims, ok := f.manager.TokenClaims(context.Background())
	require.True(t, ok)
	assert.Equal(t, ada.ID, claims.Subject)
	assert.True(t, expires.Equal(claims.ExpiresAt))

	require.NoError(t, f.secrets.Put(context.Background(), SessionTokenKey, "tok-opaque"))
	_, ok = f.manager.TokenClaims(context.Background())
	assert.False(t, ok)
}

func TestSessionManagerLogoutPurgesEvenWhenBackendFails(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t)
	require.NoError(t, f.manager.Init(context.Background()))

	f.gateway.EXPECT().Logout(mockAnyContext()).Return(errors.New("backend down")).Once()

	require.NoError(t, f.manager.Logout(context.Background()))
	f.assertPurged(t)
}

func TestSessionManagerLogoutWithoutTokenSkipsBackend(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.manager.Logout(context.Background()))
	f.assertPurged(t)
}

func TestSessionManagerLogoutPurgesWithCanceledContext(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.gateway.EXPECT().Logout(mockAnyContext()).Return(context.Canceled).Once()

	require.NoError(t, f.manager.Logout(ctx))
	f.assertPurged(t)
}
