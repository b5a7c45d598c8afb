// Package fakebackend is an in-process Asset Forge backend used by tests.
package fakebackend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadBytes = 32 << 20

type user struct {
	profile  domain.Profile
	password string
}

type storedAsset struct {
	owner string
	asset domain.Asset
}

type storedCollection struct {
	owner      string
	collection domain.Collection
}

// Server keeps users, sessions, assets and collections in memory.
type Server struct {
	mu          sync.Mutex
	now         func() time.Time
	users       map[string]*user
	sessionIDs  map[string]string
	tokens      map[string]string
	assets      []storedAsset
	collections []storedCollection
	requests    map[string]int
	failures    map[string]failure
	hook        func(*http.Request)

	router *mux.Router
}

type failure struct {
	status int
	detail string
}

func New() *Server {
	s := &Server{
		now:        time.Now,
		users:      map[string]*user{},
		sessionIDs: map[string]string{},
		tokens:     map[string]string{},
		requests:   map[string]int{},
		failures:   map[string]failure{},
	}
	s.router = s.routes()
	return s
}

// Start serves s on a loopback listener closed at the end of the test.
func Start(t testing.TB) (*Server, string) {
	t.Helper()

	s := New()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv.URL
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.track)

	r.HandleFunc("/auth/session", s.handleExchange).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.authed(s.handleMe)).Methods(http.MethodGet)

	r.HandleFunc("/assets", s.authed(s.handleListAssets)).Methods(http.MethodGet)
	r.HandleFunc("/assets", s.authed(s.handleCreateAsset)).Methods(http.MethodPost)
	r.HandleFunc("/assets/{id}", s.authed(s.handleDeleteAsset)).Methods(http.MethodDelete)

	r.HandleFunc("/collections", s.authed(s.handleListCollections)).Methods(http.MethodGet)
	r.HandleFunc("/collections", s.authed(s.handleCreateCollection)).Methods(http.MethodPost)

	r.HandleFunc("/stats", s.authed(s.handleStats)).Methods(http.MethodGet)

	return r
}

// AddUser registers a user that can sign in with password.
func (s *Server) AddUser(name, email, password string) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := domain.Profile{ID: "user_" + shortID(), Name: name, Email: email}
	s.users[profile.ID] = &user{profile: profile, password: password}
	return profile
}

// IssueSessionID returns a one-time credential for userID, as the hosted sign-in page would.
func (s *Server) IssueSessionID(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessionIDs[id] = userID
	return id
}

// IssueToken returns a bearer token for userID without going through sign-in.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(userID)
}

// RegisterToken accepts token as a bearer credential for userID.
func (s *Server) RegisterToken(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
}

func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]string{}
}

// FailNext makes the next request to "METHOD /path" answer with status and detail.
func (s *Server) FailNext(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// SetHook runs fn at the start of every request, before any state is read.
func (s *Server) SetHook(fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

// Requests counts handled requests to "METHOD /path".
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

func (s *Server) SeedCollection(userID, name, color string) domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := domain.Collection{ID: domain.CollectionID("col_" + shortID()), Name: name, Color: color}
	s.collections = append(s.collections, storedCollection{owner: userID, collection: c})
	return c
}

func (s *Server) SeedAsset(userID string, a domain.Asset) domain.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = domain.AssetID("asset_" + shortID())
	}
	if a.Version == 0 {
		a.Version = 1
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	a.Tags = domain.NormalizeTags(a.Tags)
	s.assets = append(s.assets, storedAsset{owner: userID, asset: a})
	return a
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + routeTemplate(r)

		s.mu.Lock()
		s.requests[route]++
		hook := s.hook
		fail, failing := s.failures[route]
		delete(s.failures, route)
		s.mu.Unlock()

		if hook != nil {
			hook(r)
		}
		if failing {
			writeDetail(w, fail.status, fail.detail)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func (s *Server) authed(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		s.mu.Lock()
		userID, found := s.tokens[token]
		s.mu.Unlock()
		if !found {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		next(w, r, userID)
	}
}

func (s *Server) issueTokenLocked(userID string) string {
	token := "tok_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.tokens[token] = userID
	return token
}

func (s *Server) sortedAssetsLocked(owner string) []domain.Asset {
	var out []domain.Asset
	for _, stored := range s.assets {
		if stored.owner == owner {
			out = append(out, stored.asset)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
