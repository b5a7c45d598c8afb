package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	sessionFileMode = 0o600
	sessionDirMode  = 0o700
	tempFilePattern = ".session-*.toml.tmp"
)

// Repository stores the signed-in profile in a small TOML file next to the CLI config.
// The bearer token is never written here.
type Repository struct {
	path string
	now  func() time.Time
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ProfileRepository = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("session path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve session path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{path: absPath, now: time.Now, mu: lockForPath(absPath)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Load(ctx context.Context) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Profile{}, err
	}
	if file.Profile == nil {
		return domain.Profile{}, domain.ErrSessionNotFound
	}

	profile := fromSchema(*file.Profile)
	if profile.IsZero() {
		return domain.Profile{}, domain.ErrSessionNotFound
	}

	return profile, nil
}

func (r *Repository) Save(ctx context.Context, profile domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if profile.IsZero() {
		return errors.New("refusing to save an empty profile")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	encoded := toSchema(profile)
	return r.writeSchema(fileSchema{
		SavedAt: r.now().UTC().Format(time.RFC3339),
		Profile: &encoded,
	})
}

func (r *Repository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}

	return nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read session file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode session file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	cleanup = false

	return nil
}

func toSchema(profile domain.Profile) profileSchema {
	return profileSchema{
		ID:      profile.ID,
		Name:    profile.Name,
		Email:   profile.Email,
		Picture: profile.Picture,
	}
}

func fromSchema(profile profileSchema) domain.Profile {
	return domain.Profile{
		ID:      profile.ID,
		Name:    profile.Name,
		Email:   profile.Email,
		Picture: profile.Picture,
	}
}
