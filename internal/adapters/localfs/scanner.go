// Package localfs indexes a local asset folder and keeps it in sync with the catalog.
package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bnema/assetforge-cli/internal/domain"
)

var ErrInvalidPattern = errors.New("invalid include pattern")

// Entry is a file that maps to a known asset type.
type Entry struct {
	Path    string
	RelPath string
	Type    domain.AssetType
	Size    int64
	ModTime time.Time
}

func (e Entry) changedSince(prev Entry) bool {
	return e.Size != prev.Size || !e.ModTime.Equal(prev.ModTime)
}

// Matcher decides which files under a root are candidates for import.
// An empty include list accepts every file with a recognised extension.
type Matcher struct {
	include []string
}

func NewMatcher(include []string) (Matcher, error) {
	patterns := make([]string, 0, len(include))
	for _, raw := range include {
		p := filepath.ToSlash(strings.TrimSpace(raw))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return Matcher{}, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
		}
		patterns = append(patterns, p)
	}
	return Matcher{include: patterns}, nil
}

// Match reports the asset type for relPath, or false when the file is skipped.
func (m Matcher) Match(relPath string) (domain.AssetType, bool) {
	slashed := filepath.ToSlash(relPath)
	if hiddenPath(slashed) {
		return "", false
	}

	t, ok := domain.InferAssetType(slashed)
	if !ok {
		return "", false
	}
	if len(m.include) == 0 {
		return t, true
	}
	for _, p := range m.include {
		if doublestar.MatchUnvalidated(p, slashed) {
			return t, true
		}
	}
	return "", false
}

// Scan walks root and returns matching entries sorted by relative path.
func Scan(root string, m Matcher) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		entry, ok, err := stat(root, path, m)
		if err != nil {
			return err
		}
		if ok {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
	return entries, nil
}

func stat(root, path string, m Matcher) (Entry, bool, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Entry{}, false, err
	}
	t, ok := m.Match(rel)
	if !ok {
		return Entry{}, false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, false, err
	}
	if !info.Mode().IsRegular() {
		return Entry{}, false, nil
	}

	return Entry{
		Path:    path,
		RelPath: filepath.ToSlash(rel),
		Type:    t,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true, nil
}

func hiddenPath(slashed string) bool {
	for _, part := range strings.Split(slashed, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
