package localfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/assetforge-cli/internal/application"
	"github.com/bnema/assetforge-cli/internal/domain"
)

// Uploader is satisfied by application.MutationCoordinator.
type Uploader interface {
	CreateAsset(ctx context.Context, draft application.AssetDraft, upload *application.Upload) (domain.Asset, error)
}

type ImportOptions struct {
	CollectionID domain.CollectionID
	Tags         []string
}

type Result struct {
	Entry Entry
	Asset domain.Asset
	Err   error
}

// Importer uploads local files as new assets and remembers what it already sent.
// A file is uploaded again only when its size or modification time changed.
type Importer struct {
	uploader Uploader
	opts     ImportOptions
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[string]Entry
}

func NewImporter(uploader Uploader, opts ImportOptions, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		uploader: uploader,
		opts:     opts,
		logger:   logger,
		seen:     map[string]Entry{},
	}
}

// ImportAll uploads entries in order and stops early only when ctx is done.
func (i *Importer) ImportAll(ctx context.Context, entries []Entry) ([]Result, error) {
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, uploaded := i.importEntry(ctx, e)
		if uploaded || res.Err != nil {
			results = append(results, res)
		}
	}
	return results, nil
}

// Follow applies watcher changes until the channel closes or ctx is done.
// Upload failures are passed to report and do not stop the loop.
func (i *Importer) Follow(ctx context.Context, changes <-chan Change, report func(Result)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-changes:
			if !ok {
				return nil
			}
			switch ch.Op {
			case OpRemove:
				i.forget(ch.Entry.Path)
				i.logger.Info("local file removed, remote asset kept", "path", ch.Entry.RelPath)
			case OpUpsert:
				res, uploaded := i.importEntry(ctx, ch.Entry)
				if (uploaded || res.Err != nil) && report != nil {
					report(res)
				}
			}
		}
	}
}

func (i *Importer) importEntry(ctx context.Context, e Entry) (Result, bool) {
	i.mu.Lock()
	prev, known := i.seen[e.Path]
	i.mu.Unlock()
	if known && !e.changedSince(prev) {
		return Result{Entry: e}, false
	}

	asset, err := i.upload(ctx, e)
	if err != nil {
		i.logger.Warn("import failed", "path", e.RelPath, "error", err)
		return Result{Entry: e, Err: err}, false
	}

	i.mu.Lock()
	i.seen[e.Path] = e
	i.mu.Unlock()
	i.logger.Info("imported asset", "path", e.RelPath, "asset_id", asset.ID, "type", asset.Type)
	return Result{Entry: e, Asset: asset}, true
}

func (i *Importer) upload(ctx context.Context, e Entry) (domain.Asset, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("open %s: %w", e.RelPath, err)
	}
	defer f.Close()

	draft := application.AssetDraft{
		Name:         domain.DefaultAssetName(e.Path),
		Type:         e.Type,
		Description:  "Imported from " + e.RelPath,
		Tags:         i.opts.Tags,
		CollectionID: i.opts.CollectionID,
	}
	asset, err := i.uploader.CreateAsset(ctx, draft, &application.Upload{FileName: filepath.Base(e.Path), Content: f})
	if err != nil {
		return domain.Asset{}, err
	}
	return asset, nil
}

func (i *Importer) forget(path string) {
	i.mu.Lock()
	delete(i.seen, path)
	i.mu.Unlock()
}

// Failed joins the errors of failed results, nil when all succeeded.
func Failed(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Entry.RelPath, r.Err))
		}
	}
	return errors.Join(errs...)
}
