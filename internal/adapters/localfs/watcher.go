package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultSettle     = 500 * time.Millisecond
	eventBufferLength = 256
)

type Op string

const (
	OpUpsert Op = "upsert"
	OpRemove Op = "remove"
)

// Change is emitted once per file after its events have settled.
// Entry is only partially filled for OpRemove.
type Change struct {
	Op    Op
	Entry Entry
}

// Watcher turns fsnotify events under a root into settled Change values.
// Files are reported after Settle has elapsed without further events on them.
type Watcher struct {
	root    string
	matcher Matcher
	settle  time.Duration
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
	changes chan Change

	mu      sync.Mutex
	pending map[string]time.Time
}

func NewWatcher(root string, m Matcher, settle time.Duration, logger *slog.Logger) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:    root,
		matcher: m,
		settle:  settle,
		logger:  logger,
		fsw:     fsw,
		changes: make(chan Change, eventBufferLength),
		pending: map[string]time.Time{},
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Changes is closed when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run processes events until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.fsw.Close()

	tick := time.NewTicker(w.settle / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("watch queue overflowed, some changes may be missed", "root", w.root)
				continue
			}
			return fmt.Errorf("watch %s: %w", w.root, err)
		case now := <-tick.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	if _, ok := w.matcher.Match(rel); !ok {
		return
	}

	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
	w.logger.Debug("file change detected", "path", filepath.ToSlash(rel), "op", ev.Op.String())
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var due []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range due {
		change, ok := w.resolve(path)
		if !ok {
			continue
		}
		select {
		case w.changes <- change:
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) resolve(path string) (Change, bool) {
	entry, ok, err := stat(w.root, path, w.matcher)
	if err == nil && ok {
		return Change{Op: OpUpsert, Entry: entry}, true
	}
	if errors.Is(err, fs.ErrNotExist) {
		rel, _ := filepath.Rel(w.root, path)
		return Change{Op: OpRemove, Entry: Entry{Path: path, RelPath: filepath.ToSlash(rel)}}, true
	}
	if err != nil {
		w.logger.Warn("failed to stat changed file", "path", path, "error", err)
	}
	return Change{}, false
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
