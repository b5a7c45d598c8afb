package application

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
)

const DefaultDebounce = 300 * time.Millisecond

type CatalogSyncConfig struct {
	Gateway  ports.CatalogGateway
	Clock    ports.Clock
	Notifier ports.Notifier
	Metrics  *SyncMetrics
	Logger   *slog.Logger
	// Debounce is the quiescence window after the last filter change. Zero means DefaultDebounce.
	Debounce time.Duration
}

// CatalogSnapshot is a copy of the cached views. Views that have never loaded are zero.
type CatalogSnapshot struct {
	Filter        domain.QueryFilter
	AppliedFilter domain.QueryFilter
	Generation    uint64
	Assets        []domain.Asset
	Collections   []domain.Collection
	Stats         domain.Stats
	Loaded        map[domain.ViewKind]bool
	Errors        map[domain.ViewKind]error
}

// RefreshReport lists the per-view failures of one Refresh call. Missing kinds succeeded.
type RefreshReport struct {
	Errors map[domain.ViewKind]error
}

func (r RefreshReport) OK() bool {
	return len(r.Errors) == 0
}

func (r RefreshReport) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, kind := range domain.AllViews {
		if err, ok := r.Errors[kind]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CatalogSync keeps the asset listing, the collection listing and the stats view
// consistent with the backend. Every assets fetch takes a generation number and a
// response is applied only if no newer generation has completed before it, whether
// that newer fetch succeeded or failed.
type CatalogSync struct {
	gateway  ports.CatalogGateway
	clock    ports.Clock
	notifier ports.Notifier
	metrics  *SyncMetrics
	logger   *slog.Logger
	debounce time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	settled  *sync.Cond
	inflight int
	closed   bool

	filter      domain.QueryFilter
	pending     ports.Timer
	debounceSeq uint64

	issuedGen     uint64
	settledGen    uint64
	appliedGen    uint64
	appliedFilter domain.QueryFilter
	assets        []domain.Asset
	collections   []domain.Collection
	stats         domain.Stats
	loaded        map[domain.ViewKind]bool
	lastErr       map[domain.ViewKind]error

	onChange func(CatalogSnapshot)
}

func NewCatalogSync(cfg CatalogSyncConfig) *CatalogSync {
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &CatalogSync{
		gateway:  cfg.Gateway,
		clock:    cfg.Clock,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
		baseCtx:  ctx,
		cancel:   cancel,
		loaded:   map[domain.ViewKind]bool{},
		lastErr:  map[domain.ViewKind]error{},
	}
	s.settled = sync.NewCond(&s.mu)

	return s
}

// OnChange registers fn to be called after every applied update or recorded failure,
// outside the engine lock.
func (s *CatalogSync) OnChange(fn func(CatalogSnapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *CatalogSync) Filter() domain.QueryFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter records f at once and schedules one assets fetch after the debounce
// window. A newer SetFilter within the window replaces the scheduled fetch.
func (s *CatalogSync) SetFilter(f domain.QueryFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if f == s.filter {
		return
	}
	s.filter = f

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
		s.metrics.debounceSuperseded()
	}

	s.debounceSeq++
	seq := s.debounceSeq
	s.pending = s.clock.AfterFunc(s.debounce, func() { s.fireDebounced(seq) })
}

func (s *CatalogSync) fireDebounced(seq uint64) {
	s.mu.Lock()
	// A timer that already fired cannot be stopped, so the sequence decides.
	if s.closed || seq != s.debounceSeq {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	gen, filter := s.issueAssetsLocked()
	s.mu.Unlock()

	go func() {
		defer s.done()
		_ = s.fetchAssets(s.baseCtx, gen, filter)
	}()
}

// ApplyFilter sets f without debouncing and fetches the listing for it at once.
// A debounced fetch that has not fired yet is dropped.
func (s *CatalogSync) ApplyFilter(ctx context.Context, f domain.QueryFilter) RefreshReport {
	s.mu.Lock()
	if !s.closed {
		s.filter = f
		s.debounceSeq++
		if s.pending != nil {
			s.pending.Stop()
			s.pending = nil
		}
	}
	s.mu.Unlock()

	return s.Refresh(ctx, domain.ViewAssets)
}

// Refresh fetches the given views immediately, all of them when kinds is empty,
// and blocks until every fetch has settled. Failures are isolated per view.
func (s *CatalogSync) Refresh(ctx context.Context, kinds ...domain.ViewKind) RefreshReport {
	if len(kinds) == 0 {
		kinds = domain.AllViews
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return RefreshReport{Errors: map[domain.ViewKind]error{}}
	}

	type job struct {
		kind   domain.ViewKind
		gen    uint64
		filter domain.QueryFilter
	}
	var jobs []job
	seen := map[domain.ViewKind]bool{}
	for _, kind := range kinds {
		if seen[kind] {
			continue
		}
		seen[kind] = true

		j := job{kind: kind}
		if kind == domain.ViewAssets {
			j.gen, j.filter = s.issueAssetsLocked()
		} else {
			s.inflight++
		}
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	var (
		wg       sync.WaitGroup
		reportMu sync.Mutex
		report   = RefreshReport{Errors: map[domain.ViewKind]error{}}
	)
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.done()

			var err error
			switch j.kind {
			case domain.ViewAssets:
				err = s.fetchAssets(ctx, j.gen, j.filter)
			case domain.ViewCollections:
				err = s.fetchCollections(ctx)
			case domain.ViewStats:
				err = s.fetchStats(ctx)
			default:
				err = &domain.FetchError{Kind: j.kind, Err: errors.New("unknown view")}
			}
			if err != nil {
				reportMu.Lock()
				report.Errors[j.kind] = err
				reportMu.Unlock()
			}
		}()
	}
	wg.Wait()

	return report
}

// Wait blocks until no fetch is in flight. It does not wait for a pending debounce.
func (s *CatalogSync) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inflight > 0 {
		s.settled.Wait()
	}
}

// Close drops the pending debounced fetch and cancels fetches it started.
func (s *CatalogSync) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.debounceSeq++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.cancel()
}

func (s *CatalogSync) Snapshot() CatalogSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *CatalogSync) snapshotLocked() CatalogSnapshot {
	snap := CatalogSnapshot{
		Filter:        s.filter,
		AppliedFilter: s.appliedFilter,
		Generation:    s.appliedGen,
		Assets:        slices.Clone(s.assets),
		Collections:   slices.Clone(s.collections),
		Stats:         s.stats,
		Loaded:        make(map[domain.ViewKind]bool, len(s.loaded)),
		Errors:        make(map[domain.ViewKind]error, len(s.lastErr)),
	}
	for k, v := range s.loaded {
		snap.Loaded[k] = v
	}
	for k, v := range s.lastErr {
		snap.Errors[k] = v
	}

	return snap
}

// issueAssetsLocked reserves the next generation and captures the filter it was issued with.
func (s *CatalogSync) issueAssetsLocked() (uint64, domain.QueryFilter) {
	s.issuedGen++
	s.inflight++
	return s.issuedGen, s.filter
}

func (s *CatalogSync) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 {
		s.settled.Broadcast()
	}
}

func (s *CatalogSync) fetchAssets(ctx context.Context, gen uint64, filter domain.QueryFilter) error {
	assets, err := s.gateway.ListAssets(ctx, filter.Normalize())

	s.mu.Lock()
	if gen <= s.settledGen {
		s.mu.Unlock()
		s.metrics.observeFetch(domain.ViewAssets, OutcomeStale)
		s.logger.Debug("discarded stale asset listing", "generation", gen)
		if err != nil {
			return &domain.FetchError{Kind: domain.ViewAssets, Err: err}
		}
		return nil
	}
	s.settledGen = gen
	if err != nil {
		return s.recordFailureLocked(domain.ViewAssets, err)
	}

	s.appliedGen = gen
	s.appliedFilter = filter
	s.assets = assets
	s.markLoadedLocked(domain.ViewAssets)
	s.metrics.observeFetch(domain.ViewAssets, OutcomeApplied)
	return s.publishLocked()
}

func (s *CatalogSync) fetchCollections(ctx context.Context) error {
	collections, err := s.gateway.ListCollections(ctx)

	s.mu.Lock()
	if err != nil {
		return s.recordFailureLocked(domain.ViewCollections, err)
	}

	s.collections = collections
	s.markLoadedLocked(domain.ViewCollections)
	s.metrics.observeFetch(domain.ViewCollections, OutcomeApplied)
	return s.publishLocked()
}

func (s *CatalogSync) fetchStats(ctx context.Context) error {
	stats, err := s.gateway.GetStats(ctx)

	s.mu.Lock()
	if err != nil {
		return s.recordFailureLocked(domain.ViewStats, err)
	}

	s.stats = stats
	s.markLoadedLocked(domain.ViewStats)
	s.metrics.observeFetch(domain.ViewStats, OutcomeApplied)
	return s.publishLocked()
}

func (s *CatalogSync) markLoadedLocked(kind domain.ViewKind) {
	s.loaded[kind] = true
	delete(s.lastErr, kind)
}

// recordFailureLocked keeps the cached view and releases the lock before reporting.
func (s *CatalogSync) recordFailureLocked(kind domain.ViewKind, err error) error {
	fetchErr := &domain.FetchError{Kind: kind, Err: err}
	s.lastErr[kind] = fetchErr
	hook := s.onChange
	var snap CatalogSnapshot
	if hook != nil {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	s.metrics.observeFetch(kind, OutcomeError)
	s.logger.Warn("catalog fetch failed", "view", kind, "error", err)
	if s.notifier != nil {
		s.notifier.Notify(ports.Notification{
			Severity: ports.SeverityError,
			Message:  "Failed to load " + string(kind),
			Err:      fetchErr,
		})
	}
	if hook != nil {
		hook(snap)
	}

	return fetchErr
}

// publishLocked releases the lock and hands a snapshot to the change hook.
func (s *CatalogSync) publishLocked() error {
	hook := s.onChange
	var snap CatalogSnapshot
	if hook != nil {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return nil
}
