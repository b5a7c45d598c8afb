package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
	"github.com/bnema/assetforge-cli/internal/ports/mocks"
	"github.com/bnema/assetforge-cli/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type syncFixture struct {
	gateway  *mocks.MockCatalogGateway
	notifier *mocks.MockNotifier
	clock    *testutil.FakeClock
	metrics  *SyncMetrics
	sync     *CatalogSync
}

func newSyncFixture(t *testing.T) syncFixture {
	t.Helper()

	metrics, err := NewSyncMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	f := syncFixture{
		gateway:  mocks.NewMockCatalogGateway(t),
		notifier: mocks.NewMockNotifier(t),
		clock:    testutil.NewFakeClock(epoch),
		metrics:  metrics,
	}
	f.sync = NewCatalogSync(CatalogSyncConfig{
		Gateway:  f.gateway,
		Clock:    f.clock,
		Notifier: f.notifier,
		Metrics:  metrics,
	})
	t.Cleanup(f.sync.Close)
	return f
}

func asset(id, name string) domain.Asset {
	return domain.Asset{ID: domain.AssetID(id), Name: name, Type: domain.AssetTypeSprite, Version: 1}
}

func TestCatalogSyncDebounceCollapsesRapidFilterChanges(t *testing.T) {
	f := newSyncFixture(t)

	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{Search: "dragon"}).
		Return([]domain.Asset{asset("a1", "Dragon")}, nil).Once()

	f.sync.SetFilter(domain.QueryFilter{Search: "drag"})
	assert.Equal(t, "drag", f.sync.Filter().Search, "filter is echoed before any fetch")

	f.clock.Advance(100 * time.Millisecond)
	f.sync.SetFilter(domain.QueryFilter{Search: "dragon"})
	assert.Equal(t, "dragon", f.sync.Filter().Search)

	f.clock.Advance(299 * time.Millisecond)
	f.sync.Wait()
	f.gateway.AssertNotCalled(t, "ListAssets", mock.Anything, mock.Anything)

	f.clock.Advance(time.Millisecond)
	f.sync.Wait()

	snap := f.sync.Snapshot()
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, []domain.Asset{asset("a1", "Dragon")}, snap.Assets)
	assert.Equal(t, "dragon", snap.AppliedFilter.Search)
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.superseded))
}

func TestCatalogSyncSetFilterWithSameValueIsNoop(t *testing.T) {
	f := newSyncFixture(t)

	f.sync.SetFilter(domain.QueryFilter{})
	f.clock.Advance(time.Second)
	f.sync.Wait()

	assert.Zero(t, f.clock.PendingTimers())
	assert.Zero(t, f.sync.Snapshot().Generation)
}

func TestCatalogSyncDiscardsStaleAssetResponses(t *testing.T) {
	f := newSyncFixture(t)

	releaseFirst := make(chan struct{})
	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{Search: "knight"}).
		RunAndReturn(func(context.Context, domain.QueryFilter) ([]domain.Asset, error) {
			<-releaseFirst
			return []domain.Asset{asset("old", "Knight")}, nil
		}).Once()
	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{Search: "knight sword"}).
		Return([]domain.Asset{asset("new", "Knight Sword")}, nil).Once()

	f.sync.SetFilter(domain.QueryFilter{Search: "knight"})
	f.clock.Advance(DefaultDebounce)

	f.sync.SetFilter(domain.QueryFilter{Search: "knight sword"})
	f.clock.Advance(DefaultDebounce)

	require.Eventually(t, func() bool { return f.sync.Snapshot().Generation == 2 }, testTimeout, testTick)

	close(releaseFirst)
	f.sync.Wait()

	snap := f.sync.Snapshot()
	assert.Equal(t, uint64(2), snap.Generation)
	assert.Equal(t, []domain.Asset{asset("new", "Knight Sword")}, snap.Assets)
	assert.Equal(t, "knight sword", snap.AppliedFilter.Search)
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.stale))
}

func TestCatalogSyncDiscardsOlderResponseAfterNewerFetchFailed(t *testing.T) {
	f := newSyncFixture(t)

	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{}).
		Return([]domain.Asset{asset("base", "Slime")}, nil).Once()
	require.True(t, f.sync.ApplyFilter(context.Background(), domain.QueryFilter{}).OK())

	releaseKnight := make(chan struct{})
	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{Search: "knight"}).
		RunAndReturn(func(context.Context, domain.QueryFilter) ([]domain.Asset, error) {
			<-releaseKnight
			return []domain.Asset{asset("old", "Knight")}, nil
		}).Once()
	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{Search: "orc"}).
		Return(nil, remoteErr{status: 502, detail: "bad gateway"}).Once()
	f.notifier.EXPECT().Notify(mock.Anything).Once()

	f.sync.SetFilter(domain.QueryFilter{Search: "knight"})
	f.clock.Advance(DefaultDebounce)

	f.sync.SetFilter(domain.QueryFilter{Search: "orc"})
	f.clock.Advance(DefaultDebounce)

	require.Eventually(t, func() bool {
		return f.sync.Snapshot().Errors[domain.ViewAssets] != nil
	}, testTimeout, testTick)

	close(releaseKnight)
	f.sync.Wait()

	snap := f.sync.Snapshot()
	assert.Equal(t, "orc", snap.Filter.Search)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, []domain.Asset{asset("base", "Slime")}, snap.Assets, "cache keeps the last applied listing")
	assert.Empty(t, snap.AppliedFilter.Search)
	assert.Error(t, snap.Errors[domain.ViewAssets], "the failure of the current filter stays visible")
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.stale))
}

func TestCatalogSyncRefreshIsolatesFailuresPerView(t *testing.T) {
	f := newSyncFixture(t)

	ui := domain.Collection{ID: "c1", Name: "UI", Color: domain.DefaultCollectionColor}
	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{}).Return([]domain.Asset{asset("a1", "Hero")}, nil).Twice()
	f.gateway.EXPECT().ListCollections(mock.Anything).Return([]domain.Collection{ui}, nil).Once()
	f.gateway.EXPECT().GetStats(mock.Anything).Return(domain.Stats{TotalAssets: 1, TotalCollections: 1}, nil).Once()

	report := f.sync.Refresh(context.Background())
	require.True(t, report.OK())

	backendDown := errors.New("502 bad gateway")
	f.gateway.EXPECT().ListCollections(mock.Anything).Return(nil, backendDown).Once()
	f.gateway.EXPECT().GetStats(mock.Anything).Return(domain.Stats{TotalAssets: 2, TotalCollections: 1}, nil).Once()

	var notified ports.Notification
	f.notifier.EXPECT().Notify(mock.Anything).Run(func(n ports.Notification) { notified = n }).Once()

	report = f.sync.Refresh(context.Background())
	require.False(t, report.OK())
	require.Len(t, report.Errors, 1)
	require.ErrorIs(t, report.Errors[domain.ViewCollections], backendDown)
	require.ErrorIs(t, report.Err(), domain.ErrFetch)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, report.Errors[domain.ViewCollections], &fetchErr)
	assert.Equal(t, domain.ViewCollections, fetchErr.Kind)

	assert.Equal(t, ports.SeverityError, notified.Severity)
	assert.Contains(t, notified.Message, "collections")

	snap := f.sync.Snapshot()
	assert.Equal(t, []domain.Collection{ui}, snap.Collections, "failed fetch keeps the cached view")
	assert.Equal(t, 2, snap.Stats.TotalAssets, "other views still update")
	assert.Equal(t, uint64(2), snap.Generation)
	assert.Error(t, snap.Errors[domain.ViewCollections])
	assert.NotContains(t, snap.Errors, domain.ViewStats)
}

func TestCatalogSyncRefreshFailureBeforeFirstLoadLeavesViewEmpty(t *testing.T) {
	f := newSyncFixture(t)

	f.gateway.EXPECT().GetStats(mock.Anything).Return(domain.Stats{}, errors.New("timeout")).Once()
	f.notifier.EXPECT().Notify(mock.Anything).Once()

	report := f.sync.Refresh(context.Background(), domain.ViewStats)
	require.Error(t, report.Err())

	snap := f.sync.Snapshot()
	assert.False(t, snap.Loaded[domain.ViewStats])
	assert.Zero(t, snap.Generation)
}

func TestCatalogSyncRefreshUsesCurrentFilter(t *testing.T) {
	f := newSyncFixture(t)

	filter := domain.QueryFilter{Type: domain.AssetTypeAudio, CollectionID: "c9"}
	f.gateway.EXPECT().ListAssets(mock.Anything, filter).Return(nil, nil).Once()

	f.sync.SetFilter(filter)
	report := f.sync.Refresh(context.Background(), domain.ViewAssets, domain.ViewAssets)
	require.True(t, report.OK())

	snap := f.sync.Snapshot()
	assert.Equal(t, filter, snap.AppliedFilter)
	assert.True(t, snap.Loaded[domain.ViewAssets])

	// The debounced fetch scheduled by SetFilter is still pending and takes a newer generation.
	f.gateway.EXPECT().ListAssets(mock.Anything, filter).Return([]domain.Asset{asset("a1", "Beep")}, nil).Once()
	f.clock.Advance(DefaultDebounce)
	f.sync.Wait()
	assert.Equal(t, uint64(2), f.sync.Snapshot().Generation)
}

func TestCatalogSyncApplyFilterFetchesWithoutDebounce(t *testing.T) {
	f := newSyncFixture(t)

	f.sync.SetFilter(domain.QueryFilter{Search: "orc"})
	require.Equal(t, 1, f.clock.PendingTimers())

	filter := domain.QueryFilter{Search: "orcs", Type: domain.AssetTypeSprite}
	f.gateway.EXPECT().ListAssets(mock.Anything, filter).Return([]domain.Asset{asset("a1", "Orc")}, nil).Once()

	report := f.sync.ApplyFilter(context.Background(), filter)
	require.True(t, report.OK())
	assert.Equal(t, filter, f.sync.Snapshot().AppliedFilter)
	assert.Equal(t, 0, f.clock.PendingTimers())

	f.clock.Advance(time.Second)
	f.sync.Wait()
	assert.Equal(t, uint64(1), f.sync.Snapshot().Generation)
}

func TestCatalogSyncNormalizesAllSentinelBeforeFetching(t *testing.T) {
	f := newSyncFixture(t)

	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{}).Return(nil, nil).Once()

	f.sync.SetFilter(domain.QueryFilter{Type: "all", CollectionID: "all"})
	f.clock.Advance(DefaultDebounce)
	f.sync.Wait()

	assert.Equal(t, domain.AssetType("all"), f.sync.Filter().Type)
}

func TestCatalogSyncCloseDropsPendingFetch(t *testing.T) {
	f := newSyncFixture(t)

	f.sync.SetFilter(domain.QueryFilter{Search: "orc"})
	f.sync.Close()
	f.clock.Advance(time.Second)
	f.sync.Wait()

	f.gateway.AssertNotCalled(t, "ListAssets", mock.Anything, mock.Anything)
	assert.Empty(t, f.sync.Refresh(context.Background()).Errors)
}

func TestCatalogSyncOnChangeReceivesAppliedSnapshots(t *testing.T) {
	f := newSyncFixture(t)

	var (
		mu    sync.Mutex
		kinds []int
	)
	f.sync.OnChange(func(snap CatalogSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, len(snap.Loaded))
	})

	f.gateway.EXPECT().GetStats(mock.Anything).Return(domain.Stats{TotalAssets: 4}, nil).Once()
	f.gateway.EXPECT().ListCollections(mock.Anything).Return(nil, nil).Once()

	f.sync.Refresh(context.Background(), domain.ViewStats, domain.ViewCollections)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, kinds, 2)
	assert.ElementsMatch(t, []int{1, 2}, kinds)
}

func TestCatalogSyncSnapshotIsACopy(t *testing.T) {
	f := newSyncFixture(t)

	f.gateway.EXPECT().ListAssets(mock.Anything, domain.QueryFilter{}).Return([]domain.Asset{asset("a1", "Hero")}, nil).Once()
	f.sync.Refresh(context.Background(), domain.ViewAssets)

	snap := f.sync.Snapshot()
	snap.Assets[0].Name = "mutated"

	assert.Equal(t, "Hero", f.sync.Snapshot().Assets[0].Name)
}

func TestSyncMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewSyncMetrics(reg)
	require.NoError(t, err)

	_, err = NewSyncMetrics(reg)
	require.Error(t, err)

	var nilMetrics *SyncMetrics
	assert.NotPanics(t, func() {
		nilMetrics.observeFetch(domain.ViewAssets, OutcomeApplied)
		nilMetrics.debounceSuperseded()
		nilMetrics.observeMutation(opCreateAsset, OutcomeSuccess)
	})
}
