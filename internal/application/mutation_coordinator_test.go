package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
	"github.com/bnema/assetforge-cli/internal/ports/mocks"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingRefresher struct {
	mu    sync.Mutex
	calls [][]domain.ViewKind
}

func (r *recordingRefresher) Refresh(_ context.Context, kinds ...domain.ViewKind) RefreshReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, kinds)
	return RefreshReport{}
}

type mutationFixture struct {
	gateway   *mocks.MockCatalogGateway
	confirmer *mocks.MockConfirmer
	refresher *recordingRefresher
	metrics   *SyncMetrics
	coord     *MutationCoordinator
}

func newMutationFixture(t *testing.T) mutationFixture {
	t.Helper()

	metrics, err := NewSyncMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	f := mutationFixture{
		gateway:   mocks.NewMockCatalogGateway(t),
		confirmer: mocks.NewMockConfirmer(t),
		refresher: &recordingRefresher{},
		metrics:   metrics,
	}
	f.coord = NewMutationCoordinator(f.gateway, f.refresher, f.confirmer, metrics, nil)
	return f
}

func TestCreateAssetValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name      string
		draft     AssetDraft
		wantField string
	}{
		{name: "blank name", draft: AssetDraft{Name: "  ", Type: domain.AssetTypeSprite}, wantField: "name"},
		{name: "missing type", draft: AssetDraft{Name: "Hero"}, wantField: "asset_type"},
		{name: "unknown type", draft: AssetDraft{Name: "Hero", Type: "video"}, wantField: "asset_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMutationFixture(t)

			_, err := f.coord.CreateAsset(context.Background(), tt.draft, nil)
			require.ErrorIs(t, err, domain.ErrValidation)

			var validation *domain.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.wantField, validation.Field)
			assert.Empty(t, f.refresher.calls)
			assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.mutations.WithLabelValues(opCreateAsset, OutcomeInvalid)))
		})
	}
}

func TestCreateAssetSubmitsAndResyncsAssetsAndStats(t *testing.T) {
	f := newMutationFixture(t)

	created := domain.Asset{ID: "a1", Name: "Hero", Type: domain.AssetTypeSprite, Version: 1}
	f.gateway.EXPECT().CreateAsset(mock.Anything, mock.MatchedBy(func(req ports.CreateAssetRequest) bool {
		if req.File == nil {
			return false
		}
		content, err := io.ReadAll(req.File.Reader)
		return err == nil &&
			req.Name == "Hero" &&
			req.Type == domain.AssetTypeSprite &&
			req.Description == "main character" &&
			assert.ObjectsAreEqual([]string{"hero", "idle"}, req.Tags) &&
			req.CollectionID == "c1" &&
			req.File.Name == "hero.png" &&
			string(content) == "png"
	})).Return(created, nil).Once()

	got, err := f.coord.CreateAsset(context.Background(), AssetDraft{
		Name:         " Hero ",
		Type:         domain.AssetTypeSprite,
		Description:  "main character ",
		Tags:         []string{"hero", "idle", "hero", ""},
		CollectionID: "c1",
	}, &Upload{FileName: "hero.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, [][]domain.ViewKind{{domain.ViewAssets, domain.ViewStats}}, f.refresher.calls)
}

func TestCreateAssetWithoutUploadSendsNoFile(t *testing.T) {
	f := newMutationFixture(t)

	f.gateway.EXPECT().CreateAsset(mock.Anything, mock.MatchedBy(func(req ports.CreateAssetRequest) bool {
		return req.File == nil && req.Tags != nil && len(req.Tags) == 0
	})).Return(domain.Asset{ID: "a2"}, nil).Once()

	_, err := f.coord.CreateAsset(context.Background(), AssetDraft{Name: "Beep", Type: domain.AssetTypeAudio}, nil)
	require.NoError(t, err)
}

func TestCreateAssetFailureCarriesServerDetailAndSkipsResync(t *testing.T) {
	f := newMutationFixture(t)

	f.gateway.EXPECT().CreateAsset(mock.Anything, mock.Anything).
		Return(domain.Asset{}, remoteErr{status: 413, detail: "file too large"}).Once()

	_, err := f.coord.CreateAsset(context.Background(), AssetDraft{Name: "Big", Type: domain.AssetTypeTexture}, nil)
	require.ErrorIs(t, err, domain.ErrMutation)

	var mutationErr *domain.MutationError
	require.ErrorAs(t, err, &mutationErr)
	assert.Equal(t, 413, mutationErr.Status)
	assert.Equal(t, "file too large", mutationErr.Detail)
	assert.Equal(t, "create asset: file too large", err.Error())
	assert.Empty(t, f.refresher.calls)
}

func TestCreateAssetTransportFailureHasNoDetail(t *testing.T) {
	f := newMutationFixture(t)

	f.gateway.EXPECT().CreateAsset(mock.Anything, mock.Anything).
		Return(domain.Asset{}, errors.New("connection reset")).Once()

	_, err := f.coord.CreateAsset(context.Background(), AssetDraft{Name: "Hero", Type: domain.AssetTypeIcon}, nil)
	var mutationErr *domain.MutationError
	require.ErrorAs(t, err, &mutationErr)
	assert.Empty(t, mutationErr.Detail)
	assert.ErrorContains(t, err, "connection reset")
}

func TestCreateCollectionDefaultsColorAndResyncs(t *testing.T) {
	f := newMutationFixture(t)

	f.gateway.EXPECT().CreateCollection(mock.Anything, ports.CreateCollectionRequest{
		Name:  "UI Kit",
		Color: domain.DefaultCollectionColor,
	}).Return(domain.Collection{ID: "c1", Name: "UI Kit", Color: domain.DefaultCollectionColor}, nil).Once()

	got, err := f.coord.CreateCollection(context.Background(), CollectionDraft{Name: "UI Kit"})
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionID("c1"), got.ID)
	assert.Equal(t, [][]domain.ViewKind{{domain.ViewCollections, domain.ViewStats}}, f.refresher.calls)
}

func TestCreateCollectionValidation(t *testing.T) {
	f := newMutationFixture(t)

	_, err := f.coord.CreateCollection(context.Background(), CollectionDraft{Name: ""})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)

	_, err = f.coord.CreateCollection(context.Background(), CollectionDraft{Name: "UI", Color: "blue"})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "color", validation.Field)
}

func TestDeleteAssetDeclinedMakesNoRequest(t *testing.T) {
	f := newMutationFixture(t)

	f.confirmer.EXPECT().Confirm(mock.Anything, mock.Anything).Return(false, nil).Once()

	deleted, err := f.coord.DeleteAsset(context.Background(), "a1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, f.refresher.calls)
	f.gateway.AssertNotCalled(t, "DeleteAsset", mock.Anything, mock.Anything)
}

func TestDeleteAssetConfirmedDeletesAndResyncs(t *testing.T) {
	f := newMutationFixture(t)

	f.confirmer.EXPECT().Confirm(mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "a1")
	})).Return(true, nil).Once()
	f.gateway.EXPECT().DeleteAsset(mock.Anything, domain.AssetID("a1")).Return(nil).Once()

	deleted, err := f.coord.DeleteAsset(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, [][]domain.ViewKind{{domain.ViewAssets, domain.ViewStats}}, f.refresher.calls)
}

func TestDeleteAssetNotFoundIsMutationError(t *testing.T) {
	f := newMutationFixture(t)

	f.confirmer.EXPECT().Confirm(mock.Anything, mock.Anything).Return(true, nil).Once()
	f.gateway.EXPECT().DeleteAsset(mock.Anything, domain.AssetID("gone")).
		Return(errors.Join(remoteErr{status: 404, detail: "Asset not found"}, domain.ErrNotFound)).Once()

	deleted, err := f.coord.DeleteAsset(context.Background(), "gone")
	assert.False(t, deleted)
	require.ErrorIs(t, err, domain.ErrMutation)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.refresher.calls)
}

func TestDeleteAssetConfirmErrorAborts(t *testing.T) {
	f := newMutationFixture(t)

	f.confirmer.EXPECT().Confirm(mock.Anything, mock.Anything).Return(false, io.EOF).Once()

	deleted, err := f.coord.DeleteAsset(context.Background(), "a1")
	assert.False(t, deleted)
	require.ErrorIs(t, err, io.EOF)
}

func TestDeleteAssetRequiresID(t *testing.T) {
	f := newMutationFixture(t)

	_, err := f.coord.DeleteAsset(context.Background(), " ")
	require.ErrorIs(t, err, domain.ErrValidation)
}
