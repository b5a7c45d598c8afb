package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/bnema/assetforge-cli/internal/application"
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func loadedSnapshot() application.CatalogSnapshot {
	props := domain.Collection{ID: "col_1", Name: "Props", Color: "#22C55E", AssetCount: 1, Description: "Crates and barrels"}
	return application.CatalogSnapshot{
		AppliedFilter: domain.QueryFilter{Search: "cr", CollectionID: "col_1"},
		Assets: []domain.Asset{
			{
				ID: "asset_1", Name: "Crate", Type: domain.AssetTypeModel3D, FileSize: 1536, Version: 2,
				CollectionID: "col_1", Tags: []string{"wood", "prop"}, CreatedAt: testNow.Add(-3 * time.Hour),
			},
			{ID: "asset_2", Name: "Crackle", Type: domain.AssetTypeAudio, FileSize: 0, Version: 1},
		},
		Collections: []domain.Collection{props},
		Stats:       domain.Stats{TotalAssets: 12345, TotalCollections: 1, TotalStorageBytes: 5 << 20},
		Loaded: map[domain.ViewKind]bool{
			domain.ViewAssets:      true,
			domain.ViewCollections: true,
			domain.ViewStats:       true,
		},
		Errors: map[domain.ViewKind]error{},
	}
}

func TestRenderFullCatalog(t *testing.T) {
	output, err := Render(loadedSnapshot(), RenderOptions{Now: testNow, Selected: -1})
	require.NoError(t, err)

	assert.Contains(t, output, "Asset Forge Library")
	assert.Contains(t, output, `filter: search "cr", collection Props`)
	assert.Contains(t, output, "assets: 12,345  collections: 1  storage: 5 MB")
	assert.Contains(t, output, "Assets (2)")
	assert.Contains(t, output, "Crate [3D Model] 1.5 KB v2 in Props #wood #prop 3 hours ago asset_1")
	assert.Contains(t, output, "Crackle [Audio] 0 B v1 asset_2")
	assert.Contains(t, output, "Collections (1)")
	assert.Contains(t, output, "Props (1 asset) col_1 Crates and barrels")
	assert.NotContains(t, output, "> ")
	assert.NotContains(t, output, "Failed to load")
}

func TestRenderLimitsViews(t *testing.T) {
	output, err := Render(loadedSnapshot(), RenderOptions{Views: []domain.ViewKind{domain.ViewCollections}, Selected: -1})
	require.NoError(t, err)

	assert.Contains(t, output, "Collections (1)")
	assert.NotContains(t, output, "Assets (")
	assert.NotContains(t, output, "Overview")
}

func TestRenderShowsPerViewFailures(t *testing.T) {
	snap := loadedSnapshot()
	snap.Errors[domain.ViewStats] = &domain.FetchError{Kind: domain.ViewStats, Err: errors.New("backend down")}
	delete(snap.Loaded, domain.ViewCollections)
	snap.Errors[domain.ViewCollections] = &domain.FetchError{Kind: domain.ViewCollections, Err: errors.New("timeout")}

	output, err := Render(snap, RenderOptions{Selected: -1})
	require.NoError(t, err)

	assert.Contains(t, output, "Failed to load stats: backend down [stale]")
	assert.Contains(t, output, "Collections not loaded.")
	assert.Contains(t, output, "Failed to load collections: timeout")
	assert.NotContains(t, output, "timeout [stale]")
	assert.Contains(t, output, "Assets (2)")
}

func TestRenderEmptyStates(t *testing.T) {
	output, err := Render(application.CatalogSnapshot{}, RenderOptions{Selected: -1})
	require.NoError(t, err)
	assert.Contains(t, output, "filter: none")
	assert.Contains(t, output, "Stats not loaded.")
	assert.Contains(t, output, "Assets not loaded.")

	snap := loadedSnapshot()
	snap.Assets = nil
	snap.Collections = nil
	output, err = Render(snap, RenderOptions{Selected: -1})
	require.NoError(t, err)
	assert.Contains(t, output, "No assets match the current filter.")
	assert.Contains(t, output, "No collections yet.")
}

func TestRenderHighlightsSelection(t *testing.T) {
	output, err := Render(loadedSnapshot(), RenderOptions{Selected: 1})
	require.NoError(t, err)
	assert.Contains(t, output, "> Crackle")
}

func TestRenderUsesLanguageForNumbers(t *testing.T) {
	output, err := Render(loadedSnapshot(), RenderOptions{Lang: language.German, Selected: -1})
	require.NoError(t, err)
	assert.Contains(t, output, "assets: 12.345")
}

func TestFormatCreated(t *testing.T) {
	tests := []struct {
		name    string
		created time.Time
		now     time.Time
		want    string
	}{
		{name: "no clock", created: testNow, want: "01 Mar 2026"},
		{name: "seconds", created: testNow.Add(-10 * time.Second), now: testNow, want: "just now"},
		{name: "one minute", created: testNow.Add(-time.Minute), now: testNow, want: "1 minute ago"},
		{name: "days", created: testNow.Add(-50 * time.Hour), now: testNow, want: "2 days ago"},
		{name: "old", created: testNow.Add(-30 * 24 * time.Hour), now: testNow, want: "30 Jan 2026"},
		{name: "future", created: testNow.Add(time.Hour), now: testNow, want: "01 Mar 2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCreated(tt.created, tt.now))
		})
	}
}

func TestRenderShareBar(t *testing.T) {
	s := newStyles()
	assert.Equal(t, "[=====-----]", renderShareBar(50, 10, s))
	assert.Equal(t, "[==========]", renderShareBar(140, 10, s))
	assert.Equal(t, "", renderShareBar(50, 0, s))
}
