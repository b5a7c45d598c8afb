package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetType(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    AssetType
		wantErr string
	}{
		{name: "sprite", raw: "sprite", want: AssetTypeSprite},
		{name: "model uppercase", raw: " MODEL_3D ", want: AssetTypeModel3D},
		{name: "all maps to empty", raw: "all", want: ""},
		{name: "empty", raw: "", want: ""},
		{name: "unknown", raw: "video", wantErr: "unsupported asset type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAssetType(tt.raw)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssetTypeLabel(t *testing.T) {
	assert.Equal(t, "Sprite", AssetTypeSprite.Label())
	assert.Equal(t, "3D Model", AssetTypeModel3D.Label())
	assert.Equal(t, "All Types", AssetType("").Label())
}

func TestParseTagsDeduplicatesAndDropsEmpty(t *testing.T) {
	assert.Equal(t, []string{"hero", "pixel", "boss"}, ParseTags("hero, pixel,,hero , boss"))
	assert.Empty(t, ParseTags(""))
}

func TestQueryFilterKeyTreatsAllAsEmpty(t *testing.T) {
	a := QueryFilter{Search: " dragon ", Type: "all", CollectionID: "all"}
	b := QueryFilter{Search: "dragon"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, b.Key(), QueryFilter{Search: "dragon", Type: AssetTypeAudio}.Key())
}

func TestQueryFilterMatches(t *testing.T) {
	asset := Asset{
		Name:         "Hero Idle",
		Type:         AssetTypeSprite,
		Description:  "idle loop",
		Tags:         []string{"character"},
		CollectionID: "col-1",
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{name: "empty filter", filter: QueryFilter{}, want: true},
		{name: "name substring case insensitive", filter: QueryFilter{Search: "hero"}, want: true},
		{name: "tag match", filter: QueryFilter{Search: "CHAR"}, want: true},
		{name: "description match", filter: QueryFilter{Search: "loop"}, want: true},
		{name: "search miss", filter: QueryFilter{Search: "dragon"}, want: false},
		{name: "type mismatch", filter: QueryFilter{Type: AssetTypeAudio}, want: false},
		{name: "collection mismatch", filter: QueryFilter{CollectionID: "col-2"}, want: false},
		{name: "all sentinels", filter: QueryFilter{Type: "all", CollectionID: "all"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(asset))
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{bytes: 0, want: "0 B"},
		{bytes: 512, want: "512 B"},
		{bytes: 1024, want: "1 KB"},
		{bytes: 1536, want: "1.5 KB"},
		{bytes: 5 * 1024 * 1024, want: "5 MB"},
		{bytes: 3 * 1024 * 1024 * 1024, want: "3 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFileSize(tt.bytes))
		})
	}
}

func TestSessionValid(t *testing.T) {
	assert.False(t, Session{}.Valid())
	assert.False(t, Session{Token: "t"}.Valid())
	assert.True(t, Session{Token: "t", Profile: Profile{ID: "u1"}}.Valid())
}

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	cause := errors.New("boom")

	assert.ErrorIs(t, &AuthError{Reason: "verify", Err: cause}, ErrAuth)
	assert.ErrorIs(t, &AuthError{Reason: "verify", Err: cause}, cause)
	assert.ErrorIs(t, &ValidationError{Field: "name", Message: "is required"}, ErrValidation)
	assert.ErrorIs(t, &FetchError{Kind: ViewStats, Err: cause}, ErrFetch)
	assert.ErrorIs(t, &MutationError{Op: "create asset", Detail: "quota exceeded"}, ErrMutation)

	assert.Equal(t, "create asset: quota exceeded", (&MutationError{Op: "create asset", Detail: "quota exceeded"}).Error())
	assert.Equal(t, "validation failed: name is required", (&ValidationError{Field: "name", Message: "is required"}).Error())
}

func TestInferAssetType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		want AssetType
		ok   bool
	}{
		{file: "hero.PNG", want: AssetTypeSprite, ok: true},
		{file: "textures/brick.jpeg", want: AssetTypeTexture, ok: true},
		{file: "ui/close.svg", want: AssetTypeIcon, ok: true},
		{file: "sfx/jump.wav", want: AssetTypeAudio, ok: true},
		{file: "models/tree.glb", want: AssetTypeModel3D, ok: true},
		{file: "README.md"},
		{file: "Makefile"},
	}

	for _, tt := range tests {
		got, ok := InferAssetType(tt.file)
		assert.Equal(t, tt.ok, ok, tt.file)
		assert.Equal(t, tt.want, got, tt.file)
	}
}

func TestDefaultAssetName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hero_idle", DefaultAssetName("/tmp/sprites/hero_idle.png"))
	assert.Equal(t, "archive.tar", DefaultAssetName("archive.tar.gz"))
	assert.Equal(t, "", DefaultAssetName(""))
}

func TestAssetTypeList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sprite, texture, icon, audio, model_3d", AssetTypeList())
	assert.Equal(t, "Texture", AssetTypeTexture.Label())
}
