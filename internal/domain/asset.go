package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type AssetID string

type AssetType string

const (
	AssetTypeSprite  AssetType = "sprite"
	AssetTypeTexture AssetType = "texture"
	AssetTypeIcon    AssetType = "icon"
	AssetTypeAudio   AssetType = "audio"
	AssetTypeModel3D AssetType = "model_3d"
)

// AssetTypes lists the known types in display order.
var AssetTypes = []AssetType{
	AssetTypeSprite,
	AssetTypeTexture,
	AssetTypeIcon,
	AssetTypeAudio,
	AssetTypeModel3D,
}

func (t AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t AssetType) Label() string {
	switch t {
	case AssetTypeModel3D:
		return "3D Model"
	case "":
		return "All Types"
	default:
		return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
	}
}

// AssetTypeList renders the known types for messages, e.g. "sprite, texture, icon, audio, model_3d".
func AssetTypeList() string {
	names := make([]string, 0, len(AssetTypes))
	for _, t := range AssetTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

var extensionTypes = map[string]AssetType{
	".png":      AssetTypeSprite,
	".gif":      AssetTypeSprite,
	".aseprite": AssetTypeSprite,
	".jpg":      AssetTypeTexture,
	".jpeg":     AssetTypeTexture,
	".tga":      AssetTypeTexture,
	".dds":      AssetTypeTexture,
	".ktx2":     AssetTypeTexture,
	".svg":      AssetTypeIcon,
	".ico":      AssetTypeIcon,
	".wav":      AssetTypeAudio,
	".ogg":      AssetTypeAudio,
	".mp3":      AssetTypeAudio,
	".flac":     AssetTypeAudio,
	".fbx":      AssetTypeModel3D,
	".obj":      AssetTypeModel3D,
	".gltf":     AssetTypeModel3D,
	".glb":      AssetTypeModel3D,
	".blend":    AssetTypeModel3D,
}

// InferAssetType maps a file extension to an asset type.
func InferAssetType(fileName string) (AssetType, bool) {
	t, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]
	return t, ok
}

// DefaultAssetName is the file name without directory and extension.
func DefaultAssetName(fileName string) string {
	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func ParseAssetType(raw string) (AssetType, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" || trimmed == FilterAll {
		return "", nil
	}

	t := AssetType(trimmed)
	if !t.Valid() {
		return "", fmt.Errorf("unsupported asset type %q", raw)
	}

	return t, nil
}

type Asset struct {
	ID           AssetID
	Name         string
	Type         AssetType
	Description  string
	Tags         []string
	FileSize     int64
	MimeType     string
	Version      int
	CollectionID CollectionID
	FileURL      string
	CreatedAt    time.Time
}

// NormalizeTags trims tags and drops empties and duplicates, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}

	return result
}

// ParseTags splits the comma separated form used by the upload endpoint.
func ParseTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}
