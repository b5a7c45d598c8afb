package api

import (
	"strings"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
)

type userDTO struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

type sessionDTO struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type assetDTO struct {
	AssetID      string   `json:"asset_id"`
	Name         string   `json:"name"`
	AssetType    string   `json:"asset_type"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	FileSize     int64    `json:"file_size"`
	MimeType     string   `json:"mime_type"`
	Version      int      `json:"version"`
	CollectionID *string  `json:"collection_id"`
	FileURL      string   `json:"file_url,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

type collectionDTO struct {
	CollectionID string `json:"collection_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Color        string `json:"color"`
	AssetCount   int    `json:"asset_count"`
}

type statsDTO struct {
	TotalAssets      int   `json:"total_assets"`
	TotalCollections int   `json:"total_collections"`
	TotalStorage     int64 `json:"total_storage"`
}

func (u userDTO) toDomain() domain.Profile {
	return domain.Profile{
		ID:      u.UserID,
		Name:    u.Name,
		Email:   u.Email,
		Picture: u.Picture,
	}
}

func (a assetDTO) toDomain() domain.Asset {
	asset := domain.Asset{
		ID:          domain.AssetID(a.AssetID),
		Name:        a.Name,
		Type:        domain.AssetType(a.AssetType),
		Description: a.Description,
		Tags:        domain.NormalizeTags(a.Tags),
		FileSize:    a.FileSize,
		MimeType:    a.MimeType,
		Version:     a.Version,
		FileURL:     a.FileURL,
		CreatedAt:   parseTime(a.CreatedAt),
	}
	if a.CollectionID != nil {
		asset.CollectionID = domain.CollectionID(strings.TrimSpace(*a.CollectionID))
	}

	return asset
}

func (c collectionDTO) toDomain() domain.Collection {
	return domain.Collection{
		ID:          domain.CollectionID(c.CollectionID),
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		AssetCount:  c.AssetCount,
	}
}

func (s statsDTO) toDomain() domain.Stats {
	return domain.Stats{
		TotalAssets:       s.TotalAssets,
		TotalCollections:  s.TotalCollections,
		TotalStorageBytes: s.TotalStorage,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}

	return time.Time{}
}
