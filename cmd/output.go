package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bnema/assetforge-cli/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func parseOutput(raw string) (string, error) {
	switch raw {
	case "", outputText:
		return outputText, nil
	case outputJSON, outputYAML:
		return raw, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json or yaml)", raw)
	}
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

type assetOutput struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Type         string   `json:"type" yaml:"type"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags         []string `json:"tags" yaml:"tags"`
	FileSize     int64    `json:"file_size" yaml:"file_size"`
	Size         string   `json:"size" yaml:"size"`
	MimeType     string   `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
	Version      int      `json:"version" yaml:"version"`
	CollectionID string   `json:"collection_id,omitempty" yaml:"collection_id,omitempty"`
	FileURL      string   `json:"file_url,omitempty" yaml:"file_url,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

func toAssetOutput(a domain.Asset) assetOutput {
	out := assetOutput{
		ID:           string(a.ID),
		Name:         a.Name,
		Type:         string(a.Type),
		Description:  a.Description,
		Tags:         a.Tags,
		FileSize:     a.FileSize,
		Size:         domain.FormatFileSize(a.FileSize),
		MimeType:     a.MimeType,
		Version:      a.Version,
		CollectionID: string(a.CollectionID),
		FileURL:      a.FileURL,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !a.CreatedAt.IsZero() {
		out.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func toAssetOutputs(assets []domain.Asset) []assetOutput {
	out := make([]assetOutput, 0, len(assets))
	for _, a := range assets {
		out = append(out, toAssetOutput(a))
	}
	return out
}

type collectionOutput struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string `json:"color" yaml:"color"`
	AssetCount  int    `json:"asset_count" yaml:"asset_count"`
}

func toCollectionOutput(c domain.Collection) collectionOutput {
	return collectionOutput{
		ID:          string(c.ID),
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		AssetCount:  c.AssetCount,
	}
}

type statsOutput struct {
	TotalAssets       int    `json:"total_assets" yaml:"total_assets"`
	TotalCollections  int    `json:"total_collections" yaml:"total_collections"`
	TotalStorageBytes int64  `json:"total_storage_bytes" yaml:"total_storage_bytes"`
	TotalStorage      string `json:"total_storage" yaml:"total_storage"`
}

func toStatsOutput(s domain.Stats) statsOutput {
	return statsOutput{
		TotalAssets:       s.TotalAssets,
		TotalCollections:  s.TotalCollections,
		TotalStorageBytes: s.TotalStorageBytes,
		TotalStorage:      domain.FormatFileSize(s.TotalStorageBytes),
	}
}

type profileOutput struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Email          string `json:"email" yaml:"email"`
	Picture        string `json:"picture,omitempty" yaml:"picture,omitempty"`
	TokenSubject   string `json:"token_subject,omitempty" yaml:"token_subject,omitempty"`
	TokenExpiresAt string `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
}

func toProfileOutput(p domain.Profile) profileOutput {
	return profileOutput{ID: p.ID, Name: p.Name, Email: p.Email, Picture: p.Picture}
}
