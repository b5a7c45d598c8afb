package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
)

var _ ports.CatalogGateway = (*Client)(nil)

func (c *Client) ListAssets(ctx context.Context, filter domain.QueryFilter) ([]domain.Asset, error) {
	var payload []assetDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: "/assets", query: filterQuery(filter)}, &payload); err != nil {
		return nil, err
	}

	assets := make([]domain.Asset, 0, len(payload))
	for _, entry := range payload {
		assets = append(assets, entry.toDomain())
	}

	return assets, nil
}

// filterQuery omits parameters whose value is "all" or empty.
func filterQuery(filter domain.QueryFilter) url.Values {
	n := filter.Normalize()
	q := url.Values{}
	if n.Search != "" {
		q.Set("search", n.Search)
	}
	if n.Type != "" {
		q.Set("asset_type", string(n.Type))
	}
	if n.CollectionID != "" {
		q.Set("collection_id", string(n.CollectionID))
	}
	return q
}

func (c *Client) CreateAsset(ctx context.Context, req ports.CreateAssetRequest) (domain.Asset, error) {
	body, contentType := multipartBody(req)

	var payload assetDTO
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/assets",
		body:        body,
		contentType: contentType,
	}, &payload); err != nil {
		_ = body.Close()
		return domain.Asset{}, err
	}

	return payload.toDomain(), nil
}

// multipartBody streams the form through a pipe so large files are not buffered.
func multipartBody(req ports.CreateAssetRequest) (*io.PipeReader, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeAssetForm(writer, req)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		_ = pw.CloseWithError(err)
	}()

	return pr, writer.FormDataContentType()
}

func writeAssetForm(writer *multipart.Writer, req ports.CreateAssetRequest) error {
	fields := [][2]string{
		{"name", req.Name},
		{"asset_type", string(req.Type)},
		{"description", req.Description},
		{"tags", strings.Join(domain.NormalizeTags(req.Tags), ",")},
	}
	if req.CollectionID != "" {
		fields = append(fields, [2]string{"collection_id", string(req.CollectionID)})
	}

	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("write form field %s: %w", field[0], err)
		}
	}

	if req.File == nil || req.File.Reader == nil {
		return nil
	}

	part, err := writer.CreateFormFile("file", req.File.Name)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File.Reader); err != nil {
		return fmt.Errorf("copy file %s: %w", req.File.Name, err)
	}

	return nil
}

func (c *Client) DeleteAsset(ctx context.Context, id domain.AssetID) error {
	if strings.TrimSpace(string(id)) == "" {
		return fmt.Errorf("asset id is required")
	}

	return c.do(ctx, request{method: http.MethodDelete, path: "/assets/" + url.PathEscape(string(id))}, nil)
}

func (c *Client) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var payload []collectionDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: "/collections"}, &payload); err != nil {
		return nil, err
	}

	collections := make([]domain.Collection, 0, len(payload))
	for _, entry := range payload {
		collections = append(collections, entry.toDomain())
	}

	return collections, nil
}

func (c *Client) CreateCollection(ctx context.Context, req ports.CreateCollectionRequest) (domain.Collection, error) {
	httpReq, err := jsonRequest(http.MethodPost, "/collections", map[string]string{
		"name":        req.Name,
		"description": req.Description,
		"color":       req.Color,
	})
	if err != nil {
		return domain.Collection{}, err
	}

	var payload collectionDTO
	if err := c.do(ctx, httpReq, &payload); err != nil {
		return domain.Collection{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) GetStats(ctx context.Context) (domain.Stats, error) {
	var payload statsDTO
	if err := c.do(ctx, request{method: http.MethodGet, path: "/stats"}, &payload); err != nil {
		return domain.Stats{}, err
	}

	return payload.toDomain(), nil
}
