package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxResponseBytes      = 4 << 20
	defaultRequestTimeout = 30 * time.Second
	defaultUserAgent      = "af/cli"
	requestIDHeader       = "X-Request-ID"
)

// TokenSource supplies the bearer credential. An empty token means no credential is stored.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	Tokens         TokenSource
	Logger         *slog.Logger
	UserAgent      string
	RequestTimeout time.Duration
}

// Client is the single transport used by the session and catalog layers.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	tokens         TokenSource
	logger         *slog.Logger
	userAgent      string
	requestTimeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("api base url is required")
	}

	parsed, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	client := &Client{
		baseURL:        parsed,
		httpClient:     cfg.HTTPClient,
		tokens:         cfg.Tokens,
		logger:         cfg.Logger,
		userAgent:      cfg.UserAgent,
		requestTimeout: cfg.RequestTimeout,
	}
	if client.httpClient == nil {
		client.httpClient = http.DefaultClient
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	if client.userAgent == "" {
		client.userAgent = defaultUserAgent
	}
	if client.requestTimeout <= 0 {
		client.requestTimeout = defaultRequestTimeout
	}

	return client, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}

	return request{
		method:      method,
		path:        path,
		body:        bytes.NewReader(encoded),
		contentType: "application/json",
	}, nil
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	requestCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		endpoint.RawQuery = req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(requestCtx, req.method, endpoint.String(), req.body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)

	if err := c.sign(ctx, httpReq); err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", req.method, "path", req.path, "request_id", requestID, "error", err)
		return fmt.Errorf("perform %s %s: %w", req.method, req.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", req.method, req.path, err)
	}

	c.logger.Debug("api request",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newStatusError(req.method, req.path, resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.method, req.path, err)
	}

	return nil
}

// sign attaches the stored bearer credential; this is the only read path for it.
func (c *Client) sign(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("load bearer credential: %w", err)
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return nil
}
