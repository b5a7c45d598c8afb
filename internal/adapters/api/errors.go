package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/bnema/assetforge-cli/internal/ports"
)

const maxDetailBytes = 512

var _ ports.RemoteError = (*StatusError)(nil)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Status int
	// Detail is the server-provided "detail" message, or the trimmed body.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
}

func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

func (e *StatusError) StatusCode() int {
	return e.Status
}

func (e *StatusError) ErrorDetail() string {
	return e.Detail
}

func (e *StatusError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// DetailOf extracts the server detail message from err, if any.
func DetailOf(err error) (int, string, bool) {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return 0, "", false
	}
	return statusErr.Status, statusErr.Detail, true
}

func newStatusError(method, path string, status int, body []byte) *StatusError {
	return &StatusError{
		Method: method,
		Path:   path,
		Status: status,
		Detail: extractDetail(body),
	}
}

func extractDetail(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var detail string
		if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil && detail != "" {
			return detail
		}
		if payload.Message != "" {
			return payload.Message
		}
		if len(payload.Detail) > 0 {
			return truncate(string(payload.Detail))
		}
	}

	return truncate(trimmed)
}

func truncate(s string) string {
	if len(s) <= maxDetailBytes {
		return s
	}
	return s[:maxDetailBytes] + "..."
}
