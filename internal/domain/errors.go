package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuth             = errors.New("authentication failed")
	ErrValidation       = errors.New("validation failed")
	ErrFetch            = errors.New("fetch failed")
	ErrMutation         = errors.New("mutation rejected")
	ErrNotFound         = errors.New("not found")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrExchangeConsumed = errors.New("one-time credential already consumed")
)

// AuthError always resolves to the unauthenticated state.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrAuth, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrAuth, e.Reason, e.Err)
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAuth}
	}
	return []error{ErrAuth, e.Err}
}

// ValidationError is raised before any request is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// FetchError reports a failed read; the cached view for Kind is kept.
type FetchError struct {
	Kind ViewKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// MutationError carries the server-provided detail text when there is one.
type MutationError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *MutationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *MutationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMutation}
	}
	return []error{ErrMutation, e.Err}
}
