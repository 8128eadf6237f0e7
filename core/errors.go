package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTokenInvalid is returned when the token endpoint answers without a usable token
	ErrTokenInvalid = errors.New("invalid access token")

	// ErrInvalidParameters marks a 400 answer from the provider
	ErrInvalidParameters = errors.New("invalid request parameters")

	// ErrUnauthorized marks a 401 answer from the provider
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateExternalID marks a 409 answer caused by a reused external id
	ErrDuplicateExternalID = errors.New("duplicate external id")

	// ErrProviderInternal marks a 500 answer from the provider
	ErrProviderInternal = errors.New("provider internal error")
)

// ValidationError reports every violation found in a transfer request.
// It is raised before any network activity.
type ValidationError struct {
	Violations []string
}

// Error returns the joined violation list
func (e *ValidationError) Error() string {
	return "invalid transfer request: " + strings.Join(e.Violations, "; ")
}

// AuthError is returned when an access token could not be obtained
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error describes the authentication failure
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return fmt.Sprintf("authentication failed: status %d: %s", e.StatusCode, e.Body)
}

// Unwrap returns the underlying cause, if any
func (e *AuthError) Unwrap() error {
	return e.Err
}

// ProviderError is a non-success answer from the provider API.
// It keeps the raw response body for diagnostics.
type ProviderError struct {
	StatusCode int
	Body       string
}

// Error describes the provider failure
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %v: status %d: %s", e.reason(), e.StatusCode, e.Body)
}

// Unwrap maps the HTTP status onto the error taxonomy so callers can
// match with errors.Is
func (e *ProviderError) Unwrap() error {
	return e.reason()
}

func (e *ProviderError) reason() error {
	switch e.StatusCode {
	case 400:
		return ErrInvalidParameters
	case 401:
		return ErrUnauthorized
	case 409:
		return ErrDuplicateExternalID
	case 500:
		return ErrProviderInternal
	default:
		return fmt.Errorf("unmapped status %d", e.StatusCode)
	}
}

// TransportError is a connectivity, timeout or protocol-level failure
// raised at the transport boundary
type TransportError struct {
	Op  string
	Err error
}

// Error describes the transport failure
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Err
}

// TransferError is the single error kind surfaced by Client.Transfer.
// It always wraps the specific cause.
type TransferError struct {
	Err error
}

// Error describes the transfer failure
func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed: %v", e.Err)
}

// Unwrap returns the underlying cause
func (e *TransferError) Unwrap() error {
	return e.Err
}

// StatusQueryError is the single error kind surfaced by
// Client.GetTransferStatus. It always wraps the specific cause.
type StatusQueryError struct {
	Err error
}

// Error describes the status query failure
func (e *StatusQueryError) Error() string {
	return fmt.Sprintf("status query failed: %v", e.Err)
}

// Unwrap returns the underlying cause
func (e *StatusQueryError) Unwrap() error {
	return e.Err
}
