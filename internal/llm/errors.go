// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents a failed chat request.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinels by type so wrapped causes still compare equal.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnavailable
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeUnauthorized
	ErrTypeBadResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnavailable   = &ClientError{Type: ErrTypeUnavailable, Message: "chat backend unavailable"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
	ErrUnauthorized  = &ClientError{Type: ErrTypeUnauthorized, Message: "unauthorized"}
	ErrBadResponse   = &ClientError{Type: ErrTypeBadResponse, Message: "invalid response"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsUnavailable checks if an error means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsModelNotFound checks if an error is a model not found error.
func IsModelNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}

// classifyTransport maps an http.Client error to a ClientError.
func classifyTransport(err error) error {
	var ce *ClientError
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeUnavailable, Message: "chat backend unavailable", Cause: err}
}

// classifyStatus maps a non-2xx HTTP status to a ClientError.
func classifyStatus(status int, detail string) error {
	msg := fmt.Sprintf("backend returned %d %s", status, http.StatusText(status))
	if detail != "" {
		msg += ": " + detail
	}
	switch {
	case status == http.StatusNotFound:
		return &ClientError{Type: ErrTypeModelNotFound, Message: msg}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ClientError{Type: ErrTypeUnauthorized, Message: msg}
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return &ClientError{Type: ErrTypeTimeout, Message: msg}
	case status >= 500:
		return &ClientError{Type: ErrTypeUnavailable, Message: msg}
	default:
		return &ClientError{Type: ErrTypeBadResponse, Message: msg}
	}
}

// Describe returns a short user-facing explanation of a chat failure.
func Describe(err error) string {
	var ce *ClientError
	if !errors.As(err, &ce) {
		if errors.Is(err, context.Canceled) {
			return "Request cancelled"
		}
		return "Chat request failed: " + err.Error()
	}
	switch ce.Type {
	case ErrTypeUnavailable:
		return "Chat backend is unreachable. Check chat.base_url."
	case ErrTypeTimeout:
		return "The reply timed out."
	case ErrTypeModelNotFound:
		return "Model not found on the chat backend."
	case ErrTypeUnauthorized:
		return "The chat backend rejected the API key."
	default:
		return "Chat request failed: " + ce.Error()
	}
}
