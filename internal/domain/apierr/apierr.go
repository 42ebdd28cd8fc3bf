// Package apierr normalizes failures talking to the n8n REST API into a
// single error type that tool handlers hand back to the MCP runtime.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Code classifies an API failure.
type Code string

const (
	CodeAuthentication Code = "AUTHENTICATION_ERROR"
	CodeNotFound       Code = "NOT_FOUND"
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeRateLimit      Code = "RATE_LIMIT_ERROR"
	CodeServer         Code = "SERVER_ERROR"
	CodeAPI            Code = "API_ERROR"
	CodeNoResponse     Code = "NO_RESPONSE"
	CodeRequest        Code = "REQUEST_ERROR"
	CodeUnknown        Code = "UNKNOWN_ERROR"
)

// Sentinels for errors.Is. They match any *Error carrying the same code.
var (
	ErrAuthentication = &Error{Code: CodeAuthentication}
	ErrNotFound       = &Error{Code: CodeNotFound}
	ErrValidation     = &Error{Code: CodeValidation}
	ErrRateLimit      = &Error{Code: CodeRateLimit}
	ErrServer         = &Error{Code: CodeServer}
	ErrNoResponse     = &Error{Code: CodeNoResponse}
)

// Error is a normalized n8n API failure.
type Error struct {
	Code       Code
	Message    string
	StatusCode int            // 0 when no response was received.
	Details    map[string]any // Response body, when it was a JSON object.
	RetryAfter time.Duration  // Set for rate limit errors when the server says.
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("n8n api: %s (%s, HTTP %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("n8n api: %s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by code so callers can test errors.Is(err, apierr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// FromResponse classifies a non-2xx response. message is the server's own
// message when the body had one; an empty message falls back to the status text.
func FromResponse(status int, message string, details map[string]any, header http.Header) *Error {
	if message == "" {
		message = http.StatusText(status)
	}

	e := &Error{Message: message, StatusCode: status, Details: details}
	switch {
	case status == http.StatusUnauthorized:
		e.Code = CodeAuthentication
	case status == http.StatusNotFound:
		e.Code = CodeNotFound
		e.Message = "Resource not found: " + message
	case status == http.StatusBadRequest:
		e.Code = CodeValidation
	case status == http.StatusTooManyRequests:
		e.Code = CodeRateLimit
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
		e.Message = "Rate limit exceeded"
		if e.RetryAfter > 0 {
			e.Message = fmt.Sprintf("Rate limit exceeded. Retry after %s", e.RetryAfter)
		}
	case status >= 500:
		e.Code = CodeServer
	default:
		e.Code = CodeAPI
	}
	return e
}

// NoResponse wraps a transport failure where the request was sent but no
// response came back.
func NoResponse(err error) *Error {
	return &Error{Code: CodeNoResponse, Message: "No response from n8n server", Err: err}
}

// Normalize turns any error into an *Error. An *Error anywhere in the chain is
// returned as is; nil yields an UNKNOWN_ERROR.
func Normalize(err error) *Error {
	if err == nil {
		return &Error{Code: CodeUnknown, Message: "Unknown error occurred"}
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NoResponse(err)
	}

	return &Error{Code: CodeRequest, Message: err.Error(), Err: err}
}

// parseRetryAfter reads a Retry-After header given in seconds. HTTP-date
// values are accepted as well.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}
