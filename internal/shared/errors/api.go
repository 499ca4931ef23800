package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Failure classes of a call to the pharmacy API. Every error returned by the
// gateway wraps exactly one of them.
var (
	ErrTransport    = errors.New("pharmacy api unreachable")
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("not allowed")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrRejected     = errors.New("request rejected")
	ErrServer       = errors.New("pharmacy api failed")
)

// APIError is a non-2xx answer, or a request refused before it was sent.
// StatusCode is 0 for local validation failures.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
	RequestID  string
	kind       error
}

// NewAPIError classifies a response by status.
func NewAPIError(status int, message string, fields []FieldError) *APIError {
	if strings.TrimSpace(message) == "" {
		message = FlattenFieldErrors(fields)
	}
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: message, Fields: fields, kind: kindOf(status)}
}

// NewValidationError reports fields rejected locally, before any network call.
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{Message: FlattenFieldErrors(fields), Fields: fields, kind: ErrValidation}
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	if e.kind == nil {
		return kindOf(e.StatusCode)
	}
	return e.kind
}

func kindOf(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrRejected
	}
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// TransportError wraps a failure to reach the API at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// DecodeAPIError reads an error body. It understands FastAPI's
// {"detail": "..."} and {"detail": [{loc, msg}]} and RFC 7807 problem
// details; anything else falls back to the status text.
func DecodeAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Title  string          `json:"title"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil {
		return NewAPIError(status, "", nil)
	}
	if len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			if text == "" {
				text = envelope.Title
			}
			return NewAPIError(status, text, nil)
		}
		var fields []FieldError
		if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
			return NewAPIError(status, "", fields)
		}
	}
	return NewAPIError(status, envelope.Title, nil)
}
