package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"syscall"
)

// Messages shown when a failure carries no server text
const (
	ConnectivityMessage = "Unable to connect to the server. Please check your internet connection."
	UnexpectedMessage   = "An unexpected error occurred. Please try again."
	TokenMissingMessage = "User token is missing."
)

// ErrorKind classifies a failure for display
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindAuth
	KindServer
	KindConnectivity
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindConnectivity:
		return "connectivity"
	default:
		return "unexpected"
	}
}

// APIError represents a failed API response
type APIError struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"status_code"`
	Messages   []string  `json:"messages"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// NewAPIError builds an APIError from a status code and a raw response body
func NewAPIError(statusCode int, body []byte) *APIError {
	kind := KindServer
	if statusCode == http.StatusUnauthorized {
		kind = KindAuth
	}

	messages := decodeErrorBody(body)
	if len(messages) == 0 {
		messages = []string{fmt.Sprintf("HTTP error: %d", statusCode)}
	}

	return &APIError{
		Kind:       kind,
		StatusCode: statusCode,
		Messages:   messages,
	}
}

// decodeErrorBody reads {"errors": ...} or {"error": "..."}
func decodeErrorBody(body []byte) []string {
	var payload struct {
		Errors json.RawMessage `json:"errors"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}

	if msgs := decodeMessages(payload.Errors); len(msgs) > 0 {
		return msgs
	}
	return decodeMessages(payload.Error)
}

func decodeMessages(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	// [{"detail": "..."}, "plain", {"name": ["can't be blank"]}]
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		var out []string
		for _, item := range items {
			out = append(out, decodeItem(item)...)
		}
		return out
	}

	// {"name": ["can't be blank"], "unlock_code": "is too short"}
	var byField map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byField); err == nil {
		fields := make([]string, 0, len(byField))
		for field := range byField {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var out []string
		for _, field := range fields {
			for _, msg := range decodeMessages(byField[field]) {
				out = append(out, field+" "+msg)
			}
		}
		return out
	}

	return nil
}

// decodeItem reads one element of an errors list. Objects carrying a
// detail, message or error text yield that text; other objects are read
// field by field.
func decodeItem(raw json.RawMessage) []string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if msgs := decodeMessages(obj[key]); len(msgs) > 0 {
				return msgs
			}
		}
	}
	return decodeMessages(raw)
}

// IsAuthError checks if the error is an authentication error
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindAuth
	}
	return false
}

// ValidationError represents a local validation failure. It never reaches
// the network.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ErrTokenMissing is returned when an operation needs a bearer token and the
// session has none
var ErrTokenMissing = NewValidationError("token", TokenMissingMessage)

// FieldErrors maps a form field to its validation message
type FieldErrors map[string]string

// Error implements the error interface
func (e FieldErrors) Error() string {
	return fmt.Sprintf("%d invalid fields: %s", len(e), strings.Join(e.Messages(), "; "))
}

// Messages returns the messages ordered by field name
func (e FieldErrors) Messages() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, e[f])
	}
	return out
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error `json:"errors"`
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrorOrNil returns nil when nothing was added
func (e *MultiError) ErrorOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NewMultiError creates a new multi-error
func NewMultiError() *MultiError {
	return &MultiError{
		Errors: make([]error, 0),
	}
}

// KindOf classifies any error
func KindOf(err error) ErrorKind {
	var (
		apiErr   *APIError
		valErr   *ValidationError
		fieldErr FieldErrors
	)
	switch {
	case err == nil:
		return KindUnexpected
	case errors.As(err, &apiErr):
		return apiErr.Kind
	case errors.As(err, &valErr), errors.As(err, &fieldErr):
		return KindValidation
	case isConnectivity(err):
		return KindConnectivity
	default:
		return KindUnexpected
	}
}

// Normalize maps any failure into an ordered list of displayable messages.
// Server text is kept verbatim; transport failures become a connectivity
// message and everything else the generic fallback.
func Normalize(err error) []string {
	if err == nil {
		return nil
	}

	var multi *MultiError
	if errors.As(err, &multi) {
		var out []string
		for _, e := range multi.Errors {
			out = append(out, Normalize(e)...)
		}
		return out
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return append([]string(nil), apiErr.Messages...)
	}

	var fieldErr FieldErrors
	if errors.As(err, &fieldErr) {
		return fieldErr.Messages()
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return []string{valErr.Message}
	}

	if isConnectivity(err) {
		return []string{ConnectivityMessage}
	}

	return []string{UnexpectedMessage}
}

func isConnectivity(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
