package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError describes a single violated field constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// ValidationErrors collects every violated constraint for one request, not
// just the first.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (e ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the per-field messages in declaration order, for the
// caller-facing details list.
func (e ValidationErrors) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Message
	}
	return msgs
}

// ProviderError is a non-2xx response from the provider. Code is the parsed
// error_code when the body carried one; Body is the raw response for
// pass-through diagnostics.
type ProviderError struct {
	StatusCode int
	Code       string
	Body       json.RawMessage
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error %s (status %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("provider error (status %d)", e.StatusCode)
}

// TransportError is a failure with no provider response at all: timeout, DNS
// failure, connection reset.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
