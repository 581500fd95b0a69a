package linkedin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const providerName = "linkedin"

// MissingEnvError is returned when required configuration is missing.
type MissingEnvError struct {
	Provider  string
	Variables []string
}

func (e MissingEnvError) Error() string {
	if len(e.Variables) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Variables, ", "))
}

// ValidationError captures input that was rejected before any request was sent.
type ValidationError struct {
	Provider string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Provider, e.Reason)
}

func invalid(format string, args ...any) ValidationError {
	return ValidationError{Provider: providerName, Reason: fmt.Sprintf(format, args...)}
}

// NetworkError wraps a transport failure talking to LinkedIn or an upload URL.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("LinkedIn request failed: %v", e.Err)
	}
	return fmt.Sprintf("%s: LinkedIn request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ResponseError is returned for any non-2xx response.
type ResponseError struct {
	StatusCode       int
	ServiceErrorCode int
	Message          string
	Body             []byte
}

// NewResponseError builds a ResponseError, lifting LinkedIn's error envelope
// out of body when it has one.
func NewResponseError(statusCode int, body []byte) *ResponseError {
	e := &ResponseError{StatusCode: statusCode, Body: body}

	var envelope struct {
		Status           int    `json:"status"`
		ServiceErrorCode int    `json:"serviceErrorCode"`
		Message          string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &envelope) == nil {
		e.ServiceErrorCode = envelope.ServiceErrorCode
		e.Message = envelope.Message
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}

func (e *ResponseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "LinkedIn API error (status %d", e.StatusCode)
	if e.ServiceErrorCode != 0 {
		fmt.Fprintf(&b, ", service error %d", e.ServiceErrorCode)
	}
	b.WriteString(")")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// IsStatus reports whether err carries a ResponseError with the given status code.
func IsStatus(err error, code int) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == code
}
