// Package apierror provides the canonical error envelopes for the API.
// All 4xx/5xx responses go through this package so clients always see the
// same shape and internal details (stack traces, SQL errors) never leak.
package apierror

// APIError is the envelope for every error response.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
