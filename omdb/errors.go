package omdb

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid omdb configuration")
	// ErrInvalidResponse indicates the API returned a body that could not be decoded
	ErrInvalidResponse = errors.New("invalid response from omdb API")
)

// APIError represents a non-2xx answer from the OMDb API
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("omdb API error: status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized checks if the error indicates a rejected API key
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited checks if the error indicates the request quota was exceeded
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
