package iex

import (
	"errors"
	"fmt"
)

var (
	ErrMissingToken  = errors.New("iex: API token is required")
	ErrInvalidSymbol = errors.New("iex: invalid symbol")
	ErrInvalidPrice  = errors.New("iex: invalid price")
)

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode uint16
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("iex: api returned %d %s: %s", e.StatusCode, e.Message, e.Body)
	}
	return fmt.Sprintf("iex: api returned %d %s", e.StatusCode, e.Message)
}
