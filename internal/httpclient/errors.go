package httpclient

import (
	"errors"
	"fmt"
)

// Parse error kinds. A *ParseError wraps exactly one of them.
var (
	ErrMalformedStatusLine = errors.New("malformed status line")
	ErrMalformedHeaderLine = errors.New("malformed header line")
	ErrNonNumericField     = errors.New("non-numeric field")
	ErrTruncatedBody       = errors.New("truncated body")
	ErrUnexpectedEOF       = errors.New("unexpected end of response head")
	ErrLineTooLong         = errors.New("line too long")
	ErrTooManyHeaders      = errors.New("too many headers")
	ErrBodyTooLarge        = errors.New("body too large")
)

// ErrInvalidPath is returned when a request path would break the request
// line.
var ErrInvalidPath = errors.New("httpclient: invalid request path")

// ParseError describes why a response was rejected. Line holds the offending
// line (without terminator) when there is one.
type ParseError struct {
	Kind error
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	msg := "httpclient: " + e.Kind.Error()
	if e.Line != "" {
		msg += fmt.Sprintf(" %q", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func parseError(kind error, line string, err error) *ParseError {
	return &ParseError{Kind: kind, Line: line, Err: err}
}
