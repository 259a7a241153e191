// Package httpclient is a single-shot HTTP/1.1 client. Each Get opens its own
// connection, writes one GET request, parses the response and closes the
// connection.
package httpclient

import (
	"strconv"
	"strings"
)

// Header is a single response header. Name and Value are lower-cased.
type Header struct {
	Name  string
	Value string
}

// Response is a fully materialized HTTP response. It is built once by the
// parser and not modified afterwards.
type Response struct {
	// Protocol is the protocol version from the status line, e.g. "HTTP/1.1".
	Protocol string

	// StatusCode is the numeric status code.
	StatusCode uint16

	// StatusMessage is the remainder of the status line after the code.
	StatusMessage string

	// Headers holds the response headers in the order they were received.
	// Duplicates are kept as separate entries.
	Headers []Header

	// Body is exactly ContentLength() bytes.
	Body string
}

// Header returns the value of the first header named name. The lookup is
// case-insensitive.
func (r *Response) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Values returns every value of the header named name, in order.
func (r *Response) Values(name string) []string {
	var out []string
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			out = append(out, h.Value)
		}
	}
	return out
}

// ContentLength returns the declared body length, or 0 when the header is
// absent or not a valid number.
func (r *Response) ContentLength() int64 {
	v, ok := r.Header("content-length")
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
