package httpclient

import (
	"fmt"
	"io"
	"strings"
)

// WriteRequest writes a GET request for path to w:
//
//	GET <path> HTTP/1.1\r\nHost: <domain>\r\nAccept: */*\r\n\r\n
//
// An empty path is sent as "/". The request is written with a single Write.
func WriteRequest(w io.Writer, domain, path string) error {
	if path == "" {
		path = "/"
	}
	if !validToken(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if domain == "" || !validToken(domain) {
		return fmt.Errorf("httpclient: invalid host %q", domain)
	}

	var b strings.Builder
	b.Grow(len(path) + len(domain) + 48)
	b.WriteString("GET ")
	b.WriteString(path)
	b.WriteString(" HTTP/1.1\r\nHost: ")
	b.WriteString(domain)
	b.WriteString("\r\nAccept: */*\r\n\r\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("httpclient: write request: %w", err)
	}
	return nil
}

// validToken rejects spaces and control characters, which would split the
// request line or inject headers.
func validToken(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c <= ' ' || c == 0x7f {
			return false
		}
	}
	return true
}
