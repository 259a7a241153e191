// Package transport opens the byte streams the HTTP client talks over.
// A Stream hides whether TLS is in effect so the response parser can read
// from a plaintext socket and a TLS session the same way.
package transport

import (
	"crypto/tls"
	"io"
	"net"
	"time"
)

// Stream is a duplex byte channel bound to a single TCP connection.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer

	// Secure reports whether the stream is protected by TLS.
	Secure() bool

	// SetDeadline sets the read and write deadline of the underlying
	// connection. A zero value disables the deadline.
	SetDeadline(t time.Time) error
}

type plainStream struct {
	net.Conn
}

func (s *plainStream) Secure() bool { return false }

type tlsStream struct {
	*tls.Conn
}

func (s *tlsStream) Secure() bool { return true }

var (
	_ Stream = (*plainStream)(nil)
	_ Stream = (*tlsStream)(nil)
)
