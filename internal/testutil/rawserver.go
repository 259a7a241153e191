// Package testutil provides loopback servers for exercising the HTTP client
// against hand-written responses, including malformed ones that net/http
// would refuse to produce.
package testutil

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
)

// Handler receives the raw request head (request line and headers, without
// the terminating blank line) and returns the raw bytes to send back.
type Handler func(head string) []byte

// Static always replies with resp.
func Static(resp string) Handler {
	return func(string) []byte { return []byte(resp) }
}

// RawServer accepts connections on a loopback port, reads one request head
// per connection, writes the handler's bytes and closes the connection.
type RawServer struct {
	ln      net.Listener
	handler Handler

	// Certificate is the server certificate when started with TLS. It is
	// valid for example.com, 127.0.0.1 and ::1.
	Certificate *x509.Certificate

	mu       sync.Mutex
	requests []string
	wg       sync.WaitGroup
}

// NewRawServer starts a plaintext server.
func NewRawServer(h Handler) (*RawServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("testutil: listen: %w", err)
	}
	s := &RawServer{ln: ln, handler: h}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// NewTLSRawServer starts a server that terminates TLS with the certificate
// net/http/httptest uses for its TLS servers.
func NewTLSRawServer(h Handler) (*RawServer, error) {
	hs := httptest.NewUnstartedServer(nil)
	hs.StartTLS()
	cfg := hs.TLS.Clone()
	cert := hs.Certificate()
	hs.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("testutil: listen: %w", err)
	}
	s := &RawServer{
		ln:          tls.NewListener(ln, cfg),
		handler:     h,
		Certificate: cert,
	}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// RootCAs returns a pool trusting the server certificate, or nil for a
// plaintext server.
func (s *RawServer) RootCAs() *x509.CertPool {
	if s.Certificate == nil {
		return nil
	}
	pool := x509.NewCertPool()
	pool.AddCert(s.Certificate)
	return pool
}

// Addr returns the listener address in host:port form.
func (s *RawServer) Addr() string {
	return s.ln.Addr().String()
}

// Port returns the listening port.
func (s *RawServer) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Requests returns the request heads received so far, in arrival order.
func (s *RawServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// Close stops the listener and waits for in-flight connections.
func (s *RawServer) Close() error {
	err := s.ln.Close()
	s.wg.Wait()
	return err
}

func (s *RawServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *RawServer) handle(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	head, err := readHead(bufio.NewReader(conn))
	if err != nil {
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, head)
	s.mu.Unlock()

	conn.Write(s.handler(head)) //nolint:errcheck
}

// readHead reads up to and including the blank line and returns the head
// without it.
func readHead(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		if line == "\r\n" {
			return b.String(), nil
		}
		b.WriteString(line)
	}
}

// RequestPath extracts the request target from a request head.
func RequestPath(head string) string {
	line, _, _ := strings.Cut(head, "\r\n")
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Response formats a well-formed response with a Content-Length header.
func Response(code int, message, body string) string {
	return fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Type: text/plain\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		code, message, len(body), body)
}
