package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/net/idna"
)

// MaxPort is the largest valid TCP port.
const MaxPort = 65535

// Options configures Dial. The zero value dials with the bundled root set
// and no dial timeout.
type Options struct {
	// RootCAs is the trusted root set used to verify the server chain.
	// nil selects the bundled Mozilla root set; the host trust store is
	// never consulted.
	RootCAs *x509.CertPool

	// DialTimeout bounds TCP connection establishment (0 = no bound beyond
	// the context).
	DialTimeout time.Duration

	// DialContext replaces the TCP dialer. It is used by tests to route a
	// DNS name to a loopback listener.
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)
}

var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.VerifyDNSLength(true),
	idna.StrictDomainName(true),
)

// ValidateHost checks that host is a syntactically valid DNS name and returns
// its ASCII (punycode) form. IP literals are rejected because certificate
// verification is performed against the name.
func ValidateHost(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("empty host")
	}
	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("%q is an IP address, not a DNS name", host)
	}
	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%q is not a valid DNS name: %w", host, err)
	}
	return ascii, nil
}

// Dial opens a TCP connection to host:port. When secure is true the
// connection is upgraded to TLS and the presented chain is verified against
// opts.RootCAs and host; any failure closes the socket and no stream is
// returned. When secure is false the raw TCP stream is returned.
//
// Dial never retries.
func Dial(ctx context.Context, host string, port int, secure bool, opts Options) (Stream, error) {
	if port <= 0 || port > MaxPort {
		return nil, &Error{Op: OpValidate, Host: host, Port: port, Err: fmt.Errorf("port %d out of range 1..%d", port, MaxPort)}
	}

	serverName := host
	if secure {
		ascii, err := ValidateHost(host)
		if err != nil {
			return nil, &Error{Op: OpValidate, Host: host, Port: port, Err: err}
		}
		serverName = ascii
	}

	conn, err := dialTCP(ctx, net.JoinHostPort(serverName, strconv.Itoa(port)), opts)
	if err != nil {
		return nil, &Error{Op: classifyDialError(err), Host: host, Port: port, Err: err}
	}

	if !secure {
		return &plainStream{Conn: conn}, nil
	}

	roots := opts.RootCAs
	if roots == nil {
		roots = bundledRoots()
	}
	tlsConn := tls.Client(conn, &tls.Config{
		ServerName: serverName,
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
	})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, &Error{Op: OpHandshake, Host: host, Port: port, Err: err}
	}

	return &tlsStream{Conn: tlsConn}, nil
}

func dialTCP(ctx context.Context, addr string, opts Options) (net.Conn, error) {
	if opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()
	}

	if opts.DialContext != nil {
		return opts.DialContext(ctx, "tcp", addr)
	}

	d := &net.Dialer{}
	return d.DialContext(ctx, "tcp", addr)
}
