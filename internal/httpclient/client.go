package httpclient

import (
	"bufio"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/iexc-go/iexc/internal/transport"
)

const (
	// DefaultTLSPort is used by New.
	DefaultTLSPort = 443
	// DefaultPlainPort is used by NewInsecure.
	DefaultPlainPort = 80
)

type options struct {
	port        int
	dial        transport.Options
	readTimeout time.Duration
	parser      ParserOptions
}

// Option configures a Client.
type Option func(*options)

// WithPort overrides the default port.
func WithPort(port int) Option {
	return func(o *options) { o.port = port }
}

// WithRootCAs sets the trusted root set for TLS verification. nil selects
// the bundled Mozilla root set.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(o *options) { o.dial.RootCAs = pool }
}

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dial.DialTimeout = d }
}

// WithDialer replaces the TCP dialer.
func WithDialer(dial func(ctx context.Context, network, addr string) (net.Conn, error)) Option {
	return func(o *options) { o.dial.DialContext = dial }
}

// WithReadTimeout bounds the time from connect until the response is fully
// read. Zero, the default, blocks until the server answers or closes.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) { o.readTimeout = d }
}

// WithParserOptions replaces the parser options.
func WithParserOptions(po ParserOptions) Option {
	return func(o *options) { o.parser = po }
}

// Client issues GET requests to a single domain. It is immutable after
// construction and safe for concurrent use: every Get owns its connection.
type Client struct {
	domain string
	secure bool
	opts   options
}

// New returns a client that talks TLS to domain on port 443.
func New(domain string, opts ...Option) *Client {
	return newClient(domain, true, DefaultTLSPort, opts)
}

// NewInsecure returns a client that talks plaintext to domain on port 80.
func NewInsecure(domain string, opts ...Option) *Client {
	return newClient(domain, false, DefaultPlainPort, opts)
}

func newClient(domain string, secure bool, port int, opts []Option) *Client {
	o := options{port: port, parser: DefaultParserOptions()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{domain: domain, secure: secure, opts: o}
}

// Domain returns the target domain.
func (c *Client) Domain() string { return c.domain }

// Port returns the target port.
func (c *Client) Port() int { return c.opts.port }

// Secure reports whether requests use TLS.
func (c *Client) Secure() bool { return c.secure }

// Get connects, sends a GET request for path and parses the response. The
// connection is closed before Get returns.
//
// Transport failures are returned as *transport.Error and protocol failures
// as *ParseError. Without a context deadline or read timeout a silent server
// blocks Get indefinitely; cancelling ctx unblocks it.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if path == "" {
		path = "/"
	}
	if !validToken(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	host, err := c.hostHeader()
	if err != nil {
		return nil, err
	}

	stream, err := transport.Dial(ctx, host, c.opts.port, c.secure, c.opts.dial)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if deadline, ok := c.deadline(ctx); ok {
		if err := stream.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("httpclient: set deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() {
		stream.SetDeadline(time.Unix(1, 0)) //nolint:errcheck
	})
	defer stop()

	if err := WriteRequest(stream, host, path); err != nil {
		return nil, c.contextErr(ctx, err)
	}

	resp, err := ReadResponse(bufio.NewReader(stream), c.opts.parser)
	if err != nil {
		return nil, c.contextErr(ctx, err)
	}
	return resp, nil
}

// hostHeader returns the value sent in the Host header: the ASCII form of
// the domain, or a plaintext IP literal as given. Invalid names fail before
// anything is dialed.
func (c *Client) hostHeader() (string, error) {
	if !c.secure && net.ParseIP(c.domain) != nil {
		return c.domain, nil
	}
	ascii, err := transport.ValidateHost(c.domain)
	if err != nil {
		return "", &transport.Error{Op: transport.OpValidate, Host: c.domain, Port: c.opts.port, Err: err}
	}
	return ascii, nil
}

func (c *Client) deadline(ctx context.Context) (time.Time, bool) {
	deadline, ok := ctx.Deadline()
	if c.opts.readTimeout > 0 {
		rt := time.Now().Add(c.opts.readTimeout)
		if !ok || rt.Before(deadline) {
			deadline, ok = rt, true
		}
	}
	return deadline, ok
}

// contextErr reports the context error instead of err when err is the I/O
// timeout caused by cancellation or the context deadline. Any other error,
// a *ParseError included, is returned unchanged.
func (c *Client) contextErr(ctx context.Context, err error) error {
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("httpclient: get %s: %w", c.domain, ctxErr)
	}
	// The connection deadline can fire just before the context timer does.
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return fmt.Errorf("httpclient: get %s: %w", c.domain, context.DeadlineExceeded)
	}
	return err
}
