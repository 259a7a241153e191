package iex

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iexc-go/iexc/internal/httpclient"
)

// DefaultVersion is the API version prefix used in request paths.
const DefaultVersion = "stable"

// Getter performs a single GET request. *httpclient.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, path string) (*httpclient.Response, error)
}

// Quote is the latest price of one symbol.
type Quote struct {
	Symbol    string
	Price     float64
	Endpoint  Endpoint
	FetchedAt time.Time
}

type options struct {
	http    Getter
	rps     float64
	version string
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient replaces the HTTP client. The default talks TLS to the
// endpoint's domain.
func WithHTTPClient(g Getter) Option {
	return func(o *options) { o.http = g }
}

// WithRateLimit caps outgoing requests per second (0 = unlimited).
func WithRateLimit(rps float64) Option {
	return func(o *options) { o.rps = rps }
}

// WithVersion overrides the API version prefix.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// Client fetches quotes from one endpoint with one API token.
type Client struct {
	endpoint Endpoint
	token    string
	version  string
	http     Getter
	limiter  *rate.Limiter
}

// New creates a client for endpoint authenticated by token.
func New(endpoint Endpoint, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	o := options{version: DefaultVersion}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		endpoint: endpoint,
		token:    token,
		version:  o.version,
		http:     o.http,
	}
	if c.http == nil {
		c.http = httpclient.New(endpoint.Domain())
	}
	if o.rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.rps), 1)
	}
	return c, nil
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() Endpoint { return c.endpoint }

// QuotePath builds the request path for the latest price of symbol.
func (c *Client) QuotePath(symbol string) string {
	q := url.Values{}
	q.Set("token", c.token)
	return fmt.Sprintf("/%s/stock/%s/quote/latestPrice?%s",
		url.PathEscape(c.version), url.PathEscape(symbol), q.Encode())
}

// NormalizeSymbol trims and upper-cases symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", ErrInvalidSymbol
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '-' || r == '+' || r == '=') {
			return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
		}
	}
	return s, nil
}

// Price fetches the latest price of symbol.
func (c *Client) Price(ctx context.Context, symbol string) (*Quote, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("iex: rate limiter: %w", err)
		}
	}

	resp, err := c.http.Get(ctx, c.QuotePath(sym))
	if err != nil {
		return nil, fmt.Errorf("iex: quote %s: %w", sym, err)
	}
	if !resp.IsSuccess() {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.StatusMessage,
			Body:       strings.TrimSpace(resp.Body),
		}
	}

	price, err := ParsePrice(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("iex: quote %s: %w", sym, err)
	}

	return &Quote{
		Symbol:    sym,
		Price:     price,
		Endpoint:  c.endpoint,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// ParsePrice interprets a response body as a decimal price.
func ParsePrice(body string) (float64, error) {
	s := strings.TrimSpace(body)
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidPrice, s, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w %q", ErrInvalidPrice, s)
	}
	return price, nil
}
