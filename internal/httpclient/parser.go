package httpclient

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	defaultMaxLineBytes        = 8 << 10
	defaultMaxHeaders          = 100
	defaultMaxBodyBytes  int64 = 16 << 20
)

// ParserOptions tunes the response parser. Zero-valued limits take the
// defaults returned by DefaultParserOptions.
type ParserOptions struct {
	// AllowBareLF accepts a bare "\n" as line terminator in the status line
	// and header section. By default only "\r\n" is accepted.
	AllowBareLF bool

	// LenientContentLength treats a non-numeric Content-Length as 0 instead
	// of failing with ErrNonNumericField.
	LenientContentLength bool

	// MaxLineBytes bounds a single status or header line, terminator
	// included.
	MaxLineBytes int

	// MaxHeaders bounds the number of header lines.
	MaxHeaders int

	// MaxBodyBytes bounds the declared Content-Length.
	MaxBodyBytes int64
}

// DefaultParserOptions returns strict line endings, strict Content-Length
// parsing and the default limits.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		MaxLineBytes: defaultMaxLineBytes,
		MaxHeaders:   defaultMaxHeaders,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
}

func (o ParserOptions) withDefaults() ParserOptions {
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = defaultMaxLineBytes
	}
	if o.MaxHeaders <= 0 {
		o.MaxHeaders = defaultMaxHeaders
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	return o
}

type parseState int

const (
	stateStatusLine parseState = iota
	stateHeaders
	stateBody
	stateDone
)

// ReadResponse parses one response from r, which must be positioned at the
// start of the status line. It consumes exactly the response head and
// Content-Length bytes of body and nothing more.
func ReadResponse(r *bufio.Reader, opts ParserOptions) (*Response, error) {
	p := &parser{r: r, opts: opts.withDefaults()}
	return p.run()
}

// ParseResponse parses a complete response held in memory using the default
// options.
func ParseResponse(b []byte) (*Response, error) {
	return ReadResponse(bufio.NewReader(bytes.NewReader(b)), DefaultParserOptions())
}

type parser struct {
	r     *bufio.Reader
	opts  ParserOptions
	state parseState
	resp  Response
}

func (p *parser) run() (*Response, error) {
	for p.state != stateDone {
		var err error
		switch p.state {
		case stateStatusLine:
			err = p.statusLine()
		case stateHeaders:
			err = p.headerLine()
		case stateBody:
			err = p.body()
		}
		if err != nil {
			return nil, err
		}
	}

	resp := p.resp
	return &resp, nil
}

func (p *parser) statusLine() error {
	line, err := p.readLine(ErrMalformedStatusLine)
	if err != nil {
		return err
	}

	proto, rest, ok := strings.Cut(line, " ")
	if !ok {
		return parseError(ErrMalformedStatusLine, line, nil)
	}
	code, message, ok := strings.Cut(rest, " ")
	if !ok {
		return parseError(ErrMalformedStatusLine, line, nil)
	}
	proto = strings.TrimSpace(proto)
	code = strings.TrimSpace(code)
	if proto == "" || code == "" {
		return parseError(ErrMalformedStatusLine, line, nil)
	}

	n, err := strconv.ParseUint(code, 10, 16)
	if err != nil {
		return parseError(ErrNonNumericField, line, err)
	}

	p.resp.Protocol = proto
	p.resp.StatusCode = uint16(n)
	p.resp.StatusMessage = strings.TrimSpace(message)
	p.state = stateHeaders
	return nil
}

func (p *parser) headerLine() error {
	line, err := p.readLine(ErrMalformedHeaderLine)
	if err != nil {
		return err
	}
	if line == "" {
		p.state = stateBody
		return nil
	}
	if len(p.resp.Headers) >= p.opts.MaxHeaders {
		return parseError(ErrTooManyHeaders, "", fmt.Errorf("limit is %d", p.opts.MaxHeaders))
	}

	name, value, ok := strings.Cut(line, ":")
	if !ok || name == "" {
		return parseError(ErrMalformedHeaderLine, line, nil)
	}

	p.resp.Headers = append(p.resp.Headers, Header{
		Name:  strings.ToLower(name),
		Value: strings.ToLower(strings.TrimSpace(value)),
	})
	return nil
}

func (p *parser) body() error {
	n, err := p.contentLength()
	if err != nil {
		return err
	}
	if n > p.opts.MaxBodyBytes {
		return parseError(ErrBodyTooLarge, "", fmt.Errorf("content-length %d exceeds %d", n, p.opts.MaxBodyBytes))
	}

	var buf bytes.Buffer
	buf.Grow(int(min(n, int64(64<<10))))
	read, err := io.CopyN(&buf, p.r, n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return parseError(ErrTruncatedBody, "", fmt.Errorf("got %d of %d bytes", read, n))
		}
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	p.resp.Body = buf.String()
	p.state = stateDone
	return nil
}

func (p *parser) contentLength() (int64, error) {
	for _, h := range p.resp.Headers {
		if !strings.EqualFold(h.Name, "content-length") {
			continue
		}
		n, err := strconv.ParseInt(h.Value, 10, 64)
		if err == nil && n < 0 {
			err = fmt.Errorf("negative value")
		}
		if err != nil {
			if p.opts.LenientContentLength {
				return 0, nil
			}
			return 0, parseError(ErrNonNumericField, h.Name+": "+h.Value, err)
		}
		return n, nil
	}
	return 0, nil
}

// readLine reads one terminated line and returns it without its terminator.
// A line that is not terminated the way the options require is reported
// with the malformed kind of the current state.
func (p *parser) readLine(malformed error) (string, error) {
	var line []byte
	for {
		chunk, err := p.r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > p.opts.MaxLineBytes {
			return "", parseError(ErrLineTooLong, "", fmt.Errorf("limit is %d bytes", p.opts.MaxLineBytes))
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return "", parseError(ErrUnexpectedEOF, string(line), nil)
		}
		return "", fmt.Errorf("httpclient: read response head: %w", err)
	}

	if bytes.HasSuffix(line, []byte("\r\n")) {
		return string(line[:len(line)-2]), nil
	}
	if p.opts.AllowBareLF {
		return string(line[:len(line)-1]), nil
	}
	return "", parseError(malformed, string(line[:len(line)-1]), errors.New("line not terminated by CRLF"))
}
