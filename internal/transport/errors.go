package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Op names the stage of connection establishment that failed.
type Op string

const (
	OpValidate  Op = "validate"
	OpResolve   Op = "resolve"
	OpConnect   Op = "connect"
	OpHandshake Op = "handshake"
)

var (
	ErrInvalidTarget = errors.New("invalid target")
	ErrResolve       = errors.New("dns resolution failed")
	ErrConnect       = errors.New("tcp connect failed")
	ErrHandshake     = errors.New("tls handshake failed")
)

// Error is returned by Dial. Op tells the caller which stage failed, and
// errors.Is matches the stage sentinel as well as the wrapped cause.
type Error struct {
	Op   Op
	Host string
	Port int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Op, net.JoinHostPort(e.Host, strconv.Itoa(e.Port)), e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

func (e *Error) sentinel() error {
	switch e.Op {
	case OpValidate:
		return ErrInvalidTarget
	case OpResolve:
		return ErrResolve
	case OpHandshake:
		return ErrHandshake
	default:
		return ErrConnect
	}
}

// classifyDialError separates DNS failures from connection failures.
func classifyDialError(err error) Op {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return OpResolve
	}
	return OpConnect
}
