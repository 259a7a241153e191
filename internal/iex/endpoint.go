// Package iex fetches stock prices from the IEX Cloud API over the
// single-shot HTTP client.
package iex

import (
	"fmt"
	"strings"
)

// Endpoint selects the IEX Cloud environment.
type Endpoint int

const (
	// Production serves real market data.
	Production Endpoint = iota
	// Sandbox serves randomized test data.
	Sandbox
)

// Domain returns the API host for the endpoint.
func (e Endpoint) Domain() string {
	switch e {
	case Sandbox:
		return "sandbox.iexapis.com"
	default:
		return "cloud.iexapis.com"
	}
}

func (e Endpoint) String() string {
	switch e {
	case Sandbox:
		return "sandbox"
	default:
		return "production"
	}
}

// ParseEndpoint accepts "production" or "sandbox", case-insensitively.
func ParseEndpoint(s string) (Endpoint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod", "":
		return Production, nil
	case "sandbox":
		return Sandbox, nil
	default:
		return Production, fmt.Errorf("iex: unknown endpoint %q", s)
	}
}
