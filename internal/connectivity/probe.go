// Package connectivity decides whether the remote store is worth contacting.
package connectivity

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultURL is requested when no probe URL is configured.
const DefaultURL = "https://www.google.com"

// DefaultTimeout bounds a single probe request.
const DefaultTimeout = 5 * time.Second

// Probe reports whether the network is reachable right now.
type Probe interface {
	IsConnected(ctx context.Context) bool
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context) bool

func (f ProbeFunc) IsConnected(ctx context.Context) bool {
	return f(ctx)
}

// HTTPProbe sends one HEAD request to a fixed URL. Any transport error or
// timeout means offline; the status code is not inspected. It keeps no
// state between calls and never retries.
type HTTPProbe struct {
	url     string
	timeout time.Duration
}

// NewHTTPProbe creates a probe; empty or non-positive arguments take the defaults.
func NewHTTPProbe(url string, timeout time.Duration) *HTTPProbe {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPProbe{url: url, timeout: timeout}
}

func (p *HTTPProbe) IsConnected(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return false
	}

	_, _, errs := fiber.Head(p.url).Timeout(timeout).Bytes()
	return len(errs) == 0
}
