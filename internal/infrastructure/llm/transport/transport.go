// Package transport provides the HTTP plumbing shared by the oracle clients.
package transport

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
)

// loggingTransport logs request lines and response status. Bodies are never
// logged: they carry the applicant profile and challenge images.
type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.Redacted(),
	)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Warn("HTTP Request failed",
			"url", req.URL.Redacted(),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	t.logger.Debug("HTTP Response",
		"status", resp.Status,
		"statusCode", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// NewHTTPClient returns a client whose transport logs through logger when
// it is non-nil.
func NewHTTPClient(logger output.LoggerPort) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if logger != nil {
		rt = &loggingTransport{base: rt, logger: logger}
	}
	return &http.Client{Transport: rt}
}

// Limiter bounds oracle calls per second across every run sharing it.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter allows rps calls per second with a burst of one. A
// non-positive rps disables limiting.
func NewLimiter(rps float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
