// Package poll waits for page conditions with bounded attempts and an
// explicit timeout.
package poll

import (
	"context"
	"errors"
	"time"

	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
)

var ErrExhausted = errors.New("poll: attempts exhausted")

type Config struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
	// StableFor is the number of consecutive equal samples UntilStable needs.
	StableFor int
	// Sleep replaces the interval wait; tests use it to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 100 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 50
	}
	if c.StableFor <= 0 {
		c.StableFor = 2
	}
	if c.Sleep == nil {
		c.Sleep = sleepCtx
	}
	return c
}

// Until calls cond until it returns true, an error, the attempts run out, or
// the timeout passes.
func Until(ctx context.Context, cfg Config, cond func(ctx context.Context) (bool, error)) error {
	cfg = cfg.withDefaults()
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if err := cfg.Sleep(ctx, cfg.Interval); err != nil {
			return apperr.New(apperr.ErrTimeout, "poll", err)
		}
	}
	return apperr.New(apperr.ErrTimeout, "poll", ErrExhausted)
}

// UntilStable samples probe until the same value is seen StableFor times in a
// row and returns that value.
func UntilStable[T comparable](ctx context.Context, cfg Config, probe func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var (
		last   T
		streak int
	)
	err := Until(ctx, cfg, func(ctx context.Context) (bool, error) {
		v, err := probe(ctx)
		if err != nil {
			return false, err
		}
		if streak > 0 && v == last {
			streak++
		} else {
			last, streak = v, 1
		}
		return streak >= cfg.StableFor, nil
	})
	return last, err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
