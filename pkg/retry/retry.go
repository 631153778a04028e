package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
}

// DefaultConfig returns the configuration used while waiting for the backend at startup
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 30 * time.Second,
	}
}

// Permanent marks an error that must not be retried
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }

func (p *Permanent) Unwrap() error { return p.Err }

// Stop wraps err so that Do returns it immediately
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &Permanent{Err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts run out or ctx ends.
// onRetry, when set, is called before each wait.
func Do(ctx context.Context, cfg Config, name string, fn func(ctx context.Context) error, onRetry func(attempt int, err error, next time.Duration)) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}

	var lastErr error
	delay := cfg.InitialDelay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return aborted(name, attempt-1, err, lastErr)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p, ok := err.(*Permanent); ok {
			return p.Err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return aborted(name, attempt, ctx.Err(), lastErr)
		case <-timer.C:
		}
		delay = nextDelay(delay, cfg)
	}

	return fmt.Errorf("%s: max retry attempts (%d) exceeded: %w", name, cfg.MaxAttempts, lastErr)
}

func nextDelay(current time.Duration, cfg Config) time.Duration {
	next := time.Duration(float64(current) * cfg.BackoffFactor)
	if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return next
}

func aborted(name string, attempts int, ctxErr, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("%s: retry aborted after %d attempts: %w (last error: %v)", name, attempts, ctxErr, lastErr)
	}
	return fmt.Errorf("%s: retry aborted: %w", name, ctxErr)
}
