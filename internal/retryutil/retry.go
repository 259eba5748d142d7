// Package retryutil retries transient operations with a linearly growing
// delay between attempts.
package retryutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 500 * time.Millisecond
)

type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// BaseDelay grows linearly: the wait before attempt n+1 is BaseDelay*n.
	BaseDelay time.Duration
	// Sleep is overridable for tests; nil means a context-aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p Policy) normalize() Policy {
	if p.Attempts <= 0 {
		p.Attempts = defaultAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as not worth retrying; Do returns it to the
// caller immediately, unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds or the attempt budget is exhausted, waiting
// BaseDelay*attempt between tries. The last error is returned on exhaustion.
func Do(ctx context.Context, logger *slog.Logger, name string, policy Policy, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	policy = policy.normalize()
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%s canceled after %d attempts: %w", name, attempt-1, lastErr)
			}
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt == policy.Attempts {
			break
		}
		wait := policy.BaseDelay * time.Duration(attempt)
		if logger != nil {
			logger.Warn(name+"_retry", "attempt", attempt, "wait", wait.String(), "error", lastErr.Error())
		}
		if err := policy.Sleep(ctx, wait); err != nil {
			return fmt.Errorf("%s canceled after %d attempts: %w", name, attempt, lastErr)
		}
	}
	if logger != nil {
		logger.Error(name+"_retries_exhausted", "attempts", policy.Attempts, "error", lastErr.Error())
	}
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
