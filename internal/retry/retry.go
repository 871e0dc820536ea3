// Package retry runs an operation a bounded number of times with a fixed
// per-attempt timeout and a fixed delay between attempts.
package retry

import (
	"context"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	Attempts      int
	Timeout       time.Duration // per attempt, zero means no deadline
	Delay         time.Duration // pause between attempts, not after the last one
	StopOnSuccess bool
}

// Func is a single attempt. attempt is 1-based.
type Func func(ctx context.Context, attempt int) error

// Result summarizes a retry loop.
type Result struct {
	Attempts  int   // attempts actually made
	Succeeded int   // attempts that returned nil
	LastErr   error // error of the most recent failed attempt
}

// OK reports whether at least one attempt succeeded.
func (r Result) OK() bool {
	return r.Succeeded > 0
}

// Do runs fn up to p.Attempts times. Attempts are strictly sequential.
// A cancelled context ends the loop before the next attempt.
func Do(ctx context.Context, p Policy, fn Func) Result {
	var res Result

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			res.LastErr = err
			return res
		}

		res.Attempts = attempt
		if err := runAttempt(ctx, p.Timeout, attempt, fn); err != nil {
			res.LastErr = err
		} else {
			res.Succeeded++
			if p.StopOnSuccess {
				return res
			}
		}

		if attempt == p.Attempts || p.Delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			res.LastErr = ctx.Err()
			return res
		case <-time.After(p.Delay):
		}
	}

	return res
}

func runAttempt(ctx context.Context, timeout time.Duration, attempt int, fn Func) error {
	if timeout <= 0 {
		return fn(ctx, attempt)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx, attempt)
}
