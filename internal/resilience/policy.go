package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Phase tells primary attempts apart from the fallback attempt.
type Phase string

const (
	PhasePrimary  Phase = "primary"
	PhaseFallback Phase = "fallback"
)

// Attempt is one unit of work with its own deadline.
type Attempt struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) (string, error)
}

// AttemptRecord describes a finished try. It lives only for the duration of
// the OnAttempt callback.
type AttemptRecord struct {
	Number  int
	Phase   Phase
	Name    string
	Timeout time.Duration
	Elapsed time.Duration
	Err     error
}

// Policy configures RunWithPolicy.
type Policy struct {
	// MaxRetries is the number of primary attempts, not counting the fallback.
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	// MaxDelay caps a single backoff wait when > 0.
	MaxDelay time.Duration
	Fallback *Attempt

	// IsRetryable decides whether an error may be absorbed by another attempt
	// or the fallback. Nil means every error is retryable.
	IsRetryable func(error) bool
	// Wait sleeps between attempts. Nil means a context-aware timer.
	Wait func(ctx context.Context, d time.Duration) error
	// OnAttempt is called after every attempt, successful or not.
	OnAttempt func(AttemptRecord)
	// OnFallback is called right before the fallback attempt runs.
	OnFallback func(lastErr error)
}

// ExhaustedError is returned when every primary attempt and the fallback, if
// any, failed. Err is the last underlying error.
type ExhaustedError struct {
	Attempts     int
	UsedFallback bool
	Err          error
}

func (e *ExhaustedError) Error() string {
	if e.UsedFallback {
		return fmt.Sprintf("all %d attempts and the fallback failed: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Backoff returns the wait before the attempt following attemptIndex (1-based):
// initial * multiplier^(attemptIndex-1), capped at maxDelay when set and never
// above the largest Duration.
func Backoff(initial time.Duration, multiplier float64, attemptIndex int, maxDelay time.Duration) time.Duration {
	if initial <= 0 {
		return 0
	}
	if multiplier <= 0 {
		multiplier = 1
	}
	if attemptIndex < 1 {
		attemptIndex = 1
	}
	f := float64(initial) * math.Pow(multiplier, float64(attemptIndex-1))
	if maxDelay > 0 && f > float64(maxDelay) {
		return maxDelay
	}
	// Past this point the conversion to Duration would wrap negative.
	if f >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(f)
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RunWithPolicy tries primary up to policy.MaxRetries times with backoff in
// between, then the fallback once. A non-retryable error ends the run
// immediately and is returned as is.
func RunWithPolicy(ctx context.Context, primary Attempt, policy Policy) (string, error) {
	maxRetries := policy.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	retryable := policy.IsRetryable
	if retryable == nil {
		retryable = func(error) bool { return true }
	}
	wait := policy.Wait
	if wait == nil {
		wait = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		text, err := runOnce(ctx, primary, PhasePrimary, attempt, policy.OnAttempt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !retryable(err) {
			return "", err
		}

		if attempt < maxRetries {
			d := Backoff(policy.InitialDelay, policy.BackoffMultiplier, attempt, policy.MaxDelay)
			if werr := wait(ctx, d); werr != nil {
				return "", werr
			}
		}
	}

	if policy.Fallback == nil {
		return "", &ExhaustedError{Attempts: maxRetries, Err: lastErr}
	}

	if policy.OnFallback != nil {
		policy.OnFallback(lastErr)
	}
	text, err := runOnce(ctx, *policy.Fallback, PhaseFallback, maxRetries+1, policy.OnAttempt)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if !retryable(err) {
		return "", err
	}
	return "", &ExhaustedError{Attempts: maxRetries, UsedFallback: true, Err: err}
}

func runOnce(ctx context.Context, a Attempt, phase Phase, number int, hook func(AttemptRecord)) (string, error) {
	if a.Run == nil {
		return "", errors.New("resilience: attempt has no Run function")
	}
	start := time.Now()
	text, err := WithTimeout(ctx, a.Timeout, a.Run)
	if hook != nil {
		hook(AttemptRecord{
			Number:  number,
			Phase:   phase,
			Name:    a.Name,
			Timeout: a.Timeout,
			Elapsed: time.Since(start),
			Err:     err,
		})
	}
	return text, err
}
