// Package retry wraps a failable load with bounded, linearly growing backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

var (
	// ErrSuperseded marks a load abandoned because a newer request replaced it.
	ErrSuperseded = errors.New("retry: superseded")
	// ErrAborted is the cancellation-class failure a media handle reports when
	// its in-flight load is replaced. It is never retried.
	ErrAborted = errors.New("load aborted")
)

// Class groups load failures by how the controller treats them.
type Class int

const (
	// Transient failures (network, decode, 404) are retried.
	Transient Class = iota
	// Benign failures come from cancellation and are swallowed.
	Benign
	// Fatal failures end the attempt without retrying.
	Fatal
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case Transient:
		return "Transient"
	case Benign:
		return "Benign"
	case Fatal:
		return "Permanent"
	default:
		return "Unknown"
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Classify reports how err should be handled.
func Classify(err error) Class {
	var perm *permanentError
	switch {
	case err == nil:
		return Transient
	case errors.Is(err, ErrSuperseded), errors.Is(err, ErrAborted), errors.Is(err, context.Canceled):
		return Benign
	case errors.As(err, &perm):
		return Fatal
	default:
		return Transient
	}
}

// State tracks one load's retry progress. It lives for a single Do call.
type State struct {
	Attempt int
	LastErr error
}

// ExhaustedError is the terminal failure after MaxRetries retries.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Policy configures the controller.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// OnRetry is called before each retry wait with the upcoming attempt number.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy returns 3 retries with 1s, 2s, 3s waits.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// Backoff returns the wait before the given 1-based retry.
func (p Policy) Backoff(attempt int) time.Duration {
	return time.Duration(attempt) * p.BaseDelay
}

// Do runs load, then reload on each retry, until one succeeds, a benign or
// permanent failure occurs, or MaxRetries retries are exhausted.
// Benign failures, including ctx cancellation during a backoff wait, are
// returned wrapped in ErrSuperseded.
func (p Policy) Do(ctx context.Context, load, reload func(context.Context) error) error {
	var st State
	err := load(ctx)
	for {
		if err == nil {
			return nil
		}
		switch Classify(err) {
		case Benign:
			if errors.Is(err, ErrSuperseded) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrSuperseded, err)
		case Fatal:
			return err
		case Transient:
		}

		st.LastErr = err
		if st.Attempt >= p.MaxRetries {
			return &ExhaustedError{Attempts: st.Attempt + 1, Last: st.LastErr}
		}
		st.Attempt++
		if p.OnRetry != nil {
			p.OnRetry(st.Attempt, err)
		}

		timer := time.NewTimer(p.Backoff(st.Attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrSuperseded, ctx.Err())
		case <-timer.C:
		}

		err = reload(ctx)
	}
}
