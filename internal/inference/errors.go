package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransientError marks a failure worth retrying with backoff: timeouts,
// connection failures, server-side 5xx responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient inference error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// FatalError marks a failure that retrying cannot fix: malformed requests,
// unknown models, explicit rejections.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal inference error: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// classify wraps err as transient or fatal based on its shape. Context
// cancellation passes through unwrapped so callers can distinguish a
// cancelled task from a failed one.
func classify(err error, statusCode int) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if statusCode >= 500 {
		return &TransientError{Err: err}
	}
	if statusCode >= 400 {
		return &FatalError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransientError{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &TransientError{Err: err}
	}

	return &FatalError{Err: err}
}
