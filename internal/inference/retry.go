package inference

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures exponential backoff retry behavior.
type RetryConfig struct {
	MaxRetries int           // attempts after the first call
	BaseDelay  time.Duration // default 2s; doubles per attempt
	OnRetry    func(attempt int, delay time.Duration)
}

// RetryWithBackoff retries fn with exponential backoff, but only for
// transient failures. Fatal errors and context cancellation return
// immediately. Delays: BaseDelay, BaseDelay*2, BaseDelay*4, ...
func RetryWithBackoff(ctx context.Context, cfg RetryConfig, fn func() error) error {
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = 2 * time.Second
	}

	delay := cfg.BaseDelay
	attempt := 0

	for {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt >= cfg.MaxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, err)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		attempt++
	}
}

// RetryClient wraps any Client with RetryWithBackoff retry logic.
type RetryClient struct {
	Inner    Client
	RetryCfg RetryConfig
}

// Complete delegates to the inner client, retrying transient failures.
func (r *RetryClient) Complete(ctx context.Context, req Request) (string, error) {
	var out string
	err := RetryWithBackoff(ctx, r.RetryCfg, func() error {
		var innerErr error
		out, innerErr = r.Inner.Complete(ctx, req)
		return innerErr
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
