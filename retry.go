package idaia

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Retry policy backoffs. Rate limits get the longest pause since they
// signal saturation rather than a transient glitch; server errors and
// timeouts usually mean a resource-starved backend that needs a few
// seconds; transport failures back off linearly per attempt.
const (
	backoffRateLimited = 10 * time.Second
	backoffServer      = 5 * time.Second
	backoffTransport   = 3 * time.Second
)

// DefaultMaxRetries bounds user-visible latency and avoids compounding
// memory pressure on resource-constrained local backends.
const DefaultMaxRetries = 2

// Interface compliance check.
var _ Provider = (*Retrier)(nil)

// Retrier decorates a Provider with the retry/backoff policy. Every
// attempt is independent; there is no partial-response caching.
type Retrier struct {
	provider   Provider
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
	log        *zap.Logger
}

// RetrierOption configures a [Retrier].
type RetrierOption func(*Retrier)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) RetrierOption {
	return func(r *Retrier) { r.log = l }
}

// WithSleep replaces the backoff sleep. Tests inject a recording stub.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) RetrierOption {
	return func(r *Retrier) { r.sleep = fn }
}

// NewRetrier wraps provider with at most maxRetries retries
// (maxRetries+1 total attempts). maxRetries < 0 selects the default.
func NewRetrier(provider Provider, maxRetries int, opts ...RetrierOption) *Retrier {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	r := &Retrier{
		provider:   provider,
		maxRetries: maxRetries,
		sleep:      sleepCtx,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Complete sends the request, retrying per the classification policy
// until the budget is exhausted. The last error is surfaced unchanged
// so callers can inspect its classification.
func (r *Retrier) Complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			d := retryBackoff(lastErr, attempt)
			r.log.Warn("retrying provider request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", d),
				zap.Error(lastErr))
			if err := r.sleep(ctx, d); err != nil {
				return "", lastErr
			}
		}
		reply, err := r.provider.Complete(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			return "", err
		}
	}
	return "", lastErr
}

// retryable reports whether err is a classified, retryable provider
// failure. Unclassified errors (cancellation, programming errors) are
// never retried.
func retryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable()
}

// retryBackoff returns the pause before the given 1-based retry attempt.
func retryBackoff(err error, attempt int) time.Duration {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return backoffTransport
	}
	switch pe.Kind {
	case ProviderRateLimited:
		return backoffRateLimited
	case ProviderServerError, ProviderTimeout:
		return backoffServer
	default:
		return backoffTransport * time.Duration(attempt)
	}
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
