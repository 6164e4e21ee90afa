package gateway

import (
	"context"
	"errors"
	"time"

	"atlas-core-connect-layer/internal/domain"
	"atlas-core-connect-layer/internal/metrics"

	"github.com/rs/zerolog"
)

// RetryConfig bounds the retry loop around gateway calls.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// InitialDelay is the wait before the first retry; it doubles on
	// every subsequent retry.
	InitialDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the production retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// Retryer runs fallible gateway operations with bounded exponential
// backoff. Upstream client errors (4xx-shaped) end the loop immediately;
// network failures, timeouts and 5xx responses are retried up to the
// attempt cap, after which the last error is returned.
type Retryer struct {
	config RetryConfig
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryer creates a retryer, substituting defaults for non-positive
// config values.
func NewRetryer(config RetryConfig, logger zerolog.Logger) *Retryer {
	defaults := DefaultRetryConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = defaults.InitialDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = defaults.MaxDelay
	}
	return &Retryer{
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Do executes op until it succeeds, fails terminally, or attempts run out.
// The operation name is used for logging and metrics only.
func (r *Retryer) Do(ctx context.Context, operation string, op func(ctx context.Context) (any, error)) (any, error) {
	delay := r.config.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			r.logger.Debug().
				Err(err).
				Str("operation", operation).
				Msg("Gateway call failed with non-retryable error")
			return nil, err
		}

		if attempt == r.config.MaxAttempts {
			break
		}

		metrics.GatewayRetries.WithLabelValues(operation).Inc()
		r.logger.Warn().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Gateway call failed, retrying")

		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
		if delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}
	}

	r.logger.Error().
		Err(lastErr).
		Str("operation", operation).
		Int("attempts", r.config.MaxAttempts).
		Msg("Gateway call failed after all retry attempts")
	return nil, lastErr
}

// isRetryable treats typed upstream client errors as final and everything
// else (transport failures, timeouts, 5xx) as transient.
func isRetryable(err error) bool {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Retryable()
	}
	return true
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
