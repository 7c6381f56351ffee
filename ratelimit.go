package i18nbackend

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures a RateLimitedTranslator.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute (default: 60)
	BurstSize         int // Maximum burst size (default: same as RPM)
}

func (c RateLimitConfig) limiter() *rate.Limiter {
	rpm := c.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := c.BurstSize
	if burst <= 0 {
		burst = rpm
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// RateLimitedTranslator wraps a Translator with a token bucket so on-demand
// translation cannot exceed the API quota.
type RateLimitedTranslator struct {
	translator Translator
	limiter    *rate.Limiter
}

// NewRateLimitedTranslator creates a new rate-limited translator.
func NewRateLimitedTranslator(translator Translator, cfg RateLimitConfig) *RateLimitedTranslator {
	return &RateLimitedTranslator{
		translator: translator,
		limiter:    cfg.limiter(),
	}
}

// Translate implements Translator, waiting for a token first.
func (t *RateLimitedTranslator) Translate(ctx context.Context, req TranslateRequest) (Resource, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	return t.translator.Translate(ctx, req)
}

// Limiter returns the underlying rate limiter for inspection.
func (t *RateLimitedTranslator) Limiter() *rate.Limiter {
	return t.limiter
}

var _ Translator = (*RateLimitedTranslator)(nil)
