package i18nbackend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimitConfig_Defaults(t *testing.T) {
	l := RateLimitConfig{}.limiter()
	assert.Equal(t, rate.Limit(1), l.Limit())
	assert.Equal(t, 60, l.Burst())

	l = RateLimitConfig{RequestsPerMinute: 120, BurstSize: 5}.limiter()
	assert.Equal(t, rate.Limit(2), l.Limit())
	assert.Equal(t, 5, l.Burst())
}

func TestRateLimitedTranslator_PassesThrough(t *testing.T) {
	stub := &stubTranslator{result: Resource{"k": "v"}}
	rl := NewRateLimitedTranslator(stub, RateLimitConfig{RequestsPerMinute: 600, BurstSize: 2})

	req := TranslateRequest{Resource: Resource{"k": "x"}, SourceLang: "en", TargetLang: "de", Namespace: "common"}
	got, err := rl.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, Resource{"k": "v"}, got)
	assert.Equal(t, req, stub.last)
}

func TestRateLimitedTranslator_WaitCancelled(t *testing.T) {
	stub := &stubTranslator{result: Resource{}}
	rl := NewRateLimitedTranslator(stub, RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})

	_, err := rl.Translate(context.Background(), TranslateRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = rl.Translate(ctx, TranslateRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait cancelled")
	assert.Equal(t, 1, stub.calls)
}
