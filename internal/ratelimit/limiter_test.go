package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestEndpointLimiter_GetLimiter(t *testing.T) {
	l := NewEndpointLimiterWithDefaults()

	offers := l.GetLimiter(EndpointFlightOffers)
	assert.Same(t, offers, l.GetLimiter(EndpointFlightOffers))
	assert.NotSame(t, offers, l.GetLimiter(EndpointOAuthToken))

	assert.Equal(t, rate.Limit(10), offers.Limit())
	assert.Equal(t, 10, offers.Burst())
}

func TestEndpointLimiter_InvalidConfigFallsBackToDefaults(t *testing.T) {
	l := NewEndpointLimiter(RateLimitConfig{})

	assert.Equal(t, rate.Limit(DefaultConfig().RequestsPerSecond), l.GetLimiter("x").Limit())
	assert.Equal(t, DefaultConfig().BurstSize, l.GetLimiter("x").Burst())
}

func TestEndpointLimiter_SetEndpointLimit(t *testing.T) {
	l := NewEndpointLimiter(RateLimitConfig{RequestsPerSecond: 5, BurstSize: 5})
	l.SetEndpointLimit(EndpointOAuthToken, RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})

	assert.Equal(t, rate.Limit(1), l.GetLimiter(EndpointOAuthToken).Limit())
	assert.Equal(t, 3, l.GetLimiter(EndpointOAuthToken).Burst())
	assert.Equal(t, rate.Limit(5), l.GetLimiter(EndpointFlightOffers).Limit())
}

func TestEndpointLimiter_SetEndpointLimitFallsBackToLimiterDefaults(t *testing.T) {
	l := NewEndpointLimiter(RateLimitConfig{RequestsPerSecond: 5, BurstSize: 7})
	l.SetEndpointLimit(EndpointOAuthToken, RateLimitConfig{RequestsPerSecond: 2})

	assert.Equal(t, rate.Limit(2), l.GetLimiter(EndpointOAuthToken).Limit())
	assert.Equal(t, 7, l.GetLimiter(EndpointOAuthToken).Burst())
}

func TestEndpointLimiter_SeparateBudgets(t *testing.T) {
	l := NewEndpointLimiter(RateLimitConfig{RequestsPerSecond: 0.1, BurstSize: 1})
	l.SetEndpointLimit(EndpointOAuthToken, RateLimitConfig{RequestsPerSecond: 0.1, BurstSize: 1})

	assert.NoError(t, l.Wait(context.Background(), EndpointOAuthToken))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, l.Wait(ctx, EndpointFlightOffers), "token calls must not use the search budget")
	assert.Error(t, l.Wait(ctx, EndpointOAuthToken))
}

func TestEndpointLimiter_Wait(t *testing.T) {
	l := NewEndpointLimiter(RateLimitConfig{RequestsPerSecond: 0.1, BurstSize: 1})

	assert.NoError(t, l.Wait(context.Background(), EndpointFlightOffers))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, EndpointFlightOffers), "second call must not fit in the deadline")
}
