package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Upstream endpoints that get their own token bucket.
const (
	EndpointFlightOffers = "flight-offers"
	EndpointOAuthToken   = "oauth-token"
)

// EndpointLimiter throttles calls per upstream endpoint. Waiting only delays
// a call; it never causes one to be repeated.
type EndpointLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults RateLimitConfig
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultConfig matches the Amadeus test environment quota.
func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         10,
	}
}

// orDefaults replaces non-positive values with the ones from fallback.
func (c RateLimitConfig) orDefaults(fallback RateLimitConfig) RateLimitConfig {
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = fallback.RequestsPerSecond
	}
	if c.BurstSize <= 0 {
		c.BurstSize = fallback.BurstSize
	}
	return c
}

func (c RateLimitConfig) newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), c.BurstSize)
}

// NewEndpointLimiter returns a limiter whose endpoints all start with
// config. Use SetEndpointLimit for endpoints with their own quota.
func NewEndpointLimiter(config RateLimitConfig) *EndpointLimiter {
	return &EndpointLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config.orDefaults(DefaultConfig()),
	}
}

func NewEndpointLimiterWithDefaults() *EndpointLimiter {
	return NewEndpointLimiter(DefaultConfig())
}

func (p *EndpointLimiter) GetLimiter(endpoint string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[endpoint]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[endpoint]; exists {
		return limiter
	}

	limiter = p.defaults.newLimiter()
	p.limiters[endpoint] = limiter
	return limiter
}

// SetEndpointLimit gives endpoint its own bucket. Non-positive values fall
// back to the limiter's defaults.
func (p *EndpointLimiter) SetEndpointLimit(endpoint string, config RateLimitConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[endpoint] = config.orDefaults(p.defaults).newLimiter()
}

// Wait blocks until the endpoint may be called or ctx is done.
func (p *EndpointLimiter) Wait(ctx context.Context, endpoint string) error {
	return p.GetLimiter(endpoint).Wait(ctx)
}
