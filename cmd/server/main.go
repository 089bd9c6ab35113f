package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/travelmate/flightproxy/internal/cache"
	"github.com/travelmate/flightproxy/internal/config"
	"github.com/travelmate/flightproxy/internal/handler"
	"github.com/travelmate/flightproxy/internal/logging"
	"github.com/travelmate/flightproxy/internal/metrics"
	"github.com/travelmate/flightproxy/internal/providers"
	"github.com/travelmate/flightproxy/internal/ratelimit"
	"github.com/travelmate/flightproxy/internal/service"
	"github.com/travelmate/flightproxy/internal/tracing"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	if !cfg.Amadeus.HasCredentials() {
		logrus.Warn("AMADEUS_API_KEY or AMADEUS_API_SECRET is not set, upstream calls will be rejected")
	}

	shutdownTracing, err := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint)
	if err != nil {
		logrus.Fatalf("Failed to configure tracing: %v", err)
	}

	tokenCache, err := newTokenCache(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer tokenCache.Close()

	limiter := newLimiter(cfg)

	amadeus := providers.NewAmadeusProvider(providers.AmadeusConfig{
		BaseURL:      cfg.Amadeus.BaseURL,
		ClientID:     cfg.Amadeus.ClientID,
		ClientSecret: cfg.Amadeus.ClientSecret,
		HTTPClient:   &http.Client{Transport: tracing.NewTransport(nil)},
		Limiter:      limiter,
		Tokens:       tokenCache,
	})

	m := metrics.New()
	searchService := service.NewSearchService(amadeus, service.Config{Timeout: cfg.UpstreamTimeout}, m)

	e := handler.NewEcho(handler.ServerConfig{
		ServiceName: tracing.ServiceName,
		CORSOrigin:  cfg.CORSOrigin,
	})
	handler.Register(e, handler.NewSearchHandler(searchService), m.Handler())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.Infof("Server running on port %s", cfg.Port)
		logrus.Infof("Amadeus API proxy available at http://localhost:%s/api/flights/search", cfg.Port)

		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.Fatalf("Server stopped with error: %v", err)
	}
	logrus.Info("Server stopped")
}

// newLimiter gives the token endpoint its own quota; every other endpoint
// shares the search quota.
func newLimiter(cfg config.Config) *ratelimit.EndpointLimiter {
	limiter := ratelimit.NewEndpointLimiter(ratelimit.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})
	limiter.SetEndpointLimit(ratelimit.EndpointOAuthToken, ratelimit.RateLimitConfig{
		RequestsPerSecond: cfg.TokenRateLimit.RPS,
		BurstSize:         cfg.TokenRateLimit.Burst,
	})
	return limiter
}

func newTokenCache(cfg config.Config) (cache.TokenCache, error) {
	if !cfg.CacheEnabled {
		logrus.Info("Redis token cache disabled, using in-memory token cache")
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("Redis token cache enabled (host: %s:%s)", cfg.Redis.Host, cfg.Redis.Port)
	return redisCache, nil
}
