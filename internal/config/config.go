package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort           = "3001"
	DefaultCORSOrigin     = "http://localhost:3000"
	DefaultAPIBaseURL     = "http://localhost:3001/api"
	DefaultAmadeusBaseURL = "https://test.api.amadeus.com"
)

type Config struct {
	Port            string
	CORSOrigin      string
	Amadeus         AmadeusConfig
	UpstreamTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	TokenRateLimit  RateLimit
	CacheEnabled    bool
	Redis           RedisConfig
	JaegerEndpoint  string
	LogLevel        string
	LogFormat       string
	APIBaseURL      string
}

type AmadeusConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// RateLimit is a token bucket quota for one upstream endpoint.
type RateLimit struct {
	RPS   float64
	Burst int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

func (a AmadeusConfig) HasCredentials() bool {
	return a.ClientID != "" && a.ClientSecret != ""
}

// Load reads the optional dotenv file at envFile and then the process
// environment, which takes precedence. A missing file is not an error.
func Load(envFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := v.BindEnv("api_base_url", "API_BASE_URL", "VITE_API_BASE_URL"); err != nil {
		return Config{}, err
	}
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Port:       v.GetString("port"),
		CORSOrigin: v.GetString("cors_origin"),
		Amadeus: AmadeusConfig{
			ClientID:     v.GetString("amadeus_api_key"),
			ClientSecret: v.GetString("amadeus_api_secret"),
			BaseURL:      v.GetString("amadeus_base_url"),
		},
		UpstreamTimeout: v.GetDuration("upstream_timeout"),
		RateLimitRPS:    v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:  v.GetInt("rate_limit_burst"),
		TokenRateLimit: RateLimit{
			RPS:   v.GetFloat64("token_rate_limit_rps"),
			Burst: v.GetInt("token_rate_limit_burst"),
		},
		CacheEnabled:    v.GetBool("cache_enabled"),
		Redis: RedisConfig{
			Host:     v.GetString("redis_host"),
			Port:     v.GetString("redis_port"),
			Password: v.GetString("redis_password"),
		},
		JaegerEndpoint: v.GetString("jaeger_endpoint"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		APIBaseURL:     v.GetString("api_base_url"),
	}

	if cfg.UpstreamTimeout <= 0 {
		return Config{}, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %q", v.GetString("upstream_timeout"))
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("cors_origin", DefaultCORSOrigin)
	v.SetDefault("amadeus_api_key", "")
	v.SetDefault("amadeus_api_secret", "")
	v.SetDefault("amadeus_base_url", DefaultAmadeusBaseURL)
	v.SetDefault("upstream_timeout", 10*time.Second)
	v.SetDefault("rate_limit_rps", 10)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("token_rate_limit_rps", 1)
	v.SetDefault("token_rate_limit_burst", 2)
	v.SetDefault("cache_enabled", false)
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("jaeger_endpoint", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("api_base_url", DefaultAPIBaseURL)
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}
