// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// UpstreamConfig governs the outbound fetch: browser identity, timeout, and
// pacing toward the upstream host.
type UpstreamConfig struct {
	UserAgent      string  `mapstructure:"user_agent"`
	Accept         string  `mapstructure:"accept"`
	AcceptLanguage string  `mapstructure:"accept_language"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RPS            float64 `mapstructure:"rps"`
	Burst          int     `mapstructure:"burst"`
}

// CatalogConfig pins the allowed origin and extraction defaults.
type CatalogConfig struct {
	Origin           string `mapstructure:"origin"`
	AllowedHost      string `mapstructure:"allowed_host"`
	DefaultCount     int    `mapstructure:"default_count"`
	MaxCount         int    `mapstructure:"max_count"`
	CategoryLabel    string `mapstructure:"category_label"`
	PlaceholderImage string `mapstructure:"placeholder_image"`
}

// RateLimitConfig tunes the per-client limiter.
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
	MinIntervalMs int `mapstructure:"min_interval_ms"`
}

// CacheConfig tunes the short-TTL response cache.
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("upstream.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	v.SetDefault("upstream.accept",
		"text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	v.SetDefault("upstream.accept_language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	v.SetDefault("upstream.timeout_seconds", 15)
	v.SetDefault("upstream.rps", 4)
	v.SetDefault("upstream.burst", 2)
	v.SetDefault("catalog.origin", "https://kaspi.kz")
	v.SetDefault("catalog.allowed_host", "kaspi.kz")
	v.SetDefault("catalog.default_count", 10)
	v.SetDefault("catalog.max_count", 50)
	v.SetDefault("catalog.category_label", "RAM")
	v.SetDefault("catalog.placeholder_image",
		"https://resources.cdn-kaspi.kz/shop/medias/sys_master/images/images/h13/h52/0/0.jpg")
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("ratelimit.max_requests", 20)
	v.SetDefault("ratelimit.min_interval_ms", 1200)
	v.SetDefault("cache.ttl_seconds", 120)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("upstream.timeout_seconds must be > 0")
	}
	origin, err := url.Parse(c.Catalog.Origin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return fmt.Errorf("catalog.origin must be an absolute URL")
	}
	if c.Catalog.AllowedHost == "" {
		return fmt.Errorf("catalog.allowed_host must be set")
	}
	if c.Catalog.DefaultCount < 1 || c.Catalog.DefaultCount > c.Catalog.MaxCount {
		return fmt.Errorf("catalog.default_count must be in [1, max_count]")
	}
	if c.Catalog.MaxCount < 1 {
		return fmt.Errorf("catalog.max_count must be >= 1")
	}
	if c.RateLimit.WindowSeconds <= 0 || c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("ratelimit window and max_requests must be > 0")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be > 0")
	}
	return nil
}

// UpstreamTimeout converts the upstream timeout into a duration.
func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// RequestTimeout converts the inbound request timeout into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// CacheTTL converts the cache TTL into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// RateLimitWindow converts the limiter window into a duration.
func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// RateLimitMinInterval converts the minimum spacing into a duration.
func (c Config) RateLimitMinInterval() time.Duration {
	return time.Duration(c.RateLimit.MinIntervalMs) * time.Millisecond
}
