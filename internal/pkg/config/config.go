package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	DatesCache DatesCacheConfig `mapstructure:"dates_cache"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	Environment  string `mapstructure:"environment"`
	// BaseURL is the public origin used in the sitemap.
	BaseURL string `mapstructure:"base_url"`
}

// IsProduction reports whether upstream error detail must be hidden.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

type UpstreamConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	UserAgent     string        `mapstructure:"user_agent"`
	DatesTimeout  time.Duration `mapstructure:"dates_timeout"`
	CrimesTimeout time.Duration `mapstructure:"crimes_timeout"`
	ForcesTimeout time.Duration `mapstructure:"forces_timeout"`
}

type DatesCacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Fallback string        `mapstructure:"fallback"`
}

type ValkeyConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	CrimesTTL time.Duration `mapstructure:"crimes_ttl"`
	ForcesTTL time.Duration `mapstructure:"forces_ttl"`
}

type NATSConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Load reads configuration from .env, an optional config file and
// environment variables, in increasing order of precedence.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("upstream.base_url", "https://data.police.uk/api")
	v.SetDefault("upstream.user_agent", "UKCrimeMap/1.0 (+https://github.com/mathieuadams/ukcrimerepository)")
	v.SetDefault("upstream.dates_timeout", "10s")
	v.SetDefault("upstream.crimes_timeout", "15s")
	v.SetDefault("upstream.forces_timeout", "10s")
	v.SetDefault("dates_cache.ttl", "1h")
	v.SetDefault("dates_cache.fallback", "2025-08")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.crimes_ttl", "1h")
	v.SetDefault("valkey.forces_ttl", "24h")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.publish_timeout", "2s")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CRIMEMAP_UPSTREAM_BASE_URL → upstream.base_url
	v.SetEnvPrefix("CRIMEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("upstream.base_url must be an absolute URL, got %q", c.Upstream.BaseURL))
	}
	if c.Upstream.DatesTimeout <= 0 || c.Upstream.CrimesTimeout <= 0 || c.Upstream.ForcesTimeout <= 0 {
		errs = append(errs, "upstream timeouts must be positive")
	}
	if c.DatesCache.TTL <= 0 {
		errs = append(errs, "dates_cache.ttl must be positive")
	}
	if !monthPattern.MatchString(c.DatesCache.Fallback) {
		errs = append(errs, fmt.Sprintf("dates_cache.fallback must be YYYY-MM, got %q", c.DatesCache.Fallback))
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, "telemetry.endpoint is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
