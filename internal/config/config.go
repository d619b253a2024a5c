// Package config provides configuration management for the InsightSphere dashboard and API server.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Dashboard DashboardConfig
	Server    ServerConfig
	Upstream  UpstreamConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// DashboardConfig holds the dashboard client configuration
type DashboardConfig struct {
	APIBaseURL      string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	ErrorBannerTTL  time.Duration
	ProbeInterval   time.Duration // how often netwatch checks the API is reachable
	Plain           bool          // print to stdout instead of running the terminal UI
	LogFile         string
}

// ServerConfig holds API server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// UpstreamConfig holds configuration of the market data provider behind the API
type UpstreamConfig struct {
	BaseURL       string
	Timeout       time.Duration
	TopN          int
	MockMode      bool
	RetryAttempts int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// RateLimitConfig holds per-client rate limiting for the API server
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env is optional, variables may be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Dashboard: DashboardConfig{
			APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8797/api"),
			RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", 60*time.Second),
			RequestTimeout:  getEnvAsDuration("API_TIMEOUT", 30*time.Second),
			ErrorBannerTTL:  getEnvAsDuration("ERROR_BANNER_TTL", 5*time.Second),
			ProbeInterval:   getEnvAsDuration("NETWORK_PROBE_INTERVAL", 10*time.Second),
			Plain:           getEnvAsBool("DASHBOARD_PLAIN", false),
			LogFile:         getEnv("LOG_FILE", "insightsphere.log"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8797"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 45*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Upstream: UpstreamConfig{
			BaseURL:       getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
			Timeout:       getEnvAsDuration("UPSTREAM_TIMEOUT", 30*time.Second),
			TopN:          getEnvAsInt("UPSTREAM_TOP_N", 10),
			MockMode:      getEnvAsBool("MOCK_MODE", true),
			RetryAttempts: getEnvAsInt("UPSTREAM_RETRY_ATTEMPTS", 3),
		},
		Redis: RedisConfig{
			Host:           getEnv("REDIS_HOST", "localhost"),
			Port:           getEnv("REDIS_PORT", "6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 10),
		},
		Cache: CacheConfig{
			// a little under the dashboard refresh so each refresh sees fresh data
			TTL: getEnvAsDuration("CACHE_TTL", 55*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 5),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// Validate checks the values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	if c.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %v", c.Dashboard.RefreshInterval)
	}
	if c.Dashboard.ErrorBannerTTL <= 0 {
		return fmt.Errorf("ERROR_BANNER_TTL must be positive, got %v", c.Dashboard.ErrorBannerTTL)
	}
	if c.Dashboard.ProbeInterval <= 0 {
		return fmt.Errorf("NETWORK_PROBE_INTERVAL must be positive, got %v", c.Dashboard.ProbeInterval)
	}
	if err := validateURL("API_BASE_URL", c.Dashboard.APIBaseURL); err != nil {
		return err
	}
	if err := validateURL("COINGECKO_BASE_URL", c.Upstream.BaseURL); err != nil {
		return err
	}
	if c.Upstream.TopN <= 0 {
		return fmt.Errorf("UPSTREAM_TOP_N must be positive, got %d", c.Upstream.TopN)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %v", c.Cache.TTL)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not an absolute URL: %q", name, raw)
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a bool with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
