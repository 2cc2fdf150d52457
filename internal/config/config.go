package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is read once at startup and
// never mutated afterwards.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Tillo     TilloConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// TilloConfig carries the provider endpoint and the signing credentials. The
// secret is only ever handed to the signer; it must not be logged.
type TilloConfig struct {
	URL     string
	APIKey  string
	Secret  string
	Timeout time.Duration
}

// RedisConfig is optional; an empty URL disables the inbound rate limiter.
type RedisConfig struct {
	URL          string
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// RateLimitConfig bounds inbound requests per client IP over a sliding
// window. Only effective when Redis is configured.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// Load creates a new Config from environment variables.
func Load() *Config {
	return &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Tillo: TilloConfig{
			URL:     getEnv("TILLO_API_URL", ""),
			APIKey:  getEnv("TILLO_API_KEY", ""),
			Secret:  getEnv("TILLO_SECRET_KEY", ""),
			Timeout: getDurationEnv("TILLO_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			MaxRetries:   getIntEnv("REDIS_MAX_RETRIES", 3),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 5),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: getIntEnv("RATE_LIMIT_MAX", 100),
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}
}

// Validate reports fatal configuration errors. A missing provider URL, API
// key, or signing secret must stop the process at startup rather than fail
// every request at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Tillo.URL == "" {
		errs = append(errs, errors.New("TILLO_API_URL is required"))
	}
	if c.Tillo.APIKey == "" {
		errs = append(errs, errors.New("TILLO_API_KEY is required"))
	}
	if c.Tillo.Secret == "" {
		errs = append(errs, errors.New("TILLO_SECRET_KEY is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
