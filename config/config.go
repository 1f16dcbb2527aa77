package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds server, scanner and watcher settings
type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string
	DatabaseURL    string
	MaxRequestSize int64
	RequestTimeout time.Duration

	// IngestAPIKey guards the ingest routes when set
	IngestAPIKey     string
	RateLimitEnabled bool
	RateLimit        float64 // requests per second per client

	DebugLogging bool
	PollAttempts int
	PollInterval time.Duration

	BrowserEnabled bool
	BrowserBin     string
	Headless       bool
	PageTimeout    time.Duration
	ScanWorkers    int

	WatchURLs     []string
	WatchSchedule string
	IngestBaseURL string
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8787"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MaxRequestSize: getEnvInt64("DDD_MAX_REQUEST_SIZE", 1<<20), // 1MB
		RequestTimeout: getEnvDuration("DDD_REQUEST_TIMEOUT", 30*time.Second),

		IngestAPIKey:     os.Getenv("DDD_INGEST_API_KEY"),
		RateLimitEnabled: getEnvBool("DDD_RATE_LIMIT_ENABLED", true),
		RateLimit:        getEnvFloat("DDD_RATE_LIMIT", 5),

		DebugLogging: getEnvBool("DDD_DEBUG", false),
		PollAttempts: getEnvInt("DDD_POLL_ATTEMPTS", 30),
		PollInterval: getEnvDuration("DDD_POLL_INTERVAL", 500*time.Millisecond),

		BrowserEnabled: getEnvBool("DDD_BROWSER_ENABLED", false),
		BrowserBin:     os.Getenv("CHROME_BIN"),
		Headless:       getEnvBool("DDD_HEADLESS", true),
		PageTimeout:    getEnvDuration("DDD_PAGE_TIMEOUT", 45*time.Second),
		ScanWorkers:    getEnvInt("DDD_SCAN_WORKERS", 2),

		WatchURLs:     getEnvList("DDD_WATCH_URLS", nil),
		WatchSchedule: getEnv("DDD_WATCH_SCHEDULE", "0 0 */6 * * *"),
		IngestBaseURL: getEnv("DDD_INGEST_BASE_URL", "http://localhost:8787"),
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// UsePostgres reports whether deals are persisted in Postgres
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
