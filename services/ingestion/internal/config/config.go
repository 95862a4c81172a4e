package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Version  string

	JobsAPIURL    string
	SubmitTimeout time.Duration

	SourceURL       string
	FetchDriver     string
	FetchTimeout    time.Duration
	PageSettleDelay time.Duration
	UserAgent       string

	MaxCandidates       int
	ReferenceTablesPath string
	PollingInterval     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	NATSURL         string
	NATSConnTimeout time.Duration

	OTELCollectorURL string
}

const (
	FetchDriverPlaywright = "playwright"
	FetchDriverHTTP       = "http"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	config := &Config{
		Env:      getEnvString("ENV", "development"),
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		Version:  getEnvString("APP_VERSION", "2.0.0"),

		JobsAPIURL:    strings.TrimRight(getEnvString("JOBS_API_URL", "http://localhost:5000/api"), "/"),
		SubmitTimeout: getEnvDuration("SUBMIT_TIMEOUT", 10*time.Second),

		SourceURL:       getEnvString("SOURCE_URL", "https://www.actuarylist.com/jobs"),
		FetchDriver:     strings.ToLower(getEnvString("FETCH_DRIVER", FetchDriverPlaywright)),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 45*time.Second),
		PageSettleDelay: getEnvDuration("PAGE_SETTLE_DELAY", 3*time.Second),
		UserAgent:       getEnvString("USER_AGENT", defaultUserAgent),

		MaxCandidates:       getEnvInt("MAX_CANDIDATES", 25),
		ReferenceTablesPath: getEnvString("REFERENCE_TABLES_PATH", ""),
		PollingInterval:     getEnvDuration("POLLING_INTERVAL", 0),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*time.Minute),

		NATSURL:         getEnvString("NATS_URL", ""),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		OTELCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
	}

	switch config.FetchDriver {
	case FetchDriverPlaywright, FetchDriverHTTP:
	default:
		return nil, fmt.Errorf("unsupported FETCH_DRIVER %q", config.FetchDriver)
	}
	if config.MaxCandidates <= 0 {
		return nil, fmt.Errorf("MAX_CANDIDATES must be positive, got %d", config.MaxCandidates)
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
