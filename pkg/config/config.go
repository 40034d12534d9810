package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis (optional report cache)
	Redis RedisConfig

	// Upstream export
	Metabase MetabaseConfig

	// Ingestion scheduling
	Scheduler SchedulerConfig

	// Status vocabulary
	Vocabulary VocabularyConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration for the optional report cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MetabaseConfig holds the configuration of the Metabase card export the
// ingestion run pulls inconsistency counts from.
type MetabaseConfig struct {
	BaseURL string
	APIKey  string
	CardID  int

	// Requests per second against the Metabase API.
	RateLimit float64
}

// SchedulerConfig holds the cron schedule of the daily ingestion job.
type SchedulerConfig struct {
	IngestionSchedule string
}

// VocabularyConfig holds the closed set of recognized resolution statuses.
// The default spans the two validation sub-domains (enrollment, staff) plus
// the simpler financial domain.
type VocabularyConfig struct {
	Statuses []string
}

var defaultStatuses = []string{
	"enrollment_flagged",
	"enrollment_amended",
	"enrollment_validated",
	"staff_flagged",
	"staff_amended",
	"staff_validated",
	"financial_flagged",
	"financial_amended",
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Metabase: MetabaseConfig{
			BaseURL:   getEnv("METABASE_URL", "https://novopnp-mb.mec.gov.br"),
			APIKey:    getEnv("METABASE_API_KEY", ""),
			CardID:    getEnvAsInt("METABASE_CARD_ID", 71),
			RateLimit: getEnvAsFloat("METABASE_RATE_LIMIT", 2),
		},

		Scheduler: SchedulerConfig{
			// Every day at 6 AM (with seconds).
			IngestionSchedule: getEnv("INGESTION_SCHEDULE", "0 0 6 * * *"),
		},

		Vocabulary: VocabularyConfig{
			Statuses: getEnvAsSlice("STATUS_VOCABULARY", defaultStatuses),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if len(c.Vocabulary.Statuses) == 0 {
		return fmt.Errorf("STATUS_VOCABULARY must name at least one status")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	if len(values) == 0 {
		return defaultValue
	}

	return values
}
