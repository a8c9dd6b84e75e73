package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Rules    RulesConfig
	Store    StoreConfig
	Pipeline PipelineConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RulesConfig locates the category rule-set artifact.
type RulesConfig struct {
	Path string // empty -> built-in default rules
}

// StoreConfig holds job-store configuration. Exactly one backend is used:
// DSN selects Postgres, Path selects SQLite, neither selects in-memory.
type StoreConfig struct {
	DSN              string
	Path             string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// PipelineConfig holds processing thresholds and batch behavior.
type PipelineConfig struct {
	MinClassifyConfidence float64
	Parallelism           int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		},
		Rules: RulesConfig{
			Path: getEnv("RULES_PATH", ""),
		},
		Store: StoreConfig{
			DSN:              getEnv("DB_URL", ""),
			Path:             getEnv("DB_PATH", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Pipeline: PipelineConfig{
			MinClassifyConfidence: getEnvAsFloat64("MIN_CLASSIFY_CONFIDENCE", 0.60),
			Parallelism:           getEnvAsInt("BATCH_PARALLELISM", 4),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Store.DSN != "" && c.Store.Path != "" {
		return NewAppError("CONFIG_ERROR", "DB_URL and DB_PATH are mutually exclusive", ErrInvalidInput)
	}
	if c.Pipeline.MinClassifyConfidence < 0 || c.Pipeline.MinClassifyConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "MIN_CLASSIFY_CONFIDENCE must be in [0,1]", ErrInvalidInput)
	}
	if c.Pipeline.Parallelism < 1 {
		return NewAppError("CONFIG_ERROR", "BATCH_PARALLELISM must be >= 1", ErrInvalidInput)
	}
	return nil
}
