// Package config loads the CLI configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/sograph-client/pkg/client"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	API     APIConfig
	Export  ExportConfig
	Cache   CacheConfig
	Logging LoggingConfig
	Server  ServerConfig
}

// APIConfig holds the SoGraph API settings.
type APIConfig struct {
	BaseURL        string
	Address        string
	Signature      string
	Timeout        time.Duration
	MaxConcurrency int
}

// ExportConfig holds workbook output settings.
type ExportConfig struct {
	AssetsDir string
}

// CacheConfig holds the optional Redis response cache settings.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Port string
}

// Load reads envFile (if given, or ".env" if present) and then the process
// environment. Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &Config{
		API: APIConfig{
			BaseURL:        getEnv("SOGRAPH_BASE_URL", client.DefaultBaseURL),
			Address:        getEnv("SOGRAPH_ADDRESS", ""),
			Signature:      getEnv("SOGRAPH_SIGNATURE", ""),
			Timeout:        getEnvAsDuration("SOGRAPH_HTTP_TIMEOUT", 0),
			MaxConcurrency: getEnvAsInt("SOGRAPH_MAX_CONCURRENCY", 10),
		},
		Export: ExportConfig{
			AssetsDir: getEnv("SOGRAPH_ASSETS_DIR", "assets"),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvAsDuration("SOGRAPH_CACHE_TTL", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
	}, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var missing []string
	if c.API.BaseURL == "" {
		missing = append(missing, "SOGRAPH_BASE_URL")
	}
	if c.API.Address == "" {
		missing = append(missing, "SOGRAPH_ADDRESS")
	}
	if c.API.Signature == "" {
		missing = append(missing, "SOGRAPH_SIGNATURE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.API.MaxConcurrency <= 0 {
		return fmt.Errorf("SOGRAPH_MAX_CONCURRENCY must be > 0 (got %d)", c.API.MaxConcurrency)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("SOGRAPH_HTTP_TIMEOUT must be >= 0 (got %s)", c.API.Timeout)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("SOGRAPH_CACHE_TTL must be >= 0 (got %s)", c.Cache.TTL)
	}
	return nil
}

// Credentials returns the API credentials.
func (c *Config) Credentials() client.Credentials {
	return client.Credentials{Address: c.API.Address, Signature: c.API.Signature}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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
