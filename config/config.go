package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Parser     ParserConfig
	Classifier ClassifierConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig holds document store configuration
type StoreConfig struct {
	Type      string `mapstructure:"type"` // "memory" or "redis"
	RedisURL  string `mapstructure:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ParserConfig holds order parser tuning
type ParserConfig struct {
	FuzzyThreshold    float64       `mapstructure:"fuzzy_threshold"`
	FuzzyGoodEnough   float64       `mapstructure:"fuzzy_good_enough"`
	ClassifierTimeout time.Duration `mapstructure:"classifier_timeout"`
}

// ClassifierConfig holds the optional zero-shot classifier configuration
type ClassifierConfig struct {
	Provider   string  `mapstructure:"provider"` // "none" or "gemini"
	APIKey     string  `mapstructure:"api_key"`
	Model      string  `mapstructure:"model"`
	RatePerSec float64 `mapstructure:"rate_per_sec"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/orderbot/")

	// Environment variable settings, e.g. ORDERBOT_STORE_TYPE
	v.SetEnvPrefix("ORDERBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8501"})

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.redis_url", "")
	v.SetDefault("store.key_prefix", "orderbot:")

	// Parser defaults
	v.SetDefault("parser.fuzzy_threshold", 70)
	v.SetDefault("parser.fuzzy_good_enough", 85)
	v.SetDefault("parser.classifier_timeout", "2s")

	// Classifier defaults
	v.SetDefault("classifier.provider", "none")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.model", "gemini-1.5-flash")
	v.SetDefault("classifier.rate_per_sec", 1.0)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Store.Type != "memory" && config.Store.Type != "redis" {
		return fmt.Errorf("store type must be 'memory' or 'redis', got: %s", config.Store.Type)
	}

	if config.Store.Type == "redis" && config.Store.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when store type is 'redis'")
	}

	switch config.Classifier.Provider {
	case "none", "":
	case "gemini":
		if config.Classifier.APIKey == "" {
			return fmt.Errorf("classifier API key is required (set ORDERBOT_CLASSIFIER_API_KEY)")
		}
	default:
		return fmt.Errorf("classifier provider must be 'none' or 'gemini', got: %s", config.Classifier.Provider)
	}

	if config.Parser.FuzzyThreshold < 0 || config.Parser.FuzzyThreshold > 100 {
		return fmt.Errorf("parser fuzzy threshold must be between 0 and 100, got: %v", config.Parser.FuzzyThreshold)
	}

	if config.Parser.FuzzyGoodEnough < config.Parser.FuzzyThreshold {
		return fmt.Errorf("parser fuzzy good-enough score must not be below the threshold")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
