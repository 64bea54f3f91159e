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
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service
	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Catalog providers
	AniListAPIURL    string `env:"ANILIST_API_URL" default:"https://graphql.anilist.co"`
	TMDBAPIURL       string `env:"TMDB_API_URL" default:"https://api.themoviedb.org/3"`
	TMDBAPIKey       string `env:"TMDB_API_KEY" required:"true"`
	TMDBImageBaseURL string `env:"TMDB_IMAGE_BASE_URL" default:"https://image.tmdb.org/t/p"`

	// Embed providers
	AnimeEmbedBaseURL  string `env:"ANIME_EMBED_BASE_URL" default:"https://vidsrc.icu"`
	StreamEmbedBaseURL string `env:"STREAM_EMBED_BASE_URL" default:"https://vidfast.pro"`
	EmbedPreferIMDBID  bool   `env:"EMBED_PREFER_IMDB_ID" default:"true"`

	// Redis revalidation cache
	RedisURL string `env:"REDIS_URL" default:"redis://localhost:6379"`
	CacheTTL int    `env:"CACHE_TTL" default:"3600"`

	// Live search
	SuggestQuietPeriod time.Duration `env:"SUGGEST_QUIET_PERIOD" default:"300ms"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"info"`
	LogFormat   string   `env:"LOG_FORMAT" default:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional; system env vars are enough in production
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	// Providers
	if err := loadEnvString(&config.AniListAPIURL, "ANILIST_API_URL", "https://graphql.anilist.co"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.TMDBAPIURL, "TMDB_API_URL", "https://api.themoviedb.org/3"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&config.TMDBAPIKey, "TMDB_API_KEY"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.TMDBImageBaseURL, "TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"); err != nil {
		return nil, err
	}

	// Embeds
	if err := loadEnvString(&config.AnimeEmbedBaseURL, "ANIME_EMBED_BASE_URL", "https://vidsrc.icu"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.StreamEmbedBaseURL, "STREAM_EMBED_BASE_URL", "https://vidfast.pro"); err != nil {
		return nil, err
	}
	if err := loadEnvBool(&config.EmbedPreferIMDBID, "EMBED_PREFER_IMDB_ID", true); err != nil {
		return nil, err
	}

	// Cache
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", "redis://localhost:6379"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.CacheTTL, "CACHE_TTL", 3600); err != nil {
		return nil, err
	}

	// Live search
	if err := loadEnvDuration(&config.SuggestQuietPeriod, "SUGGEST_QUIET_PERIOD", 300*time.Millisecond); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	if err := loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000"}); err != nil {
		return nil, err
	}

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.CacheTTL < 0 {
		errors = append(errors, "CACHE_TTL must not be negative")
	}
	if c.SuggestQuietPeriod <= 0 {
		errors = append(errors, "SUGGEST_QUIET_PERIOD must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// CacheTTLDuration returns the revalidation window as a duration.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
