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

	// HTTP
	HTTPPort  int    `env:"HTTP_PORT" default:"3000"`
	PublicDir string `env:"PUBLIC_DIR" default:"./public"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" required:"true"`

	// Redis (session store for the Google login flow)
	RedisURL      string `env:"REDIS_URL" default:"redis://localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Session / auth
	AdminSecret string        `env:"ADMIN_SECRET" required:"true"`
	AdminEmail  string        `env:"ADMIN_EMAIL"`
	JWTSecret   string        `env:"JWT_SECRET" required:"true"`
	SessionTTL  time.Duration `env:"SESSION_TTL" default:"24h"`

	// Google OAuth (optional; the password login works without it)
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	OAuthCallbackURL   string `env:"OAUTH_CALLBACK_URL" default:"http://localhost:3000/auth/google/callback"`

	// Development
	LogLevel  string `env:"LOG_LEVEL" default:"debug"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file from project root; real env vars still win
	if err := godotenv.Load(".env"); err != nil {
		// If .env file doesn't exist, that's OK - we can still use system env vars
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	// HTTP
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 3000); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.PublicDir, "PUBLIC_DIR", "./public"); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvStringRequired(&config.DatabaseURL, "DATABASE_URL"); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", "redis://localhost:6379"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}

	// Session / auth
	if err := loadEnvStringRequired(&config.AdminSecret, "ADMIN_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.AdminEmail, "ADMIN_EMAIL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.SessionTTL, "SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	// Google OAuth
	if err := loadEnvString(&config.GoogleClientID, "GOOGLE_CLIENT_ID", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.GoogleClientSecret, "GOOGLE_CLIENT_SECRET", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.OAuthCallbackURL, "OAUTH_CALLBACK_URL", "http://localhost:3000/auth/google/callback"); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "debug"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
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

	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}

	// The Google flow needs both halves of the client credential plus an allowlist
	if c.GoogleClientID != "" || c.GoogleClientSecret != "" {
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
			errors = append(errors, "GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
		}
		if c.AdminEmail == "" {
			errors = append(errors, "ADMIN_EMAIL is required when Google login is enabled")
		}
	}

	if c.SessionTTL <= 0 {
		errors = append(errors, "SESSION_TTL must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GoogleEnabled reports whether the delegated login flow is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
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
