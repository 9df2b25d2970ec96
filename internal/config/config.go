package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const minProductionSecretLen = 32

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string

	FrontendURL string
	BackendURL  string

	GoogleClientID     string
	GoogleClientSecret string

	SessionSecret     string
	SessionCookieName string
	SessionTTL        time.Duration

	IngestAPIKey string
	DefaultCity  string
	NATSURL      string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnvWithDefault("PORT", "8080"),
		Environment:         getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		MongoDBURI:          os.Getenv("MONGODB_URI"),
		MongoDBPassword:     os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase:     getEnvWithDefault("MONGODB_DATABASE", "events_db"),
		FrontendURL:         strings.TrimRight(getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
		BackendURL:          strings.TrimRight(getEnvWithDefault("BACKEND_URL", "http://localhost:8080"), "/"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		SessionCookieName:   getEnvWithDefault("SESSION_COOKIE_NAME", "louderworld.sid"),
		IngestAPIKey:        os.Getenv("INGEST_API_KEY"),
		DefaultCity:         getEnvWithDefault("DEFAULT_CITY", "Sydney"),
		NATSURL:             os.Getenv("NATS_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}

	ttl, err := time.ParseDuration(getEnvWithDefault("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration, got %q", os.Getenv("SESSION_TTL"))
	}
	cfg.SessionTTL = ttl

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.IsProduction() {
		if len(cfg.SessionSecret) < minProductionSecretLen {
			return nil, fmt.Errorf("SESSION_SECRET must be at least %d bytes in production", minProductionSecretLen)
		}
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required in production")
		}
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// CloudinaryEnabled reports whether all three Cloudinary credentials are set.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) GoogleRedirectURL() string {
	return c.BackendURL + "/auth/google/callback"
}
