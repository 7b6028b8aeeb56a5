package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ErrMissingStoreURI is returned by Load when no store connection string is configured.
var ErrMissingStoreURI = errors.New("MONGODB_URI is missing from environment")

// Store drivers selected by the connection string scheme.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Server    ServerConfig
	Dashboard ServerConfig
	Stream    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	Client    ClientConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// StoreConfig holds record store configuration
type StoreConfig struct {
	URI        string
	Database   string
	Collection string
}

// RedisConfig holds Redis configuration. An empty Host disables the event bus.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ClientConfig holds configuration for callers of the feedback API
type ClientConfig struct {
	BaseURL string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := LoadClient()

	cfg.Store = StoreConfig{
		URI:        getEnv("MONGODB_URI", ""),
		Database:   getEnv("MONGODB_DATABASE", "feedback_dashboard"),
		Collection: getEnv("MONGODB_COLLECTION", "feedbacks"),
	}
	if cfg.Store.URI == "" {
		return nil, ErrMissingStoreURI
	}
	if _, err := cfg.Store.Driver(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient loads the configuration needed by processes that only talk to
// the feedback API and never open the store themselves.
func LoadClient() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 5000),
		},
		Dashboard: ServerConfig{
			Host: getEnv("DASHBOARD_HOST", "0.0.0.0"),
			Port: getEnvAsInt("DASHBOARD_PORT", 3000),
		},
		Stream: ServerConfig{
			Host: getEnv("STREAM_HOST", "0.0.0.0"),
			Port: getEnvAsInt("STREAM_PORT", 5001),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Client: ClientConfig{
			BaseURL: getEnv("FEEDBACK_API_URL", "http://localhost:5000/api"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "feedback-dashboard"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}
}

// Driver returns which store implementation the URI points at.
func (c *StoreConfig) Driver() (string, error) {
	parsed, err := url.Parse(c.URI)
	if err != nil {
		return "", fmt.Errorf("invalid store URI: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "mongodb", "mongodb+srv":
		return DriverMongo, nil
	case "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported store URI scheme %q", parsed.Scheme)
	}
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether Redis was configured
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
