package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Storage  StorageConfig
	Security SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// IdentityConfig holds identity provider configuration
type IdentityConfig struct {
	BaseURL string
	AnonKey string
	// JWTSecret is the provider's token signing secret, used only to
	// reject malformed tokens before a provider round trip.
	JWTSecret string
	Timeout   time.Duration
	// OAuthRedirectURL is the callback URL registered with the provider.
	OAuthRedirectURL string
}

// StorageConfig holds object store configuration
type StorageConfig struct {
	BaseURL      string
	ServiceKey   string
	ResumeBucket string
	Timeout      time.Duration
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	SessionEncryptionKey string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hackportal"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Identity: IdentityConfig{
			BaseURL:          getEnv("IDENTITY_BASE_URL", "http://localhost:9999"),
			AnonKey:          getEnv("IDENTITY_ANON_KEY", ""),
			JWTSecret:        getEnv("IDENTITY_JWT_SECRET", ""),
			Timeout:          getEnvAsDuration("IDENTITY_TIMEOUT", 5*time.Second),
			OAuthRedirectURL: getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/v1/auth/callback"),
		},
		Storage: StorageConfig{
			BaseURL:      getEnv("STORAGE_BASE_URL", "http://localhost:9998"),
			ServiceKey:   getEnv("STORAGE_SERVICE_KEY", ""),
			ResumeBucket: getEnv("STORAGE_RESUME_BUCKET", "resumes"),
			Timeout:      getEnvAsDuration("STORAGE_TIMEOUT", 30*time.Second),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
	}
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
