package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Firebase FirebaseConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Admin    AdminConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig points at the Postgres instance used for the admin audit
// log. All application data lives in Firestore; this connection is optional
// and auditing is skipped when DSN is empty.
type DatabaseConfig struct {
	DSN string
}

type AdminConfig struct {
	Email              string
	AuditRetentionDays int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: splitEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			DSN: getEnv("AUDIT_DB_DSN", ""),
		},
		Admin: AdminConfig{
			Email:              strings.ToLower(getEnv("ADMIN_EMAIL", "admin@admin.com")),
			AuditRetentionDays: getEnvAsInt("AUDIT_RETENTION_DAYS", 90),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Admin.Email == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}

	if c.Admin.AuditRetentionDays <= 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be positive")
	}

	return nil
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
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func splitEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
