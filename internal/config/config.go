package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	BackendLocal    = "local"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                   int
	StorageBackend         string
	DatabaseURL            string
	LocalStorePath         string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	JWTSecret              string
	JWTIssuer              string
	AccessTTLSeconds       int64
	RefreshTTLSeconds      int64
	MediaStoragePath       string
	CorsOrigins            []string
	LogLevel               string
	LogFormat              string
	LogDir                 string
	LogRetentionDays       int
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapAdminName     string
}

// Load reads the environment. JWT_SECRET is mandatory and Load panics
// without it; backend-specific settings are checked by Validate.
func Load() Config {
	return Config{
		Port:                   envOrInt("PORT", 8080),
		StorageBackend:         strings.ToLower(envOr("STORAGE_BACKEND", BackendLocal)),
		DatabaseURL:            envOr("DATABASE_URL", ""),
		LocalStorePath:         envOr("LOCAL_STORE_PATH", "storage/khosta.db"),
		RedisAddr:              envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          envOr("REDIS_PASSWORD", ""),
		RedisDB:                envOrInt("REDIS_DB", 0),
		JWTSecret:              mustEnv("JWT_SECRET"),
		JWTIssuer:              envOr("JWT_ISSUER", "khosta"),
		AccessTTLSeconds:       int64(envOrInt("ACCESS_TTL_SECONDS", 14400)),
		RefreshTTLSeconds:      int64(envOrInt("REFRESH_TTL_SECONDS", 1209600)),
		MediaStoragePath:       envOr("MEDIA_STORAGE_PATH", "storage/media"),
		CorsOrigins:            parseCSV(envOr("CORS_ORIGINS", "")),
		LogLevel:               envOr("LOG_LEVEL", "info"),
		LogFormat:              envOr("LOG_FORMAT", "json"),
		LogDir:                 envOr("LOG_DIR", "logs"),
		LogRetentionDays:       envOrInt("LOG_RETENTION_DAYS", 7),
		BootstrapAdminEmail:    envOr("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword: envOr("BOOTSTRAP_ADMIN_PASSWORD", ""),
		BootstrapAdminName:     envOr("BOOTSTRAP_ADMIN_NAME", "Administrator"),
	}
}

func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendLocal:
		if c.LocalStorePath == "" {
			return fmt.Errorf("LOCAL_STORE_PATH is required for the local backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if (c.BootstrapAdminEmail == "") != (c.BootstrapAdminPassword == "") {
		return fmt.Errorf("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	return nil
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
