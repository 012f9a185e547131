package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Storage backends selectable with STORE.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Store               string // STORE: mongo (Mongo + Postgres + Redis) or memory
	MongoURI            string
	PostgresURI         string
	RedisURI            string
	JWTSecret           string
	EncryptionKey       string
	SessionTTL          time.Duration
	Port                string
	FrontendURL         string
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	Host                string // Raw HOST env (e.g. https://api.afterthedoll.com)
	AllowedHost         string // Hostname only for strict host check (production only)
	Environment         string // ENV: production, development, etc.
	LogLevel            string

	// ForumMonotonicLastReply keeps a thread's last reply time from moving backwards.
	ForumMonotonicLastReply bool
	ForumCategoriesFile     string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostname(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", ""), getEnv("FRONTEND_URL_3", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	// When HOST is a backend subdomain (api.example.com), also allow the apex and www origins
	if h := hostname(host); h != "" && h != "localhost" {
		parts := strings.Split(h, ".")
		if len(parts) >= 2 {
			domain := strings.Join(parts[1:], ".")
			for _, origin := range []string{"https://" + domain, "https://www." + domain} {
				if !containsOrigin(allowedOrigins, origin) {
					allowedOrigins = append(allowedOrigins, origin)
				}
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		Store:                   strings.ToLower(getEnv("STORE", StoreMongo)),
		MongoURI:                getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/afterthedoll")),
		PostgresURI:             getEnv("POSTGRES_URI", "postgres://localhost:5432/afterthedoll?sslmode=disable"),
		RedisURI:                getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:               getEnv("JWT_SECRET", defaultJWTSecret),
		EncryptionKey:           getEnv("ENCRYPTION_KEY", ""),
		SessionTTL:              time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
		Host:                    host,
		AllowedHost:             allowedHost,
		Environment:             env,
		LogLevel:                getEnv("LOG_LEVEL", ""),
		Port:                    getEnv("PORT", "8080"),
		FrontendURL:             getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:          allowedOrigins,
		CloudinaryName:          getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:        getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:     getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:        getEnv("CLOUDINARY_FOLDER", "afterthedoll/avatars"),
		ForumMonotonicLastReply: getEnvBool("FORUM_MONOTONIC_LAST_REPLY", true),
		ForumCategoriesFile:     getEnv("FORUM_CATEGORIES_FILE", ""),
	}
}

// Validate rejects settings that are unsafe or unusable.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMongo, StoreMemory:
	default:
		return errors.New("STORE must be mongo or memory")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_HOURS must be positive")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be set in production")
		}
		if c.EncryptionKey == "" {
			return errors.New("ENCRYPTION_KEY must be set in production")
		}
		if c.Store == StoreMemory {
			return errors.New("STORE=memory is not allowed in production")
		}
	}
	return nil
}

// CloudinaryEnabled reports whether avatar uploads are configured.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// hostname strips scheme, path and port from a HOST value.
func hostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}
