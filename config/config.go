package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Google struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	FrontendRedirect string
}

// Enabled reports whether Google sign-in should be mounted.
func (g Google) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

func (m MinIO) Enabled() bool {
	return m.Endpoint != ""
}

type RateLimit struct {
	RPS   float64
	Burst int
}

type Config struct {
	Port       string
	DBURL      string
	JWTSecret  string
	TokenTTL   time.Duration
	CORSOrigin string

	// "authenticated" or "admin"
	UnreleasedVisibility string

	LogFormat string
	LogLevel  string

	AdminUsername string
	AdminPassword string

	Google        Google
	MinIO         MinIO
	MaxUploadSize int64
	AuthRateLimit RateLimit
}

// Load reads .env (if present) and the process environment.
// The returned bool is false when no .env file was found.
func Load() (Config, bool, error) {
	dotenv := godotenv.Load() == nil
	cfg, err := FromEnv()
	return cfg, dotenv, err
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	var missing []string
	must := func(key string) string {
		v, ok := mustEnv(key)
		if !ok {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		DBURL:                must("DB_URL"),
		JWTSecret:            must("JWT_SECRET"),
		CORSOrigin:           getEnv("CORS_ORIGIN", "http://localhost:3000"),
		UnreleasedVisibility: strings.ToLower(getEnv("UNRELEASED_VISIBILITY", "authenticated")),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		AdminUsername:        getEnv("ADMIN_USERNAME", ""),
		AdminPassword:        getEnv("ADMIN_PASSWORD", ""),

		Google: Google{
			ClientID:         getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:     getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:      getEnv("GOOGLE_REDIRECT_URL", ""),
			FrontendRedirect: getEnv("GOOGLE_FRONTEND_REDIRECT", ""),
		},
		MinIO: MinIO{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "posters"),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.MinIO.UseSSL, err = strconv.ParseBool(getEnv("MINIO_USE_SSL", "false")); err != nil {
		return Config{}, fmt.Errorf("MINIO_USE_SSL: %w", err)
	}
	if cfg.MaxUploadSize, err = strconv.ParseInt(getEnv("MAX_UPLOAD_SIZE", "10485760"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.AuthRateLimit.RPS, err = strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT_RPS", "2"), 64); err != nil {
		return Config{}, fmt.Errorf("AUTH_RATE_LIMIT_RPS: %w", err)
	}
	if cfg.AuthRateLimit.Burst, err = strconv.Atoi(getEnv("AUTH_RATE_LIMIT_BURST", "5")); err != nil {
		return Config{}, fmt.Errorf("AUTH_RATE_LIMIT_BURST: %w", err)
	}

	switch cfg.UnreleasedVisibility {
	case "authenticated", "admin":
	default:
		return Config{}, fmt.Errorf("UNRELEASED_VISIBILITY must be \"authenticated\" or \"admin\", got %q", cfg.UnreleasedVisibility)
	}

	return cfg, nil
}

func mustEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
