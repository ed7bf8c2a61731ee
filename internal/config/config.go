package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is loaded once at startup
// and injected into constructors; nothing reads the environment after that.
type Config struct {
	ServerPort    int
	DatabasePath  string
	AppEnv        string
	LogLevel      string
	PublicBaseURL string

	JWTSecret          string
	JWTExpiresIn       time.Duration
	JWTCookieExpiresIn time.Duration

	BcryptCost          int
	MaxConcurrentHashes int
	ResetTokenTTL       time.Duration
	JanitorSchedule     string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
}

// Load loads configuration from the environment (and a .env file when
// present) or sets defaults.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}
	smtpPort, err := strconv.Atoi(getEnv("EMAIL_PORT", "587"))
	if err != nil {
		return nil, err
	}
	jwtExpires, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "2160h"))
	if err != nil {
		return nil, err
	}
	cookieExpires, err := time.ParseDuration(getEnv("JWT_COOKIE_EXPIRES_IN", "2160h"))
	if err != nil {
		return nil, err
	}
	resetTTL, err := time.ParseDuration(getEnv("RESET_TOKEN_TTL", "10m"))
	if err != nil {
		return nil, err
	}
	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "12"))
	if err != nil {
		return nil, err
	}
	maxHashes, err := strconv.Atoi(getEnv("MAX_CONCURRENT_HASHES", "16"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:          port,
		DatabasePath:        getEnv("DATABASE_PATH", "./tourbase.db"),
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpiresIn:        jwtExpires,
		JWTCookieExpiresIn:  cookieExpires,
		BcryptCost:          bcryptCost,
		MaxConcurrentHashes: maxHashes,
		ResetTokenTTL:       resetTTL,
		JanitorSchedule:     getEnv("RESET_JANITOR_SCHEDULE", "@every 15m"),
		SMTPHost:            getEnv("EMAIL_HOST", "localhost"),
		SMTPPort:            smtpPort,
		SMTPUsername:        getEnv("EMAIL_USERNAME", ""),
		SMTPPassword:        getEnv("EMAIL_PASSWORD", ""),
		EmailFrom:           getEnv("EMAIL_FROM", "Tourbase <hello@tourbase.io>"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "insecure-dev-secret"
	}

	return cfg, nil
}

// IsProduction reports whether the app runs in production mode. Cookie
// security flags depend on it.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
