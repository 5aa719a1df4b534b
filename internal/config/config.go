package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	DBUrl                string
	JWTSecret            string
	AppEnv               string
	ExpirerInterval      time.Duration
	ExpirerConcurrency   int
	PaymentWindow        time.Duration
	GmailCredentialsFile string
	GmailSender          string
	CatalogPath          string
	MeetingBaseURL       string
}

// LoadConfig loads the API server configuration. JWT_SECRET is required.
func LoadConfig() (*Config, error) {
	cfg := load()
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadJobConfig loads the configuration of background jobs, which do not
// authenticate requests. DB_URL is required.
func LoadJobConfig() (*Config, error) {
	cfg := load()
	if cfg.DBUrl == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	return cfg, nil
}

func load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DBUrl:                getEnv("DB_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		AppEnv:               normalizeEnv(getEnv("APP_ENV", "production")),
		ExpirerInterval:      getEnvDuration("EXPIRER_INTERVAL", 5*time.Minute),
		ExpirerConcurrency:   getEnvInt("EXPIRER_CONCURRENCY", 4),
		PaymentWindow:        getEnvDuration("PAYMENT_WINDOW", 24*time.Hour),
		GmailCredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", ""),
		GmailSender:          getEnv("GMAIL_SENDER", ""),
		CatalogPath:          getEnv("CATALOG_PATH", ""),
		MeetingBaseURL:       getEnv("MEETING_BASE_URL", "https://meet.linkup.app"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// MailEnabled reports whether Gmail delivery is configured.
func (c *Config) MailEnabled() bool {
	return c != nil && c.GmailCredentialsFile != "" && c.GmailSender != "" && !getEnvBool("DISABLE_MAIL", false)
}
