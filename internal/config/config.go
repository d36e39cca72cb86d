package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session token formats
const (
	TokenFormatPaseto = "paseto"
	TokenFormatJWT    = "jwt"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	ClientURL       string
	TrustedOrigins  []string // CORS allowed origins, ClientURL always included
	StaticDir       string   // frontend bundle served in prod
}

type DatabaseConfig struct {
	URL            string // full connection string, takes precedence over the parts below
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	// Symmetric key, exactly 32 bytes (PASETO v4.local key or JWT HS256 secret)
	Key         []byte
	TokenFormat string
	Duration    time.Duration
	CookieName  string
}

type EmailConfig struct {
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPassword     string
	SenderEmail      string
	ClientURL        string // base for links embedded in emails
	Async            bool
	QueueConcurrency int
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	clientURL := getEnv("CLIENT_URL", "http://localhost:5173")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			ClientURL:       clientURL,
			TrustedOrigins:  mergeOrigins(clientURL, getSliceEnv("TRUSTED_ORIGINS", nil)),
			StaticDir:       getEnv("STATIC_DIR", "frontend/dist"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "authflow"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Key:         []byte(getEnv("SESSION_KEY", "")),
			TokenFormat: strings.ToLower(getEnv("SESSION_TOKEN_FORMAT", TokenFormatPaseto)),
			Duration:    getDurationEnv("SESSION_DURATION", 7*24*time.Hour),
			CookieName:  getEnv("SESSION_COOKIE_NAME", "token"),
		},
		Email: EmailConfig{
			SMTPHost:         getEnv("SMTP_HOST", ""),
			SMTPPort:         getEnv("SMTP_PORT", "587"),
			SMTPUser:         getEnv("SMTP_USER", ""),
			SMTPPassword:     getEnv("SMTP_PASS", ""),
			SenderEmail:      getEnv("SENDER_EMAIL", getEnv("SMTP_USER", "")),
			ClientURL:        clientURL,
			Async:            getBoolEnv("MAIL_ASYNC", false),
			QueueConcurrency: getIntEnv("MAIL_QUEUE_CONCURRENCY", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	if len(c.Session.Key) != 32 {
		return fmt.Errorf("SESSION_KEY must be exactly 32 bytes, got %d", len(c.Session.Key))
	}

	switch c.Session.TokenFormat {
	case TokenFormatPaseto, TokenFormatJWT:
	default:
		return fmt.Errorf("SESSION_TOKEN_FORMAT must be %q or %q, got %q", TokenFormatPaseto, TokenFormatJWT, c.Session.TokenFormat)
	}

	if c.Session.Duration <= 0 {
		return fmt.Errorf("SESSION_DURATION must be positive")
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Address returns the HTTP listen address
func (c *ServerConfig) Address() string {
	return ":" + c.Port
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func mergeOrigins(clientURL string, extra []string) []string {
	origins := []string{clientURL}
	for _, o := range extra {
		if o != clientURL {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return b
}

// getDurationEnv reads a number of seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
