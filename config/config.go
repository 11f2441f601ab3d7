package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the API server
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// CORS
	AllowedOrigins []string

	// Database configuration
	DBDriver   string
	DBURL      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Import rate limiting (requests per user per hour)
	ImportRateLimit int

	// JWT configuration
	JWTSecret      string
	AccessTokenTTL time.Duration

	// Avatar storage
	S3BucketName    string
	AWSRegion       string
	S3Endpoint      string
	S3PublicBaseURL string

	// Extraction model
	AnthropicAPIKey string
	AnthropicModel  string

	// Outgoing mail
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
}

const (
	defaultAccessTokenTTL  = time.Hour
	defaultImportRateLimit = 20
	defaultAnthropicModel  = "claude-3-5-haiku-latest"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		// CI only ever reads plain environment variables
		loadFrom(cfg, os.Getenv)
	case Development, Test:
		loadFrom(cfg, lookup)
		applyDevDefaults(cfg)
	case Production:
		loadFrom(cfg, lookup)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg, env); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFrom(cfg *Config, get func(string) string) {
	cfg.ServerPort = get("SERVER_PORT")
	cfg.ServerHost = get("SERVER_HOST")
	cfg.AllowedOrigins = splitList(get("CORS_ALLOWED_ORIGINS"))

	cfg.DBDriver = strings.ToLower(get("DATABASE_DRIVER"))
	cfg.DBURL = get("DATABASE_URL")
	cfg.DBHost = get("DB_HOST")
	cfg.DBPort = get("DB_PORT")
	cfg.DBUser = get("DB_USER")
	cfg.DBPassword = get("DB_PASSWORD")
	cfg.DBName = get("DB_NAME")
	cfg.DBSSLMode = get("DB_SSL_MODE")
	cfg.SQLitePath = get("SQLITE_PATH")

	cfg.RedisHost = get("REDIS_HOST")
	cfg.RedisPort = get("REDIS_PORT")
	cfg.RedisPassword = get("REDIS_PASSWORD")
	cfg.RedisURL = get("REDIS_URL")
	cfg.RedisDB = atoiOr(get("REDIS_DB"), 0)
	cfg.ImportRateLimit = atoiOr(get("IMPORT_RATE_LIMIT"), defaultImportRateLimit)

	cfg.JWTSecret = get("JWT_SECRET")
	cfg.AccessTokenTTL = defaultAccessTokenTTL
	if raw := get("ACCESS_TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.AccessTokenTTL = d
		}
	}

	cfg.S3BucketName = get("S3_BUCKET_NAME")
	cfg.AWSRegion = get("AWS_REGION")
	cfg.S3Endpoint = get("S3_ENDPOINT")
	cfg.S3PublicBaseURL = get("S3_PUBLIC_BASE_URL")

	cfg.AnthropicAPIKey = get("ANTHROPIC_API_KEY")
	cfg.AnthropicModel = get("ANTHROPIC_MODEL")
	if cfg.AnthropicModel == "" {
		cfg.AnthropicModel = defaultAnthropicModel
	}

	cfg.SMTPHost = get("SMTP_HOST")
	cfg.SMTPPort = get("SMTP_PORT")
	cfg.SMTPUsername = get("SMTP_USERNAME")
	cfg.SMTPPassword = get("SMTP_PASSWORD")
	cfg.EmailFrom = get("EMAIL_FROM")
}

// applyDevDefaults fills in what a local checkout needs to boot with no setup:
// sqlite on disk, no redis, no avatar bucket.
func applyDevDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.DBDriver == "sqlite" && cfg.SQLitePath == "" {
		cfg.SQLitePath = "recipebox.db"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds a DSN from the discrete DB_* values unless DATABASE_URL is set
func (c *Config) PostgresDSN() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode)
}

// RedisEnabled reports whether enough redis settings exist to connect
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// lookup reads an environment variable, falling back to the Docker secret of
// the same name in lower case.
func lookup(name string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return readSecret(strings.ToLower(name))
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
