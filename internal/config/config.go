// Package config loads leaddesk settings from the environment. A .env file in
// the working directory is loaded first when present.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"leaddesk/internal/auth"
	"leaddesk/internal/database"
	"leaddesk/internal/storage"
)

// Config holds every runtime setting.
type Config struct {
	Port int

	StoreDriver string
	SQLitePath  string
	DBString    string

	BlobDriver string
	BlobRoot   string
	S3         storage.S3Config

	SessionSecret string
	FrontendURL   string
	CORSOrigins   []string

	PasswordMode string
	SeedOnStart  bool

	LogLevel  string
	LogFormat string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthCallbackURL   string
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		StoreDriver: getEnv("STORE_DRIVER", database.DriverSQLite),
		SQLitePath:  getEnv("SQLITE_PATH", "leaddesk.db"),
		DBString:    os.Getenv("DB_STRING"),
		BlobDriver:  getEnv("BLOB_DRIVER", storage.DriverFilesystem),
		BlobRoot:    getEnv("BLOB_FS_ROOT", storage.DefaultFSRoot),
		S3: storage.S3Config{
			Bucket:           os.Getenv("AWS_S3_BUCKET"),
			Region:           getEnv("AWS_REGION", "us-east-1"),
			Endpoint:         os.Getenv("AWS_ENDPOINT_URL"),
			AccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
			EncryptionKeyHex: os.Getenv("DOCUMENT_ENCRYPTION_KEY"),
		},
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		PasswordMode:       getEnv("PASSWORD_MODE", auth.PasswordPlain),
		SeedOnStart:        getEnvBool("SEED_ON_START", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthCallbackURL:   getEnv("OAUTH_CALLBACK_URL", "http://localhost:8080/auth"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at first use.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case database.DriverMemory, database.DriverSQLite:
	case database.DriverPostgres:
		if c.DBString == "" {
			return fmt.Errorf("DB_STRING is required for STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.BlobDriver {
	case storage.DriverFilesystem, storage.DriverMemory, storage.DriverS3:
	default:
		return fmt.Errorf("unknown BLOB_DRIVER %q", c.BlobDriver)
	}
	// records would outlive the bytes they point at
	if c.StoreDriver != database.DriverMemory && !c.BlobConfig().Durable() {
		return fmt.Errorf("BLOB_DRIVER=memory cannot be used with STORE_DRIVER=%s", c.StoreDriver)
	}
	switch c.PasswordMode {
	case auth.PasswordPlain, auth.PasswordBcrypt:
	default:
		return fmt.Errorf("unknown PASSWORD_MODE %q", c.PasswordMode)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// DSN returns the connection string for the configured store driver.
func (c *Config) DSN() string {
	if c.StoreDriver == database.DriverPostgres {
		return c.DBString
	}
	return c.SQLitePath
}

// BlobConfig returns the attachment store settings.
func (c *Config) BlobConfig() storage.Config {
	return storage.Config{Driver: c.BlobDriver, FSRoot: c.BlobRoot, S3: c.S3}
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Secure reports whether cookies should be marked secure.
func (c *Config) Secure() bool {
	return strings.HasPrefix(c.FrontendURL, "https://")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
