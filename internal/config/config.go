// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// MinSessionSecretLength is the minimum required length for the session
// secret (32 bytes, enough for AES-256 keying).
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SessionSecret string `env:"SESSION_SECRET,required"`

	// DatabaseURL selects Postgres when set; the legacy postgres:// scheme
	// is normalized to postgresql://. Empty means a local SQLite file.
	DatabaseURL   string `env:"DATABASE_URL"`
	DBPath        string `env:"DB_PATH" envDefault:"./data/chefsite.db"`
	PGSSLMode     string `env:"PGSSLMODE" envDefault:"require"`
	DBPoolRecycle int    `env:"DB_POOL_RECYCLE" envDefault:"300"` // seconds

	ServerHost string `env:"SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"PORT" envDefault:"5001"`
	Env        string `env:"ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"./static/uploads"`

	// Outbound inquiry email (Resend).
	ResendAPIKey     string `env:"RESEND_API_KEY"`
	ContactToEmail   string `env:"CONTACT_TO_EMAIL"`
	ContactFromEmail string `env:"CONTACT_FROM_EMAIL" envDefault:"onboarding@resend.dev"`
	ContactCCEmail   string `env:"CONTACT_CC_EMAIL"`

	DoSeed bool `env:"DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true when running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the listen address in host:port form.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UsePostgres returns true when a Postgres connection string is configured.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// DatabaseDSN returns the normalized Postgres DSN: the legacy postgres://
// scheme prefix becomes postgresql://, and sslmode is appended from
// PGSSLMODE when the URL does not already carry one. Hosted Postgres
// providers commonly require SSL.
func (c Config) DatabaseDSN() string {
	dsn := c.DatabaseURL
	if strings.HasPrefix(dsn, "postgres://") {
		dsn = "postgresql://" + strings.TrimPrefix(dsn, "postgres://")
	}
	if c.PGSSLMode != "" && !strings.Contains(dsn, "sslmode=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "sslmode=" + c.PGSSLMode
	}
	return dsn
}

// DatabaseHost returns the host portion of the configured database for
// diagnostics, never including credentials. SQLite reports "sqlite".
func (c Config) DatabaseHost() string {
	if !c.UsePostgres() {
		return "sqlite"
	}
	u, err := url.Parse(c.DatabaseDSN())
	if err != nil {
		return "unknown"
	}
	return u.Host
}

// MailEnabled returns true when the Resend credentials needed to deliver
// inquiry notifications are present.
func (c Config) MailEnabled() bool {
	return c.ResendAPIKey != "" && c.ContactToEmail != ""
}

// Load parses environment variables and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d bytes long, got %d; "+
			"generate one with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	return cfg, nil
}
