package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OAuthClient holds the credentials of a single OAuth provider
type OAuthClient struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string `yaml:"port" env:"SERVER_PORT"`
		Mode           string `yaml:"mode" env:"SERVER_MODE"`
		RequestTimeout string `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT"`
		AllowedOrigins string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret" env:"JWT_SECRET"`
		Expiration string `yaml:"expiration" env:"JWT_EXPIRATION"`
		Issuer     string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	OAuth struct {
		Google struct {
			ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
			ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
			RedirectURL  string `yaml:"redirect_url" env:"GOOGLE_REDIRECT_URL"`
		} `yaml:"google"`
		LinkedIn struct {
			ClientID     string `yaml:"client_id" env:"LINKEDIN_CLIENT_ID"`
			ClientSecret string `yaml:"client_secret" env:"LINKEDIN_CLIENT_SECRET"`
			RedirectURL  string `yaml:"redirect_url" env:"LINKEDIN_REDIRECT_URL"`
		} `yaml:"linkedin"`
	} `yaml:"oauth"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
		BaseURL   string `yaml:"base_url" env:"APP_BASE_URL"`
		Timeout   string `yaml:"timeout" env:"SMTP_TIMEOUT"`
	} `yaml:"smtp"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
	} `yaml:"seed"`

	RateLimit struct {
		AuthMaxAttempts  int    `yaml:"auth_max_attempts" env:"RATE_LIMIT_AUTH_MAX_ATTEMPTS"`
		AuthWindow       string `yaml:"auth_window" env:"RATE_LIMIT_AUTH_WINDOW"`
		LoginMaxFailures int    `yaml:"login_max_failures" env:"RATE_LIMIT_LOGIN_MAX_FAILURES"`
	} `yaml:"rate_limit"`

	// EnvOverrides lists the environment variables that replaced file values
	EnvOverrides []string `yaml:"-"`
}

// LoadConfig layers defaults, the YAML file at configPath (optional), a .env
// file (optional) and finally the process environment.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	raw, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	applied, err := overlayEnv(reflect.ValueOf(config))
	if err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	config.EnvOverrides = applied

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.RequestTimeout = "30s"
	config.Server.AllowedOrigins = "http://localhost:3000"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "jobboard"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	// Tokens are valid for seven days
	config.JWT.Expiration = "168h"
	config.JWT.Issuer = "jobboard.api"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.Addr = "localhost:6379"

	config.SMTP.Port = 587
	config.SMTP.FromName = "Job Board"
	config.SMTP.BaseURL = "http://localhost:3000"
	config.SMTP.Timeout = "10s"

	config.Seed.AdminEmail = "admin@jobboard.local"
	config.Seed.AdminName = "System Administrator"

	config.RateLimit.AuthMaxAttempts = 10
	config.RateLimit.AuthWindow = "1m"
	config.RateLimit.LoginMaxFailures = 5
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	var errs []error
	if config.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if config.Database.MaxOpenConns < 1 {
		errs = append(errs, errors.New("database.max_open_conns must be at least 1"))
	}
	if config.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required (JWT_SECRET)"))
	}
	if config.RateLimit.AuthMaxAttempts < 1 {
		errs = append(errs, errors.New("rate_limit.auth_max_attempts must be at least 1"))
	}
	if config.RateLimit.LoginMaxFailures < 1 {
		errs = append(errs, errors.New("rate_limit.login_max_failures must be at least 1"))
	}

	for _, d := range []struct{ name, value string }{
		{"jwt.expiration", config.JWT.Expiration},
		{"database.conn_max_lifetime", config.Database.ConnMaxLifetime},
		{"server.request_timeout", config.Server.RequestTimeout},
		{"rate_limit.auth_window", config.RateLimit.AuthWindow},
		{"smtp.timeout", config.SMTP.Timeout},
	} {
		if v, err := time.ParseDuration(d.value); err != nil || v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive duration, got %q", d.name, d.value))
		}
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// Origins splits the comma separated allowed origins list
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.Server.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// GoogleClient returns the Google OAuth client settings
func (c *Config) GoogleClient() OAuthClient {
	g := c.OAuth.Google
	return OAuthClient{ClientID: g.ClientID, ClientSecret: g.ClientSecret, RedirectURL: g.RedirectURL}
}

// LinkedInClient returns the LinkedIn OAuth client settings
func (c *Config) LinkedInClient() OAuthClient {
	l := c.OAuth.LinkedIn
	return OAuthClient{ClientID: l.ClientID, ClientSecret: l.ClientSecret, RedirectURL: l.RedirectURL}
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
