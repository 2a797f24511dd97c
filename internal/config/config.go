// Package config loads runtime settings for the storekeeper server.
//
// Values are layered, later sources winning:
//
//   - built-in defaults (Default)
//   - an optional YAML file named by --config or STOREKEEPER_CONFIG, whose
//     development/production sections override the base values for the
//     matching environment
//   - environment variables (DATABASE_URL, SESSION_SECRET, ...)
//   - command-line flags
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// SessionTTL is the lifetime of an issued session token.
const SessionTTL = 30 * 24 * time.Hour

type ServerConfig struct {
	Port string `yaml:"port"`
	// PublicURL is the externally visible base URL, used for OAuth redirects.
	PublicURL   string   `yaml:"public_url"`
	CORSOrigins []string `yaml:"cors_origins"`
	// TrustProxy honours X-Forwarded-For when set behind a reverse proxy.
	TrustProxy bool `yaml:"trust_proxy"`
}

type DatabaseConfig struct {
	URL         string        `yaml:"url"`
	MaxOpen     int           `yaml:"max_open"`
	MaxIdle     int           `yaml:"max_idle"`
	MaxLifetime time.Duration `yaml:"max_lifetime"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	TTL        time.Duration `yaml:"ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Environment Environment    `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Session     SessionConfig  `yaml:"session"`
	Google      GoogleConfig   `yaml:"google"`
	Log         LogConfig      `yaml:"log"`
}

// fileConfig is the on-disk shape: the base Config plus optional
// per-environment sections decoded on top of it.
type fileConfig struct {
	Config      `yaml:",inline"`
	Development yaml.Node `yaml:"development"`
	Production  yaml.Node `yaml:"production"`
}

// Default returns the development defaults every other source is merged into.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Port:      "4000",
			PublicURL: "http://localhost:4000",
		},
		Database: DatabaseConfig{
			MaxOpen:     25,
			MaxIdle:     25,
			MaxLifetime: 300 * time.Second,
		},
		Session: SessionConfig{
			TTL:        SessionTTL,
			BcryptCost: 10,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, the optional YAML file, the process
// environment and args (typically os.Args[1:]).
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("storekeeper", pflag.ContinueOnError)

	configPath := fs.String("config", "", "path to a YAML config file")
	env := fs.String("env", "", "deployment environment (development|production)")
	port := fs.String("port", "", "HTTP listen port")
	databaseURL := fs.String("database-url", "", "PostgreSQL connection string")
	sessionSecret := fs.String("session-secret", "", "HMAC secret for session tokens")
	logLevel := fs.String("log-level", "", "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	cfg := Default()

	path := *configPath
	if path == "" {
		path = os.Getenv("STOREKEEPER_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if fs.Changed("env") {
		cfg.Environment = Environment(*env)
	}
	if fs.Changed("port") {
		cfg.Server.Port = *port
	}
	if fs.Changed("database-url") {
		cfg.Database.URL = *databaseURL
	}
	if fs.Changed("session-secret") {
		cfg.Session.Secret = *sessionSecret
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}

	return cfg, nil
}

// loadFile merges the YAML file at path into c, then decodes the section
// matching the resulting environment on top.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := fileConfig{Config: *c}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}
	*c = fc.Config

	var section *yaml.Node
	switch c.Environment {
	case Development:
		section = &fc.Development
	case Production:
		section = &fc.Production
	}
	if section != nil && section.Kind != 0 {
		if err := section.Decode(c); err != nil {
			return fmt.Errorf("%s section: %w", c.Environment, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = Environment(v)
	}
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.PublicURL, "PUBLIC_URL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRUST_PROXY: %w", err)
		}
		c.Server.TrustProxy = b
	}

	setString(&c.Database.URL, "DATABASE_URL")
	if err := setInt(&c.Database.MaxOpen, "DB_MAX_OPEN"); err != nil {
		return err
	}
	if err := setInt(&c.Database.MaxIdle, "DB_MAX_IDLE"); err != nil {
		return err
	}
	// seconds
	var lifetime int
	if err := setInt(&lifetime, "DB_MAX_LIFETIME"); err != nil {
		return err
	}
	if lifetime > 0 {
		c.Database.MaxLifetime = time.Duration(lifetime) * time.Second
	}

	setString(&c.Session.Secret, "SESSION_SECRET")
	if err := setInt(&c.Session.BcryptCost, "BCRYPT_COST"); err != nil {
		return err
	}

	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")
	return nil
}

// Validate checks the configuration for errors. A missing session secret is
// fatal: no token can be issued or verified without it.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.BcryptCost < bcrypt.MinCost || c.Session.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Session.BcryptCost))
	}
	if (c.Google.ClientID == "") != (c.Google.ClientSecret == "") {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// GoogleEnabled reports whether the optional Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
