// Package config handles configuration for the server component: defaults,
// JSON overlay, environment variables and command-line flags, applied in
// that order so later sources win.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the credkeeper server.
//
// DatabaseDSN, when set, is used as is; otherwise DSN builds one from the
// DB* parts.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR"`
	GRPCAddr string `env:"GRPC_ADDR"`

	DatabaseDSN  string `env:"DATABASE_DSN"`
	DBHost       string `env:"DB_HOST"`
	DBPort       string `env:"DB_PORT"`
	DBUser       string `env:"DB_USER"`
	DBPassword   string `env:"DB_PASSWORD"`
	DBName       string `env:"DB_NAME"`
	DBSSLMode    string `env:"DB_SSLMODE"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS"`

	BcryptCost       int    `env:"BCRYPT_COST"`
	ResetTokenSecret string `env:"RESET_TOKEN_SECRET"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED"`

	LogLevel string `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.GRPCAddr = ":50051"
	c.DBHost = "localhost"
	c.DBPort = "5432"
	c.DBUser = "postgres"
	c.DBPassword = "postgres"
	c.DBName = "credkeeper"
	c.DBSSLMode = "disable"
	c.MaxOpenConns = 10
	c.BcryptCost = bcrypt.DefaultCost
	c.ShutdownTimeout = 10 * time.Second
	c.HealthInterval = 5 * time.Second
	c.MetricsEnabled = true
	c.LogLevel = "info"
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	if c.DBSSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.DBSSLMode}}.Encode()
	}
	return u.String()
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is empty"))
	}
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc address is empty"))
	}
	if c.DatabaseDSN == "" && (c.DBHost == "" || c.DBName == "") {
		errs = append(errs, errors.New("database dsn or host and name are required"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost %d outside [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.MaxOpenConns < 0 {
		errs = append(errs, errors.New("max open connections is negative"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	if c.HealthInterval <= 0 {
		errs = append(errs, errors.New("health interval must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from defaults, then the optional JSON file,
// the environment and finally the command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
