package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=trackii port=5432 sslmode=disable"

type Config struct {
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"` // postgres | sqlite
	DatabaseDSN    string `env:"DATABASE_DSN" envDefault:"host=localhost user=postgres password=postgres dbname=trackii port=5432 sslmode=disable"`
	JWTSecret      string `env:"JWT_SECRET"`
	CORSOrigins    string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"json"` // json | console

	// Lets a scanner outside the route's first location open a new work order.
	AllowRemoteOrderCreation bool `env:"TRACKII_ALLOW_REMOTE_ORDER_CREATION" envDefault:"false"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

// UsesDefaultDSN is true when DATABASE_DSN was left at the local default.
func (c *Config) UsesDefaultDSN() bool {
	return c.DatabaseDriver == "postgres" && c.DatabaseDSN == defaultDSN
}

func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
