package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"controle-financeiro-semanal"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Storage struct {
		// Backend selects the persistence layer: "postgres" or "memory".
		Backend string `envconfig:"STORAGE_BACKEND" default:"postgres"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"controle_financeiro"`
	}

	Schedule struct {
		CheckInterval time.Duration `envconfig:"SCHEDULE_CHECK_INTERVAL" default:"60s"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Storage.Backend != "postgres" && cfg.Storage.Backend != "memory" {
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}

	return &cfg, nil
}
