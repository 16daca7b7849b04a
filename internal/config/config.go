// Package config содержит логику чтения конфигурации панели управления счетами.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации панели управления счетами.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	PostgresURL   string `env:"POSTGRES_URL"`
	SessionSecret string `env:"SESSION_SECRET"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envPostgresURL := cfg.PostgresURL
	envSessionSecret := cfg.SessionSecret

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.PostgresURL, "d", "", "PostgreSQL connection string")
	flag.StringVar(&cfg.SessionSecret, "s", "", "secret key for session cookie signing")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envPostgresURL != "" {
		cfg.PostgresURL = envPostgresURL
	}
	if envSessionSecret != "" {
		cfg.SessionSecret = envSessionSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("postgres connection string is required")
	}

	return cfg, nil
}
