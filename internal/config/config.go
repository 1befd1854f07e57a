package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all runtime settings, populated from environment variables.
type Config struct {
	Port          string        `env:"SKYLARK_PORT" envDefault:"8080"`
	BaseURL       string        `env:"SKYLARK_BASE_URL" envDefault:"http://localhost:8080"`
	DBPath        string        `env:"SKYLARK_DB_PATH" envDefault:"skylark.db"`
	BackendURL    string        `env:"SKYLARK_BACKEND_URL" envDefault:"https://api.skylarktravels.example/api"`
	SessionSecret string        `env:"SKYLARK_SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SKYLARK_SESSION_TTL" envDefault:"720h"`
	DraftTTL      time.Duration `env:"SKYLARK_DRAFT_TTL" envDefault:"2h"`
	LogLevel      string        `env:"SKYLARK_LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
