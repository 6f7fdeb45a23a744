// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"

	RollAuto   = "auto"
	RollManual = "manual"
)

type Config struct {
	Addr         string        `env:"TASKVENTURE_ADDR" envDefault:":8080"`
	Store        string        `env:"TASKVENTURE_STORE" envDefault:"memory"`
	SQLitePath   string        `env:"TASKVENTURE_SQLITE_PATH" envDefault:"taskventure.db"`
	CatalogPath  string        `env:"TASKVENTURE_CATALOG_PATH"`
	SceneryDir   string        `env:"TASKVENTURE_SCENERY_DIR"`
	DisplayDelay time.Duration `env:"TASKVENTURE_DISPLAY_DELAY" envDefault:"1500ms"`
	// Seed fixes the dice for reproducible sessions; 0 draws a random seed.
	Seed     int64  `env:"TASKVENTURE_SEED" envDefault:"0"`
	RollMode string `env:"TASKVENTURE_ROLL_MODE" envDefault:"auto"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("TASKVENTURE_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store)
	}
	switch c.RollMode {
	case RollAuto, RollManual:
	default:
		return fmt.Errorf("TASKVENTURE_ROLL_MODE must be %q or %q, got %q", RollAuto, RollManual, c.RollMode)
	}
	if c.DisplayDelay < 0 {
		return fmt.Errorf("TASKVENTURE_DISPLAY_DELAY must not be negative")
	}
	return nil
}
