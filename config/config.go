// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const DefaultDatabaseURL = "mongodb://127.0.0.1:27017"

type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"mongodb://127.0.0.1:27017"`
	DatabaseName   string        `env:"DATABASE_NAME" envDefault:"community"`
	Port           string        `env:"PORT" envDefault:"8000"`
	GinMode        string        `env:"GIN_MODE" envDefault:"debug"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"15s"`
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.ConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("CONNECT_TIMEOUT must be positive, got %s", cfg.ConnectTimeout)
	}
	return cfg, nil
}

// DatabaseURLSet reports whether DATABASE_URL was given explicitly.
func DatabaseURLSet() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// Release reports whether gin should run in release mode.
func (c Config) Release() bool {
	return c.GinMode == "release"
}

func (c Config) Addr() string {
	return ":" + c.Port
}
