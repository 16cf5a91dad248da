package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// ServerName prefixes every broadcast topic, so clients can tell
	// multiple coordinators on one broker apart.
	ServerName string `env:"SERVER_NAME" envDefault:"battlegrid"`
	Addr       string `env:"ADDR" envDefault:":8080"`

	// DatabaseURL enables the match-history recorder when set.
	DatabaseURL string `env:"DATABASE_URL"`

	TurnTimeout time.Duration `env:"TURN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
