package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	TickInterval   time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	AcceptTimeout  time.Duration `env:"ACCEPT_TIMEOUT" envDefault:"120s"`
	MatchRetention time.Duration `env:"MATCH_RETENTION" envDefault:"0"` // 0 keeps terminal matches forever
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment, with an optional .env
// file for local development.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
