// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"pokemon-battle/battle"
)

type Config struct {
	DataPath    string        `env:"POKEMON_DATA" envDefault:"data/pokemon.csv"`
	StoreFormat string        `env:"POKEMON_STORE"`
	DatabaseURL string        `env:"POKEMON_DATABASE_URL"`
	HTTPAddr    string        `env:"POKEMON_HTTP_ADDR" envDefault:":42069"`
	SSHAddr     string        `env:"POKEMON_SSH_ADDR" envDefault:":2222"`
	SSHHostKey  string        `env:"POKEMON_SSH_HOST_KEY"`
	Lang        string        `env:"POKEMON_LANG" envDefault:"es"`
	Seed        int64         `env:"POKEMON_SEED"`
	Level       int           `env:"POKEMON_LEVEL" envDefault:"50"`
	Power       int           `env:"POKEMON_POWER" envDefault:"80"`
	MaxTurns    int           `env:"POKEMON_MAX_TURNS" envDefault:"10000"`
	StreamDelay time.Duration `env:"POKEMON_STREAM_DELAY" envDefault:"400ms"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Level < 1 || cfg.Power < 1 || cfg.MaxTurns < 1 {
		return Config{}, fmt.Errorf("level, power and max turns must be positive")
	}
	return cfg, nil
}

// Rules builds the battle rules from the configured constants.
func (c Config) Rules() battle.Rules {
	r := battle.DefaultRules()
	r.Level = c.Level
	r.Power = c.Power
	r.MaxTurns = c.MaxTurns
	return r
}

// BattleOptions returns the options shared by every battle started by this process.
// A zero seed leaves each battle with its own random seed.
func (c Config) BattleOptions() []battle.Option {
	opts := []battle.Option{battle.WithRules(c.Rules()), battle.WithLanguage(c.Lang)}
	if c.Seed != 0 {
		opts = append(opts, battle.WithSeed(c.Seed))
	}
	return opts
}
