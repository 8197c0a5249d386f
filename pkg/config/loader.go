// Package config parses environment-backed configuration structs.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg using `env` struct tags.
//
//	type Config struct {
//	    HTTPPort      int           `env:"HTTP_PORT" envDefault:"8080"`
//	    JWTSecret     string        `env:"JWT_SECRET"`
//	    SweepInterval time.Duration `env:"VERIFY_SWEEP_INTERVAL" envDefault:"1m"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
