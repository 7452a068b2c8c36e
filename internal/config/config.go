// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Node describes one audio backend the bot may attach players to.
type Node struct {
	Name     string
	Address  string
	Password string
	Secure   bool
}

// Config is the full runtime configuration.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	OwnerID      string `env:"OWNER_ID"`

	// DJRoles maps guild ID to the role whose holders may bypass skip
	// votes, e.g. "guild1:role1,guild2:role2".
	DJRoles map[string]string `env:"DJ_ROLES"`

	LavalinkName     string `env:"LAVALINK_NAME" envDefault:"main"`
	LavalinkAddress  string `env:"LAVALINK_ADDRESS" envDefault:"127.0.0.1:2333"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD" envDefault:"youshallnotpass"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE" envDefault:"false"`

	VoteTimeout     time.Duration `env:"VOTE_TIMEOUT" envDefault:"30s"`
	ResolveAttempts int           `env:"RESOLVE_ATTEMPTS" envDefault:"10"`

	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile    string `env:"LOG_FILE"`
	LogConsole bool   `env:"LOG_CONSOLE" envDefault:"true"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.ResolveAttempts < 1 {
		cfg.ResolveAttempts = 1
	}
	return cfg, nil
}

// Nodes returns the configured audio backends.
func (c *Config) Nodes() []Node {
	return []Node{{
		Name:     c.LavalinkName,
		Address:  c.LavalinkAddress,
		Password: c.LavalinkPassword,
		Secure:   c.LavalinkSecure,
	}}
}
