package main

import (
	"fmt"
	"os"

	"github.com/poiesic/secondbrain"
	"github.com/poiesic/secondbrain/ai"
	"github.com/urfave/cli/v2"
)

// loadConfig is readConfig followed by validation.
func loadConfig(c *cli.Context, getenv func(string) string) (*ai.Config, error) {
	cfg, err := readConfig(c, getenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

// readConfig reads --config when given, fills missing API keys from the
// environment and applies the global flag overrides.
func readConfig(c *cli.Context, getenv func(string) string) (*ai.Config, error) {
	cfg := ai.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := ai.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(getenv)

	if name := c.String("cost"); name != "" {
		pref, err := ai.ParseCostPreference(name)
		if err != nil {
			return nil, err
		}
		cfg.CostPreference = pref
	}
	cfg.Normalize()
	return cfg, nil
}

// openBrain opens the store named by --db, or an in-memory one when the
// command has no --db flag.
func openBrain(c *cli.Context) (*secondbrain.Brain, error) {
	cfg, err := loadConfig(c, os.Getenv)
	if err != nil {
		return nil, err
	}

	opts := []secondbrain.Option{secondbrain.WithAIConfig(cfg)}
	dbPath := c.String("db")
	if dbPath == "" {
		opts = append(opts, secondbrain.InMemory())
	}

	brain, err := secondbrain.Open(dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return brain, nil
}
