package service

import (
	"log/slog"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/anthropic"
	"github.com/poiesic/secondbrain/ai/gemini"
	"github.com/poiesic/secondbrain/ai/openai"
)

type clientConstructor func(cfg *ai.Config, logger *slog.Logger) (ai.Client, error)

// constructors maps each vendor to its client. Adding a vendor means adding
// a Provider value, a catalog entry and a line here.
var constructors = map[ai.Provider]clientConstructor{
	ai.ProviderOpenAI: func(cfg *ai.Config, logger *slog.Logger) (ai.Client, error) {
		return openai.New(cfg, openai.WithLogger(logger))
	},
	ai.ProviderDeepSeek: func(cfg *ai.Config, logger *slog.Logger) (ai.Client, error) {
		return openai.NewDeepSeek(cfg, openai.WithLogger(logger))
	},
	ai.ProviderOpenRouter: func(cfg *ai.Config, logger *slog.Logger) (ai.Client, error) {
		return openai.NewOpenRouter(cfg, openai.WithLogger(logger))
	},
	ai.ProviderAnthropic: func(cfg *ai.Config, logger *slog.Logger) (ai.Client, error) {
		return anthropic.New(cfg, anthropic.WithLogger(logger))
	},
	ai.ProviderGoogle: func(cfg *ai.Config, logger *slog.Logger) (ai.Client, error) {
		return gemini.New(cfg, gemini.WithLogger(logger))
	},
}

// NewClients builds one client per provider that has credentials in cfg.
// A config with no credentials yields a configuration error wrapping
// ai.ErrProviderNotConfigured.
func NewClients(cfg *ai.Config, logger *slog.Logger) ([]ai.Client, error) {
	if cfg == nil {
		return nil, ai.NewError(ai.KindConfiguration, 0, "nil config", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Normalize()

	var clients []ai.Client
	for _, p := range cfg.ConfiguredProviders() {
		build, ok := constructors[p]
		if !ok {
			continue
		}
		c, err := build(cfg, logger)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if len(clients) == 0 {
		return nil, ai.NewError(ai.KindConfiguration, 0, "no API keys configured", ai.ErrProviderNotConfigured)
	}
	return clients, nil
}
