// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default provider endpoints.
const (
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultAnthropicBaseURL  = "https://api.anthropic.com/v1"
	DefaultGeminiBaseURL     = "https://generativelanguage.googleapis.com"
	DefaultDeepSeekBaseURL   = "https://api.deepseek.com/v1"
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// ProviderConfig holds the credentials and endpoint for one vendor.
// A provider with an empty APIKey is treated as not configured.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// RetryConfig parameterizes the exponential backoff used around provider calls.
type RetryConfig struct {
	// Times is the retry budget; a call is attempted at most Times+1 times.
	Times int

	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
}

// Config holds configuration for AI service providers.
type Config struct {
	OpenAI     ProviderConfig
	Anthropic  ProviderConfig
	Gemini     ProviderConfig
	DeepSeek   ProviderConfig
	OpenRouter ProviderConfig

	// CostPreference is used when a request does not name a model.
	CostPreference CostPreference

	Retry RetryConfig

	// HTTPTimeout bounds each individual provider request.
	HTTPTimeout time.Duration

	// OpenRouterReferer and OpenRouterTitle are sent as HTTP-Referer and X-Title.
	OpenRouterReferer string
	OpenRouterTitle   string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAPIKey sets the API key for provider p.
func WithAPIKey(p Provider, key string) ConfigOption {
	return func(c *Config) {
		if pc := c.providerConfig(p); pc != nil {
			pc.APIKey = key
		}
	}
}

// WithBaseURL overrides the endpoint for provider p.
func WithBaseURL(p Provider, url string) ConfigOption {
	return func(c *Config) {
		if pc := c.providerConfig(p); pc != nil {
			pc.BaseURL = url
		}
	}
}

// WithCostPreference sets the default cost preference.
func WithCostPreference(pref CostPreference) ConfigOption {
	return func(c *Config) {
		c.CostPreference = pref
	}
}

// WithRetry sets the retry policy values.
func WithRetry(times int, initialDelay, maxDelay time.Duration, factor float64) ConfigOption {
	return func(c *Config) {
		c.Retry = RetryConfig{Times: times, InitialDelay: initialDelay, MaxDelay: maxDelay, Factor: factor}
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.HTTPTimeout = d
	}
}

// WithOpenRouterAttribution sets the attribution headers OpenRouter asks callers to send.
func WithOpenRouterAttribution(referer, title string) ConfigOption {
	return func(c *Config) {
		c.OpenRouterReferer = referer
		c.OpenRouterTitle = title
	}
}

// DefaultConfig returns a Config with public vendor endpoints and no credentials.
func DefaultConfig() *Config {
	return &Config{
		OpenAI:         ProviderConfig{BaseURL: DefaultOpenAIBaseURL},
		Anthropic:      ProviderConfig{BaseURL: DefaultAnthropicBaseURL},
		Gemini:         ProviderConfig{BaseURL: DefaultGeminiBaseURL},
		DeepSeek:       ProviderConfig{BaseURL: DefaultDeepSeekBaseURL},
		OpenRouter:     ProviderConfig{BaseURL: DefaultOpenRouterBaseURL},
		CostPreference: PreferBalanced,
		Retry: RetryConfig{
			Times:        3,
			InitialDelay: time.Second,
			MaxDelay:     20 * time.Second,
			Factor:       2.0,
		},
		HTTPTimeout:     60 * time.Second,
		OpenRouterTitle: "Second Brain",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(ProviderOpenAI, os.Getenv("OPENAI_API_KEY")),
//	    WithCostPreference(PreferFree),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *Config) providerConfig(p Provider) *ProviderConfig {
	switch p {
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderGoogle:
		return &c.Gemini
	case ProviderDeepSeek:
		return &c.DeepSeek
	case ProviderOpenRouter:
		return &c.OpenRouter
	default:
		return nil
	}
}

// Provider returns the settings for p and whether p has credentials.
func (c *Config) Provider(p Provider) (ProviderConfig, bool) {
	pc := c.providerConfig(p)
	if pc == nil {
		return ProviderConfig{}, false
	}
	return *pc, pc.APIKey != ""
}

// ConfiguredProviders lists providers with credentials, in Provider order.
func (c *Config) ConfiguredProviders() []Provider {
	var out []Provider
	for p := ProviderOpenAI; p < ProviderOther; p++ {
		if _, ok := c.Provider(p); ok {
			out = append(out, p)
		}
	}
	return out
}

// Normalize trims credentials, restores empty endpoints to their defaults and
// strips trailing slashes so endpoint paths can be appended.
func (c *Config) Normalize() {
	defaults := DefaultConfig()
	for p := ProviderOpenAI; p < ProviderOther; p++ {
		pc := c.providerConfig(p)
		pc.APIKey = strings.TrimSpace(pc.APIKey)
		pc.BaseURL = strings.TrimRight(strings.TrimSpace(pc.BaseURL), "/")
		if pc.BaseURL == "" {
			pc.BaseURL = defaults.providerConfig(p).BaseURL
		}
	}
	if c.CostPreference == 0 {
		c.CostPreference = PreferBalanced
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if len(c.ConfiguredProviders()) == 0 {
		return errors.New("ai config: at least one provider API key is required")
	}
	if c.Retry.Times < 0 {
		return errors.New("ai config: Retry.Times cannot be negative")
	}
	if c.Retry.InitialDelay < 0 || c.Retry.MaxDelay < c.Retry.InitialDelay {
		return errors.New("ai config: Retry delays must satisfy 0 <= InitialDelay <= MaxDelay")
	}
	if c.Retry.Factor < 1 {
		return errors.New("ai config: Retry.Factor must be at least 1")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("ai config: HTTPTimeout must be positive")
	}
	return nil
}

// envKeys maps providers to the environment variables holding their API keys.
var envKeys = map[Provider]string{
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderAnthropic:  "ANTHROPIC_API_KEY",
	ProviderGoogle:     "GEMINI_API_KEY",
	ProviderDeepSeek:   "DEEPSEEK_API_KEY",
	ProviderOpenRouter: "OPENROUTER_API_KEY",
}

// ApplyEnv fills API keys from the environment. Values already set win.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	for p, name := range envKeys {
		pc := c.providerConfig(p)
		if pc.APIKey == "" {
			pc.APIKey = getenv(name)
		}
	}
}

type fileProvider struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type fileConfig struct {
	CostPreference string `toml:"cost_preference"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retry          struct {
		Times          int     `toml:"times"`
		InitialDelayMS int     `toml:"initial_delay_ms"`
		MaxDelayMS     int     `toml:"max_delay_ms"`
		Factor         float64 `toml:"factor"`
	} `toml:"retry"`
	OpenRouterReferer string       `toml:"openrouter_referer"`
	OpenRouterTitle   string       `toml:"openrouter_title"`
	OpenAI            fileProvider `toml:"openai"`
	Anthropic         fileProvider `toml:"anthropic"`
	Gemini            fileProvider `toml:"gemini"`
	DeepSeek          fileProvider `toml:"deepseek"`
	OpenRouter        fileProvider `toml:"openrouter"`
}

// LoadConfigFile reads a TOML configuration on top of DefaultConfig.
// Keys absent from the file keep their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ai config: read %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML configuration bytes on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("ai config: %w", err)
	}

	cfg := DefaultConfig()
	if fc.CostPreference != "" {
		pref, err := ParseCostPreference(fc.CostPreference)
		if err != nil {
			return nil, err
		}
		cfg.CostPreference = pref
	}
	if fc.TimeoutSeconds > 0 {
		cfg.HTTPTimeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if fc.Retry.Times > 0 {
		cfg.Retry.Times = fc.Retry.Times
	}
	if fc.Retry.InitialDelayMS > 0 {
		cfg.Retry.InitialDelay = time.Duration(fc.Retry.InitialDelayMS) * time.Millisecond
	}
	if fc.Retry.MaxDelayMS > 0 {
		cfg.Retry.MaxDelay = time.Duration(fc.Retry.MaxDelayMS) * time.Millisecond
	}
	if fc.Retry.Factor > 0 {
		cfg.Retry.Factor = fc.Retry.Factor
	}
	if fc.OpenRouterReferer != "" {
		cfg.OpenRouterReferer = fc.OpenRouterReferer
	}
	if fc.OpenRouterTitle != "" {
		cfg.OpenRouterTitle = fc.OpenRouterTitle
	}

	for p, fp := range map[Provider]fileProvider{
		ProviderOpenAI:     fc.OpenAI,
		ProviderAnthropic:  fc.Anthropic,
		ProviderGoogle:     fc.Gemini,
		ProviderDeepSeek:   fc.DeepSeek,
		ProviderOpenRouter: fc.OpenRouter,
	} {
		pc := cfg.providerConfig(p)
		if fp.APIKey != "" {
			pc.APIKey = fp.APIKey
		}
		if fp.BaseURL != "" {
			pc.BaseURL = fp.BaseURL
		}
	}

	cfg.Normalize()
	return cfg, nil
}
