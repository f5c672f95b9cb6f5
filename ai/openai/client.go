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


package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/prompt"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Default chat models handed to langchaingo. Every request overrides the
// model, so these only matter for requests that leave Model empty.
const (
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultDeepSeekModel   = "deepseek-chat"
	defaultOpenRouterModel = "openrouter/auto"
)

// Client implements ai.Client and ai.ImageReader for one OpenAI-compatible vendor.
type Client struct {
	provider ai.Provider
	model    string
	baseURL  string
	apiKey   string
	llm      llms.Model
	doer     *statusDoer
	logger   *slog.Logger
}

// AudioClient adds Whisper transcription to Client. Only OpenAI serves it.
type AudioClient struct {
	*Client
}

var (
	_ ai.Client      = (*Client)(nil)
	_ ai.ImageReader = (*Client)(nil)
	_ ai.Transcriber = (*AudioClient)(nil)
)

// Option customizes a client.
type Option func(*Client) error

// WithHTTPClient replaces the underlying HTTP client. The timeout from
// ai.Config is not applied to a caller-supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("openai: nil http client")
		}
		c.doer.client = hc
		return nil
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("openai: nil logger")
		}
		c.logger = logger.With("component", "openai-client", "provider", c.provider.String())
		return nil
	}
}

// New creates an OpenAI client with chat, vision and transcription support.
func New(cfg *ai.Config, opts ...Option) (ai.Client, error) {
	c, err := newClient(ai.ProviderOpenAI, cfg, defaultOpenAIModel, nil, opts)
	if err != nil {
		return nil, err
	}
	return &AudioClient{Client: c}, nil
}

// NewDeepSeek creates a DeepSeek client.
func NewDeepSeek(cfg *ai.Config, opts ...Option) (ai.Client, error) {
	return newClient(ai.ProviderDeepSeek, cfg, defaultDeepSeekModel, nil, opts)
}

// NewOpenRouter creates an OpenRouter client. The configured referer and
// title are sent as OpenRouter attribution headers on every request.
func NewOpenRouter(cfg *ai.Config, opts ...Option) (ai.Client, error) {
	if cfg == nil {
		return nil, ai.NewError(ai.KindConfiguration, ai.ProviderOpenRouter, "nil config", nil)
	}
	headers := map[string]string{}
	if cfg.OpenRouterReferer != "" {
		headers["HTTP-Referer"] = cfg.OpenRouterReferer
	}
	if cfg.OpenRouterTitle != "" {
		headers["X-Title"] = cfg.OpenRouterTitle
	}
	return newClient(ai.ProviderOpenRouter, cfg, defaultOpenRouterModel, headers, opts)
}

func newClient(provider ai.Provider, cfg *ai.Config, model string, headers map[string]string, opts []Option) (*Client, error) {
	if cfg == nil {
		return nil, ai.NewError(ai.KindConfiguration, provider, "nil config", nil)
	}
	cfg.Normalize()
	pc, ok := cfg.Provider(provider)
	if !ok {
		return nil, ai.NewError(ai.KindConfiguration, provider, "missing API key", ai.ErrProviderNotConfigured)
	}

	c := &Client{
		provider: provider,
		model:    model,
		baseURL:  pc.BaseURL,
		apiKey:   pc.APIKey,
		doer: &statusDoer{
			client:   &http.Client{Timeout: cfg.HTTPTimeout},
			provider: provider,
			headers:  headers,
		},
		logger: slog.Default().With("component", "openai-client", "provider", provider.String()),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	llm, err := openai.New(
		openai.WithBaseURL(pc.BaseURL),
		openai.WithToken(pc.APIKey),
		openai.WithModel(model),
		openai.WithHTTPClient(c.doer),
	)
	if err != nil {
		return nil, ai.NewError(ai.KindConfiguration, provider, "creating langchaingo client", err)
	}
	c.llm = llm
	return c, nil
}

// Provider returns the vendor this client talks to.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// Complete sends a chat completion.
func (c *Client) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	model := c.modelFor(req)
	formatted := prompt.Format(c.provider, req.SystemPrompt, req.UserPrompt, model)
	return c.generate(ctx, req, toMessageContent(formatted.Messages, nil))
}

// ReadImage sends the user prompt together with img as a data URL.
func (c *Client) ReadImage(ctx context.Context, req ai.CompletionRequest, img ai.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", ai.NewError(ai.KindInvalidRequest, c.provider, "empty image", nil)
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	model := c.modelFor(req)
	formatted := prompt.Format(c.provider, req.SystemPrompt, req.UserPrompt, model)
	return c.generate(ctx, req, toMessageContent(formatted.Messages, llms.ImageURLPart(dataURL)))
}

func (c *Client) modelFor(req ai.CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

func (c *Client) generate(ctx context.Context, req ai.CompletionRequest, content []llms.MessageContent) (string, error) {
	callOpts := []llms.CallOption{
		llms.WithModel(c.modelFor(req)),
		llms.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}

	c.logger.Debug("sending chat completion", "model", c.modelFor(req), "messages", len(content))
	resp, err := c.llm.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", c.classify(ctx, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ai.NewError(ai.KindServer, c.provider, "no choices in response", ai.ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ai.NewError(ai.KindServer, c.provider, "empty completion", ai.ErrEmptyResponse)
	}
	return text, nil
}

var statusPattern = regexp.MustCompile(`(?:status code:|http) (\d{3})`)

// classify maps errors surfacing from langchaingo onto the ai taxonomy.
// Status failures normally arrive pre-classified from statusDoer; the
// message pattern covers paths that bypass it.
func (c *Client) classify(ctx context.Context, err error) error {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		return aiErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		status, _ := strconv.Atoi(m[1])
		return ai.ErrorFromStatus(c.provider, status, err.Error(), nil, "")
	}
	if errors.Is(err, openai.ErrEmptyResponse) {
		return ai.NewError(ai.KindServer, c.provider, "empty response", ai.ErrEmptyResponse)
	}
	if ai.KindOf(err) == ai.KindNetwork {
		return ai.NewError(ai.KindNetwork, c.provider, "", err)
	}
	return ai.NewError(ai.KindUnknown, c.provider, fmt.Sprintf("chat completion failed: %v", err), err)
}

func toMessageContent(msgs []prompt.Message, image llms.ContentPart) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	lastUser := -1
	for _, m := range msgs {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case prompt.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case prompt.RoleModel:
			role = llms.ChatMessageTypeAI
		default:
			lastUser = len(out)
		}
		out = append(out, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		})
	}
	if image != nil && lastUser >= 0 {
		out[lastUser].Parts = append(out[lastUser].Parts, image)
	}
	return out
}
