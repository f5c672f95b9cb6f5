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


// Package anthropic implements ai.Client against the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/prompt"
)

// APIVersion is sent in the anthropic-version header.
const APIVersion = "2023-06-01"

// defaultMaxTokens is used when a request leaves MaxTokens unset; the
// Messages API requires the field.
const defaultMaxTokens = 1024

// Client talks to the Messages endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

var (
	_ ai.Client      = (*Client)(nil)
	_ ai.ImageReader = (*Client)(nil)
)

// Option customizes a Client.
type Option func(*Client) error

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("anthropic: nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("anthropic: nil logger")
		}
		c.logger = logger.With("component", "anthropic-client")
		return nil
	}
}

// New creates a Claude client from the Anthropic section of cfg.
func New(cfg *ai.Config, opts ...Option) (ai.Client, error) {
	if cfg == nil {
		return nil, ai.NewError(ai.KindConfiguration, ai.ProviderAnthropic, "nil config", nil)
	}
	cfg.Normalize()
	pc, ok := cfg.Provider(ai.ProviderAnthropic)
	if !ok {
		return nil, ai.NewError(ai.KindConfiguration, ai.ProviderAnthropic, "missing API key", ai.ErrProviderNotConfigured)
	}

	c := &Client{
		baseURL: pc.BaseURL,
		apiKey:  pc.APIKey,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:  slog.Default().With("component", "anthropic-client"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Provider returns ai.ProviderAnthropic.
func (c *Client) Provider() ai.Provider {
	return ai.ProviderAnthropic
}

// Complete sends one Messages request and concatenates the text blocks of the reply.
func (c *Client) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	return c.send(ctx, req, nil)
}

// ReadImage attaches img as a base64 image block ahead of the user prompt.
func (c *Client) ReadImage(ctx context.Context, req ai.CompletionRequest, img ai.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", ai.NewError(ai.KindInvalidRequest, ai.ProviderAnthropic, "empty image", nil)
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return c.send(ctx, req, &contentBlock{
		Type: "image",
		Source: &imageSource{
			Type:      "base64",
			MediaType: mime,
			Data:      base64.StdEncoding.EncodeToString(img.Data),
		},
	})
}

func (c *Client) send(ctx context.Context, req ai.CompletionRequest, image *contentBlock) (string, error) {
	formatted := prompt.Format(ai.ProviderAnthropic, req.SystemPrompt, req.UserPrompt, req.Model)

	body := messagesRequest{
		Model:       req.Model,
		System:      formatted.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = defaultMaxTokens
	}
	for _, m := range formatted.Messages {
		var blocks []contentBlock
		if image != nil {
			blocks = append(blocks, *image)
		}
		blocks = append(blocks, contentBlock{Type: "text", Text: m.Content})
		body.Messages = append(body.Messages, message{Role: m.Role, Content: blocks})
	}

	header := http.Header{}
	header.Set("x-api-key", c.apiKey)
	header.Set("anthropic-version", APIVersion)

	c.logger.Debug("sending messages request", "model", req.Model, "image", image != nil)
	var resp messagesResponse
	if err := ai.PostJSON(ctx, c.http, ai.ProviderAnthropic, c.baseURL+"/messages", header, body, &resp); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ai.NewError(ai.KindServer, ai.ProviderAnthropic, "no text content", ai.ErrEmptyResponse)
	}
	return text, nil
}
