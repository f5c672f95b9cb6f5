// Package gemini implements ai.Client against the Google Gemini
// generateContent REST endpoint.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/prompt"
)

// Client calls models/{model}:generateContent.
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
			return errors.New("gemini: nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("gemini: nil logger")
		}
		c.logger = logger.With("component", "gemini-client")
		return nil
	}
}

// New creates a Gemini client from the Gemini section of cfg.
func New(cfg *ai.Config, opts ...Option) (ai.Client, error) {
	if cfg == nil {
		return nil, ai.NewError(ai.KindConfiguration, ai.ProviderGoogle, "nil config", nil)
	}
	cfg.Normalize()
	pc, ok := cfg.Provider(ai.ProviderGoogle)
	if !ok {
		return nil, ai.NewError(ai.KindConfiguration, ai.ProviderGoogle, "missing API key", ai.ErrProviderNotConfigured)
	}

	c := &Client{
		baseURL: pc.BaseURL,
		apiKey:  pc.APIKey,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:  slog.Default().With("component", "gemini-client"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Provider returns ai.ProviderGoogle.
func (c *Client) Provider() ai.Provider {
	return ai.ProviderGoogle
}

// Complete sends one generateContent request and returns the first candidate's text.
func (c *Client) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	return c.generate(ctx, req, nil)
}

// ReadImage attaches img as inline data on the final user turn.
func (c *Client) ReadImage(ctx context.Context, req ai.CompletionRequest, img ai.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", ai.NewError(ai.KindInvalidRequest, ai.ProviderGoogle, "empty image", nil)
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return c.generate(ctx, req, &inlineData{MimeType: mime, Data: base64.StdEncoding.EncodeToString(img.Data)})
}

func (c *Client) generate(ctx context.Context, req ai.CompletionRequest, image *inlineData) (string, error) {
	if req.Model == "" {
		return "", ai.NewError(ai.KindConfiguration, ai.ProviderGoogle, "model is required", ai.ErrUnknownModel)
	}
	formatted := prompt.Format(ai.ProviderGoogle, req.SystemPrompt, req.UserPrompt, req.Model)

	body := generateRequest{
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	for _, m := range formatted.Messages {
		body.Contents = append(body.Contents, content{Role: m.Role, Parts: []part{{Text: m.Content}}})
	}
	if image != nil {
		last := &body.Contents[len(body.Contents)-1]
		last.Parts = append(last.Parts, part{InlineData: image})
	}

	endpoint := c.baseURL + "/v1beta/models/" + url.PathEscape(req.Model) + ":generateContent"
	header := http.Header{}
	header.Set("x-goog-api-key", c.apiKey)

	c.logger.Debug("sending generateContent", "model", req.Model, "turns", len(body.Contents))
	var resp generateResponse
	if err := ai.PostJSON(ctx, c.http, ai.ProviderGoogle, endpoint, header, body, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", ai.NewError(ai.KindInvalidRequest, ai.ProviderGoogle, "prompt blocked: "+resp.PromptFeedback.BlockReason, nil)
		}
		return "", ai.NewError(ai.KindServer, ai.ProviderGoogle, "no candidates", ai.ErrEmptyResponse)
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ai.NewError(ai.KindServer, ai.ProviderGoogle, "empty candidate", ai.ErrEmptyResponse)
	}
	return text, nil
}
