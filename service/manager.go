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


package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/retry"
	"github.com/poiesic/secondbrain/ai/selection"
	"github.com/poiesic/secondbrain/core"
)

const (
	DefaultLanguage      = "en"
	DefaultMaxTags       = 15
	DefaultSummaryTokens = 1000
	MaxTitleLength       = 100

	// LongContentThreshold separates short and long summary tasks, in characters.
	LongContentThreshold = 4000

	summaryTemperature = 0.3
	tagMaxTokens       = 100
	titleMaxTokens     = 50
	imageMaxTokens     = 1000
)

// Hints carries optional caller knowledge for Summarize.
type Hints struct {
	Model    string        // Catalog model id; skips scoring when set
	CardType core.CardType // Selects card-specific system prompts; zero means generic
}

// TranscribeOptions tunes TranscribeAudio.
type TranscribeOptions struct {
	Model      string
	Timestamps bool
	Prompt     string
}

// GenerateRequest is a free-form completion routed through selection and retry.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	ContentType  ai.ContentType // Zero means text
	Task         ai.TaskType
	Model        string
}

// Manager is the single entry point for AI tasks. Each call selects a
// model, finds a client able to serve it and runs the request under the
// retry policy. Provider failures are returned with their classification
// intact.
//
// A Manager holds no per-request state and is safe for concurrent use.
type Manager struct {
	selector *selection.Selector
	clients  map[ai.Provider]ai.Client
	policy   retry.Policy
	media    MediaLoader
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager) error

// WithRetryPolicy replaces the default backoff policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(m *Manager) error {
		m.policy = p
		return nil
	}
}

// WithMediaLoader sets how image and audio URIs are read.
// Default is FileLoader.
func WithMediaLoader(loader MediaLoader) Option {
	return func(m *Manager) error {
		if loader == nil {
			return ErrMediaLoaderRequired
		}
		m.media = loader
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger.With("component", "ai-service")
		return nil
	}
}

// NewManager creates a manager over the given clients. When two clients
// report the same provider the first one wins.
func NewManager(selector *selection.Selector, clients []ai.Client, opts ...Option) (*Manager, error) {
	if selector == nil {
		return nil, ErrSelectorRequired
	}

	byProvider := make(map[ai.Provider]ai.Client, len(clients))
	for _, c := range clients {
		if c == nil {
			continue
		}
		if _, dup := byProvider[c.Provider()]; !dup {
			byProvider[c.Provider()] = c
		}
	}
	if len(byProvider) == 0 {
		return nil, ErrClientsRequired
	}

	m := &Manager{
		selector: selector,
		clients:  byProvider,
		policy:   retry.DefaultPolicy(),
		media:    FileLoader{},
		logger:   slog.Default().With("component", "ai-service"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.policy.Logger == nil {
		m.policy.Logger = m.logger
	}
	return m, nil
}

// Selector returns the model selector.
func (m *Manager) Selector() *selection.Selector {
	return m.selector
}

// Providers lists the providers that have a client, in Provider order.
func (m *Manager) Providers() []ai.Provider {
	out := make([]ai.Provider, 0, len(m.clients))
	for p := range m.clients {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Summarize produces a summary of content shaped by opts.
//
// The system prompt comes from opts.SystemPrompt when set, otherwise from the
// card type and summary type. YouTube transcripts are detected from their
// markers and routed to models recommended for video summaries.
func (m *Manager) Summarize(ctx context.Context, content string, opts core.SummarizationOptions, hints Hints) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", emptyContent()
	}

	youtube := IsYouTubeContent(content)
	system := opts.SystemPrompt
	if system == "" {
		system = SystemPrompt(hints.CardType, youtube, opts.Type)
	}
	maxTokens := opts.MaxLength
	if maxTokens <= 0 {
		maxTokens = DefaultSummaryTokens
	}

	req := selection.Request{
		ContentType:      summaryContentType(hints.CardType, youtube),
		Task:             summaryTask(content, youtube),
		ModelOverride:    hints.Model,
		ContentSize:      estimateTokens(content),
		RequiredFeatures: []ai.Feature{ai.FeatureSummarization},
	}
	return m.complete(ctx, req, ai.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   summaryRequestPrompt(opts.Type, languageOr(opts.Language), opts.CustomInstructions, content),
		Temperature:  summaryTemperature,
		MaxTokens:    maxTokens,
	})
}

// GenerateTags asks for up to maxTags comma-separated tags. maxTags <= 0
// means DefaultMaxTags.
func (m *Manager) GenerateTags(ctx context.Context, content, language string, maxTags int, model string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, emptyContent()
	}
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}

	req := selection.Request{
		ContentType:      ai.ContentText,
		Task:             ai.TaskShortTextSummary,
		ModelOverride:    model,
		ContentSize:      estimateTokens(content),
		RequiredFeatures: []ai.Feature{ai.FeatureTagGeneration},
	}
	text, err := m.complete(ctx, req, ai.CompletionRequest{
		SystemPrompt: tagSystemPrompt,
		UserPrompt:   tagUserPrompt(content, languageOr(language), maxTags),
		Temperature:  summaryTemperature,
		MaxTokens:    tagMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return ParseTags(text, maxTags), nil
}

// ParseTags splits a comma-separated model answer, dropping blanks and
// keeping at most maxTags entries.
func ParseTags(text string, maxTags int) []string {
	tags := make([]string, 0, maxTags)
	for _, part := range strings.Split(text, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if len(tags) == maxTags {
			break
		}
		tags = append(tags, tag)
	}
	return tags
}

// GenerateTitle asks for a short descriptive title.
func (m *Manager) GenerateTitle(ctx context.Context, content, language, model string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", emptyContent()
	}

	req := selection.Request{
		ContentType:      ai.ContentText,
		Task:             ai.TaskShortTextSummary,
		ModelOverride:    model,
		ContentSize:      estimateTokens(content),
		RequiredFeatures: []ai.Feature{ai.FeatureTitleGeneration},
	}
	text, err := m.complete(ctx, req, ai.CompletionRequest{
		SystemPrompt: titleSystemPrompt,
		UserPrompt:   titleUserPrompt(content, languageOr(language)),
		Temperature:  summaryTemperature,
		MaxTokens:    titleMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return cleanTitle(text), nil
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'“”`)
	return strings.TrimSpace(s)
}

// TranscribeAudio loads the audio at uri and transcribes it with a
// transcription-capable provider.
func (m *Manager) TranscribeAudio(ctx context.Context, uri, language string, opts TranscribeOptions) (string, error) {
	media, err := m.load(ctx, uri)
	if err != nil {
		return "", err
	}

	req := selection.Request{
		ContentType:   ai.ContentAudio,
		Task:          ai.TaskAudioTranscription,
		ModelOverride: opts.Model,
	}
	model, client, err := m.resolve(req, needAudio)
	if err != nil {
		return "", err
	}
	transcriber := client.(ai.Transcriber)

	treq := ai.TranscriptionRequest{
		Model:      model.ID,
		Language:   languageOr(language),
		Prompt:     opts.Prompt,
		Timestamps: opts.Timestamps,
	}
	audio := ai.Audio{Data: media.Data, FileName: media.FileName, MimeType: media.MimeType}

	m.logger.Debug("transcribing audio", "model", model.ID, "bytes", len(media.Data))
	text, err := retry.Value(ctx, m.policy, func(ctx context.Context) (string, error) {
		return transcriber.Transcribe(ctx, treq, audio)
	})
	if err != nil {
		m.logFailure("transcription failed", model, err)
		return "", err
	}
	return text, nil
}

// ExtractTextFromImage loads the image at uri and asks a vision model to
// transcribe the text it contains.
func (m *Manager) ExtractTextFromImage(ctx context.Context, uri, language, model string) (string, error) {
	media, err := m.load(ctx, uri)
	if err != nil {
		return "", err
	}

	req := selection.Request{
		ContentType:   ai.ContentImage,
		Task:          ai.TaskImageAnalysis,
		ModelOverride: model,
	}
	selected, client, err := m.resolve(req, needImage)
	if err != nil {
		return "", err
	}
	reader := client.(ai.ImageReader)

	creq := ai.CompletionRequest{
		Model:        selected.ID,
		SystemPrompt: imageSystemPrompt,
		UserPrompt:   imageUserPrompt(languageOr(language)),
		Temperature:  summaryTemperature,
		MaxTokens:    imageMaxTokens,
	}
	img := ai.Image{Data: media.Data, MimeType: media.MimeType}

	m.logger.Debug("reading image", "model", selected.ID, "bytes", len(media.Data))
	text, err := retry.Value(ctx, m.policy, func(ctx context.Context) (string, error) {
		return reader.ReadImage(ctx, creq, img)
	})
	if err != nil {
		m.logFailure("image text extraction failed", selected, err)
		return "", err
	}
	return text, nil
}

// Generate runs an arbitrary prompt pair. Category detection, entity
// extraction and semantic connection discovery are built on it.
func (m *Manager) Generate(ctx context.Context, gr GenerateRequest) (string, error) {
	if strings.TrimSpace(gr.UserPrompt) == "" {
		return "", emptyContent()
	}
	contentType := gr.ContentType
	if contentType == 0 {
		contentType = ai.ContentText
	}
	req := selection.Request{
		ContentType:   contentType,
		Task:          gr.Task,
		ModelOverride: gr.Model,
		ContentSize:   estimateTokens(gr.UserPrompt),
	}
	return m.complete(ctx, req, ai.CompletionRequest{
		SystemPrompt: gr.SystemPrompt,
		UserPrompt:   gr.UserPrompt,
		Temperature:  gr.Temperature,
		MaxTokens:    gr.MaxTokens,
	})
}

func (m *Manager) complete(ctx context.Context, req selection.Request, creq ai.CompletionRequest) (string, error) {
	model, client, err := m.resolve(req, needText)
	if err != nil && req.ModelOverride == "" && req.ContentType != ai.ContentText && errors.Is(err, ai.ErrConfiguration) {
		// Web, PDF and video content reach us as extracted text, so any text model can serve it.
		m.logger.Debug("no model for content type, retrying selection as text",
			"content_type", req.ContentType.String(), "err", err)
		req.ContentType = ai.ContentText
		model, client, err = m.resolve(req, needText)
	}
	if err != nil {
		return "", err
	}
	creq.Model = model.ID

	m.logger.Debug("sending completion",
		"model", model.ID,
		"provider", model.Provider.String(),
		"task", req.Task.String())
	text, err := retry.Value(ctx, m.policy, func(ctx context.Context) (string, error) {
		return client.Complete(ctx, creq)
	})
	if err != nil {
		m.logFailure("completion failed", model, err)
		return "", err
	}
	return text, nil
}

type need int

const (
	needText need = iota
	needImage
	needAudio
)

func (n need) satisfiedBy(c ai.Client) bool {
	switch n {
	case needImage:
		_, ok := c.(ai.ImageReader)
		return ok
	case needAudio:
		_, ok := c.(ai.Transcriber)
		return ok
	default:
		return true
	}
}

// resolve picks a model and a client able to serve it. When the selected
// model's provider has no usable client the fallback list is walked; an
// explicit override is never substituted.
func (m *Manager) resolve(req selection.Request, n need) (ai.ModelCapability, ai.Client, error) {
	model, err := m.selector.Select(req)
	if err != nil {
		return ai.ModelCapability{}, nil, err
	}
	if c, ok := m.clientFor(model, n); ok {
		return model, c, nil
	}

	if req.ModelOverride == "" {
		for _, fb := range m.selector.Fallbacks(model, req) {
			if c, ok := m.clientFor(fb, n); ok {
				m.logger.Info("selected model unavailable, using fallback",
					"selected", model.ID,
					"fallback", fb.ID,
					"provider", fb.Provider.String())
				return fb, c, nil
			}
		}
	}
	return ai.ModelCapability{}, nil, ai.NewError(ai.KindConfiguration, model.Provider,
		fmt.Sprintf("no client for model %q", model.ID), ai.ErrProviderNotConfigured)
}

func (m *Manager) clientFor(model ai.ModelCapability, n need) (ai.Client, bool) {
	c, ok := m.clients[model.Provider]
	if !ok || !n.satisfiedBy(c) {
		return nil, false
	}
	return c, true
}

func (m *Manager) load(ctx context.Context, uri string) (Media, error) {
	if strings.TrimSpace(uri) == "" {
		return Media{}, ai.NewError(ai.KindInvalidRequest, 0, "empty uri", ErrMediaLoad)
	}
	media, err := m.media.Load(ctx, uri)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Media{}, err
		}
		return Media{}, ai.NewError(ai.KindInvalidRequest, 0, uri, fmt.Errorf("%w: %w", ErrMediaLoad, err))
	}
	if len(media.Data) == 0 {
		return Media{}, ai.NewError(ai.KindInvalidRequest, 0, uri, fmt.Errorf("%w: no data", ErrMediaLoad))
	}
	return media, nil
}

func (m *Manager) logFailure(msg string, model ai.ModelCapability, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	m.logger.Warn(msg,
		"model", model.ID,
		"provider", model.Provider.String(),
		"kind", ai.KindOf(err).String(),
		"err", err)
}

func emptyContent() error {
	return ai.NewError(ai.KindInvalidRequest, 0, "", ErrEmptyContent)
}

func languageOr(language string) string {
	if strings.TrimSpace(language) == "" {
		return DefaultLanguage
	}
	return language
}

func summaryTask(content string, youtube bool) ai.TaskType {
	switch {
	case youtube:
		return ai.TaskYouTubeSummary
	case len(content) > LongContentThreshold:
		return ai.TaskLongDocumentSummary
	default:
		return ai.TaskShortTextSummary
	}
}

func summaryContentType(cardType core.CardType, youtube bool) ai.ContentType {
	switch {
	case youtube:
		return ai.ContentYouTube
	case cardType == core.CardTypeURL:
		return ai.ContentWebLink
	case cardType == core.CardTypePDF:
		return ai.ContentPDF
	default:
		return ai.ContentText
	}
}

// estimateTokens approximates a token count at four characters per token.
func estimateTokens(s string) int {
	return len(s) / 4
}
