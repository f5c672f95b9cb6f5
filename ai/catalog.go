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
	"fmt"
	"slices"
	"strings"
)

// Catalog is the read-only capability table. It is safe for concurrent use
// because nothing mutates it after NewCatalog returns.
type Catalog struct {
	models []ModelCapability
	byID   map[string]int
}

// NewCatalog validates models and builds a catalog preserving their order.
func NewCatalog(models ...ModelCapability) (*Catalog, error) {
	c := &Catalog{
		models: make([]ModelCapability, 0, len(models)),
		byID:   make(map[string]int, len(models)),
	}
	for _, m := range models {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfiguration, m.ID, errDuplicateModelID)
		}
		c.byID[m.ID] = len(c.models)
		c.models = append(c.models, cloneCapability(m))
	}
	return c, nil
}

// Lookup returns the capability for an exact model id.
func (c *Catalog) Lookup(id string) (ModelCapability, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return ModelCapability{}, false
	}
	return cloneCapability(c.models[i]), true
}

// Models returns a copy of every capability in catalog order.
func (c *Catalog) Models() []ModelCapability {
	out := make([]ModelCapability, len(c.models))
	for i, m := range c.models {
		out[i] = cloneCapability(m)
	}
	return out
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	return len(c.models)
}

func cloneCapability(m ModelCapability) ModelCapability {
	m.ContentTypes = slices.Clone(m.ContentTypes)
	m.Features = slices.Clone(m.Features)
	m.RecommendedFor = slices.Clone(m.RecommendedFor)
	if m.CostPer1KTokens != nil {
		v := *m.CostPer1KTokens
		m.CostPer1KTokens = &v
	}
	return m
}

func cost(v float64) *float64 {
	return &v
}

var allTextFeatures = []Feature{
	FeatureSummarization,
	FeatureTagGeneration,
	FeatureTitleGeneration,
}

// DefaultModels returns the built-in capability table.
func DefaultModels() []ModelCapability {
	withCode := append(slices.Clone(allTextFeatures), FeatureCodeUnderstanding)
	return []ModelCapability{
		{
			ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI,
			CostTier: CostHigh, CostPer1KTokens: cost(0.01),
			ContentTypes: []ContentType{ContentText, ContentImage, ContentPDF, ContentWebLink, ContentYouTube},
			MaxTokens:    128000, Features: withCode, Reliability: 0.95,
			RecommendedFor: []TaskType{TaskLongDocumentSummary, TaskImageAnalysis, TaskCodeExplanation, TaskWebContentExtraction},
		},
		{
			ID: "gpt-4o-mini", Name: "GPT-4o mini", Provider: ProviderOpenAI,
			CostTier: CostLow, CostPer1KTokens: cost(0.0006),
			ContentTypes: []ContentType{ContentText, ContentImage, ContentWebLink, ContentYouTube},
			MaxTokens:    128000, Features: withCode, Reliability: 0.88,
			RecommendedFor: []TaskType{TaskShortTextSummary, TaskWebContentExtraction, TaskYouTubeSummary},
		},
		{
			ID: "whisper-1", Name: "Whisper", Provider: ProviderOpenAI,
			CostTier: CostLow, CostPer1KTokens: cost(0.006),
			ContentTypes: []ContentType{ContentAudio},
			MaxTokens:    25000, Reliability: 0.9,
			RecommendedFor: []TaskType{TaskAudioTranscription},
		},
		{
			ID: "claude-3-opus-20240229", Name: "Claude 3 Opus", Provider: ProviderAnthropic,
			CostTier: CostHigh, CostPer1KTokens: cost(0.03),
			ContentTypes: []ContentType{ContentText, ContentImage, ContentPDF, ContentWebLink, ContentYouTube},
			MaxTokens:    200000, Features: withCode, Reliability: 0.95,
			RecommendedFor: []TaskType{TaskLongDocumentSummary, TaskCodeExplanation},
		},
		{
			ID: "claude-3-sonnet-20240229", Name: "Claude 3 Sonnet", Provider: ProviderAnthropic,
			CostTier: CostMedium, CostPer1KTokens: cost(0.015),
			ContentTypes: []ContentType{ContentText, ContentImage, ContentPDF, ContentWebLink, ContentYouTube},
			MaxTokens:    200000, Features: withCode, Reliability: 0.9,
			RecommendedFor: []TaskType{TaskLongDocumentSummary, TaskWebContentExtraction, TaskYouTubeSummary},
		},
		{
			ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku", Provider: ProviderAnthropic,
			CostTier: CostLow, CostPer1KTokens: cost(0.0025),
			ContentTypes: []ContentType{ContentText, ContentImage, ContentWebLink},
			MaxTokens:    200000, Features: allTextFeatures, Reliability: 0.85,
			RecommendedFor: []TaskType{TaskShortTextSummary},
		},
		{
			ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Provider: ProviderGoogle,
			CostTier: CostMedium, CostPer1KTokens: cost(0.0035),
			ContentTypes: []ContentType{ContentText, ContentImage, ContentPDF, ContentWebLink, ContentYouTube},
			MaxTokens:    1000000, Features: withCode, Reliability: 0.9,
			RecommendedFor: []TaskType{TaskYouTubeSummary, TaskLongDocumentSummary, TaskImageAnalysis},
		},
		{
			ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Provider: ProviderGoogle,
			CostTier: CostLow, CostPer1KTokens: cost(0.00035),
			ContentTypes: []ContentType{ContentText, ContentImage, ContentWebLink, ContentYouTube},
			MaxTokens:    1000000, Features: allTextFeatures, Reliability: 0.85,
			RecommendedFor: []TaskType{TaskShortTextSummary, TaskYouTubeSummary},
		},
		{
			ID: "deepseek-chat", Name: "DeepSeek Chat", Provider: ProviderDeepSeek,
			CostTier: CostLow, CostPer1KTokens: cost(0.0014),
			ContentTypes: []ContentType{ContentText, ContentWebLink},
			MaxTokens:    64000, Features: allTextFeatures, Reliability: 0.82,
			RecommendedFor: []TaskType{TaskShortTextSummary, TaskLongDocumentSummary},
		},
		{
			ID: "deepseek-coder", Name: "DeepSeek Coder", Provider: ProviderDeepSeek,
			CostTier: CostLow, CostPer1KTokens: cost(0.0014),
			ContentTypes: []ContentType{ContentText},
			MaxTokens:    64000, Features: withCode, Reliability: 0.8,
			RecommendedFor: []TaskType{TaskCodeExplanation},
		},
		CapabilityForOpenRouterModel("openrouter/auto", "OpenRouter Auto"),
		CapabilityForOpenRouterModel("meta-llama/llama-3-8b-instruct", "Llama 3 8B Instruct"),
		CapabilityForOpenRouterModel("mistralai/mistral-7b-instruct", "Mistral 7B Instruct"),
		CapabilityForOpenRouterModel("google/gemma-7b-it", "Gemma 7B"),
	}
}

// DefaultCatalog builds a catalog from DefaultModels.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultModels()...)
	if err != nil {
		// The built-in table is static; a failure here is a programming error.
		panic(err)
	}
	return c
}

// openRouterFreeModels are routed without charge on OpenRouter.
var openRouterFreeModels = []string{
	"openrouter/auto",
	"mistralai/mistral-7b-instruct",
	"meta-llama/llama-3-8b-instruct",
	"google/gemma-7b-it",
	"nousresearch/nous-hermes-2-mixtral-8x7b-dpo",
	"openchat/openchat-7b",
	"01-ai/yi-1.5-9b-chat",
}

// CapabilityForOpenRouterModel derives a capability for a model routed through
// OpenRouter from its id alone.
func CapabilityForOpenRouterModel(id, name string) ModelCapability {
	lower := strings.ToLower(id)
	has := func(s string) bool { return strings.Contains(lower, s) }

	free := has("free")
	for _, f := range openRouterFreeModels {
		if has(f) {
			free = true
			break
		}
	}

	var tier CostTier
	var price *float64
	switch {
	case free:
		tier = CostFree
	case has("gpt-3.5"), has("claude-instant"), has("claude-3-haiku"):
		tier = CostLow
	case has("gpt-4"), has("claude-3-opus"):
		tier = CostHigh
	default:
		tier = CostMedium
	}
	if !free {
		switch {
		case has("gpt-3.5"):
			price = cost(0.0015)
		case has("gpt-4-turbo"):
			price = cost(0.01)
		case has("gpt-4"), has("claude-3-opus"):
			price = cost(0.03)
		case has("claude-3-sonnet"):
			price = cost(0.015)
		case has("claude-3-haiku"):
			price = cost(0.0025)
		default:
			price = cost(0.01)
		}
	}

	var reliability float64
	switch {
	case has("gpt-4"), has("claude-3-opus"):
		reliability = 0.95
	case has("claude-3-sonnet"):
		reliability = 0.9
	case has("gpt-3.5"), has("claude-3-haiku"):
		reliability = 0.85
	case has("llama-3"):
		reliability = 0.8
	case has("mistral"):
		reliability = 0.75
	case free:
		reliability = 0.7
	default:
		reliability = 0.65
	}

	recommended := []TaskType{TaskShortTextSummary}
	if reliability >= 0.8 {
		recommended = append(recommended, TaskWebContentExtraction)
	}
	if reliability >= 0.9 {
		recommended = append(recommended, TaskLongDocumentSummary)
	}
	if has("code") || has("coder") {
		recommended = append(recommended, TaskCodeExplanation)
	}

	if name == "" {
		name = id
	}
	return ModelCapability{
		ID:              id,
		Name:            name,
		Provider:        ProviderOpenRouter,
		CostTier:        tier,
		CostPer1KTokens: price,
		ContentTypes:    []ContentType{ContentText, ContentWebLink},
		MaxTokens:       8192,
		Features:        slices.Clone(allTextFeatures),
		Reliability:     reliability,
		RecommendedFor:  recommended,
	}
}
