package ai

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Provider identifies an AI vendor. Client dispatch is keyed by Provider.
type Provider int

const (
	ProviderOpenAI Provider = iota + 1
	ProviderAnthropic
	ProviderGoogle
	ProviderDeepSeek
	ProviderOpenRouter
	ProviderOther
)

var providerNames = map[Provider]string{
	ProviderOpenAI:     "openai",
	ProviderAnthropic:  "anthropic",
	ProviderGoogle:     "google",
	ProviderDeepSeek:   "deepseek",
	ProviderOpenRouter: "openrouter",
	ProviderOther:      "other",
}

func (p Provider) String() string {
	if name, ok := providerNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParseProvider maps a provider name to a Provider. "claude" and "gemini" are accepted aliases.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "claude":
		return ProviderAnthropic, nil
	case "gemini":
		return ProviderGoogle, nil
	}
	for p, name := range providerNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown provider %q", ErrConfiguration, s)
}

// CostTier orders models by price. The declaration order is used for ranking.
type CostTier int

const (
	CostFree CostTier = iota
	CostLow
	CostMedium
	CostHigh
)

func (c CostTier) String() string {
	switch c {
	case CostFree:
		return "free"
	case CostLow:
		return "low"
	case CostMedium:
		return "medium"
	case CostHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ContentType is the kind of input a model accepts.
type ContentType int

const (
	ContentText ContentType = iota + 1
	ContentImage
	ContentPDF
	ContentAudio
	ContentWebLink
	ContentYouTube
)

func (c ContentType) String() string {
	switch c {
	case ContentText:
		return "text"
	case ContentImage:
		return "image"
	case ContentPDF:
		return "pdf"
	case ContentAudio:
		return "audio"
	case ContentWebLink:
		return "web_link"
	case ContentYouTube:
		return "youtube"
	default:
		return "unknown"
	}
}

// ParseContentType accepts the names produced by String.
func ParseContentType(s string) (ContentType, bool) {
	for ct := ContentText; ct <= ContentYouTube; ct++ {
		if strings.EqualFold(ct.String(), strings.TrimSpace(s)) {
			return ct, true
		}
	}
	return 0, false
}

// Feature is an output capability of a model.
type Feature int

const (
	FeatureSummarization Feature = iota + 1
	FeatureTagGeneration
	FeatureTitleGeneration
	FeatureCodeUnderstanding
)

// TaskType is the job a caller wants done.
type TaskType int

const (
	TaskShortTextSummary TaskType = iota + 1
	TaskLongDocumentSummary
	TaskImageAnalysis
	TaskAudioTranscription
	TaskWebContentExtraction
	TaskYouTubeSummary
	TaskCodeExplanation
)

func (t TaskType) String() string {
	switch t {
	case TaskShortTextSummary:
		return "short_text_summary"
	case TaskLongDocumentSummary:
		return "long_document_summary"
	case TaskImageAnalysis:
		return "image_analysis"
	case TaskAudioTranscription:
		return "audio_transcription"
	case TaskWebContentExtraction:
		return "web_content_extraction"
	case TaskYouTubeSummary:
		return "youtube_summary"
	case TaskCodeExplanation:
		return "code_explanation"
	default:
		return "unknown"
	}
}

// CostPreference steers model selection between price and quality.
type CostPreference int

const (
	PreferFreeOnly CostPreference = iota + 1
	PreferFree
	PreferBalanced
	PreferQuality
)

func (c CostPreference) String() string {
	switch c {
	case PreferFreeOnly:
		return "free_only"
	case PreferFree:
		return "prefer_free"
	case PreferBalanced:
		return "balanced"
	case PreferQuality:
		return "quality_first"
	default:
		return "unknown"
	}
}

// ParseCostPreference maps a name to a CostPreference.
func ParseCostPreference(s string) (CostPreference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free_only", "free-only":
		return PreferFreeOnly, nil
	case "prefer_free", "prefer-free":
		return PreferFree, nil
	case "balanced", "":
		return PreferBalanced, nil
	case "quality_first", "quality-first", "quality":
		return PreferQuality, nil
	default:
		return 0, fmt.Errorf("%w: unknown cost preference %q", ErrConfiguration, s)
	}
}

// UnmarshalText lets cost preferences be read from config files.
func (c *CostPreference) UnmarshalText(text []byte) error {
	parsed, err := ParseCostPreference(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ModelCapability describes one selectable model. Values are immutable once loaded into a Catalog.
type ModelCapability struct {
	ID       string
	Name     string
	Provider Provider
	CostTier CostTier
	// CostPer1KTokens is nil exactly when CostTier is CostFree.
	CostPer1KTokens *float64
	ContentTypes    []ContentType
	MaxTokens       int
	Features        []Feature
	Reliability     float64 // [0,1]
	RecommendedFor  []TaskType
}

// Supports reports whether the model accepts content of type ct.
func (m ModelCapability) Supports(ct ContentType) bool {
	return slices.Contains(m.ContentTypes, ct)
}

// HasFeature reports whether the model provides f.
func (m ModelCapability) HasFeature(f Feature) bool {
	return slices.Contains(m.Features, f)
}

// Recommends reports whether the model is recommended for task.
func (m ModelCapability) Recommends(task TaskType) bool {
	return slices.Contains(m.RecommendedFor, task)
}

// IsFree reports whether the model is in the free tier.
func (m ModelCapability) IsFree() bool {
	return m.CostTier == CostFree
}

var (
	errEmptyModelID       = errors.New("model id cannot be empty")
	errCostInvariant      = errors.New("cost per 1K tokens must be nil exactly when the tier is free")
	errReliabilityRange   = errors.New("reliability must be within [0,1]")
	errNoContentTypes     = errors.New("model must support at least one content type")
	errDuplicateModelID   = errors.New("duplicate model id")
	errUnknownModelVendor = errors.New("model provider is not set")
)

// Validate checks the capability invariants.
func (m ModelCapability) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: %w", ErrConfiguration, errEmptyModelID)
	}
	if m.Provider == 0 {
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, m.ID, errUnknownModelVendor)
	}
	if (m.CostPer1KTokens == nil) != (m.CostTier == CostFree) {
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, m.ID, errCostInvariant)
	}
	if m.Reliability < 0 || m.Reliability > 1 {
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, m.ID, errReliabilityRange)
	}
	if len(m.ContentTypes) == 0 {
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, m.ID, errNoContentTypes)
	}
	return nil
}
