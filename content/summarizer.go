package content

import (
	"context"
	"log/slog"

	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/service"
)

// Summarizer produces summaries whose prompts are tailored to the detected
// content category, and reports the category and entities alongside.
type Summarizer struct {
	svc      SummaryService
	detector *Detector
	entities *EntityExtractor
	logger   *slog.Logger
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithSummarizerLogger sets the summarizer's logger.
func WithSummarizerLogger(logger *slog.Logger) SummarizerOption {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger.With("component", "content-summarizer")
		}
	}
}

// NewSummarizer wires a summarizer from its parts.
func NewSummarizer(svc SummaryService, detector *Detector, entities *EntityExtractor, opts ...SummarizerOption) (*Summarizer, error) {
	if svc == nil {
		return nil, ErrSummaryServiceRequired
	}
	if detector == nil {
		return nil, ErrDetectorRequired
	}
	if entities == nil {
		return nil, ErrExtractorRequired
	}
	s := &Summarizer{
		svc:      svc,
		detector: detector,
		entities: entities,
		logger:   slog.Default().With("component", "content-summarizer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewDefaultSummarizer builds the detector and extractor on svc itself.
func NewDefaultSummarizer(svc SummaryService, logger *slog.Logger) (*Summarizer, error) {
	if svc == nil {
		return nil, ErrSummaryServiceRequired
	}
	detector, err := NewDetector(svc, WithDetectorLogger(logger))
	if err != nil {
		return nil, err
	}
	extractor, err := NewEntityExtractor(svc, WithExtractorLogger(logger))
	if err != nil {
		return nil, err
	}
	return NewSummarizer(svc, detector, extractor, WithSummarizerLogger(logger))
}

// Summarize detects the category of text, extracts its entities and asks
// for a summary with category-specific prompts. model, when set, names the
// catalog model to use for the summary.
//
// Entity extraction never fails the call: on error an empty list is
// reported. Summary failures are returned unchanged.
func (s *Summarizer) Summarize(ctx context.Context, text string, opts core.SummarizationOptions, model string) (core.SummarizationResult, error) {
	category, err := s.detector.Detect(ctx, text)
	if err != nil {
		return core.SummarizationResult{}, err
	}

	tailored := opts
	tailored.SystemPrompt = SystemPrompt(category, opts.Type)
	tailored.CustomInstructions = Instructions(category, opts.Type, opts.CustomInstructions)

	entities, err := s.entities.Extract(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return core.SummarizationResult{}, ctx.Err()
		}
		s.logger.Warn("entity extraction failed, continuing without entities", "err", err)
		entities = []core.Entity{}
	}

	summary, err := s.svc.Summarize(ctx, text, tailored, service.Hints{Model: model})
	if err != nil {
		return core.SummarizationResult{}, err
	}

	s.logger.Debug("content-aware summary ready",
		"category", category.String(),
		"entities", len(entities))
	return core.SummarizationResult{
		Summary:  summary,
		Category: category,
		Entities: entities,
	}, nil
}
