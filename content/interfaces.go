package content

import (
	"context"

	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/service"
)

// ShortContentThreshold is the length, in characters, below which detection
// and extraction never call the model.
const ShortContentThreshold = 500

// Generator runs a free-form completion. *service.Manager implements it.
type Generator interface {
	Generate(ctx context.Context, req service.GenerateRequest) (string, error)
}

// SummaryService is what the Summarizer needs from the AI layer.
type SummaryService interface {
	Generator
	Summarize(ctx context.Context, content string, opts core.SummarizationOptions, hints service.Hints) (string, error)
}

var _ SummaryService = (*service.Manager)(nil)
