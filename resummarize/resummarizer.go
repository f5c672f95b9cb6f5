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


package resummarize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/service"
	"github.com/poiesic/secondbrain/storage"
)

// Summarizer produces one summary. *service.Manager implements it.
type Summarizer interface {
	Summarize(ctx context.Context, content string, opts core.SummarizationOptions, hints service.Hints) (string, error)
}

// Store is the part of a card repository a run needs.
type Store interface {
	storage.CardStore
	UpdateCards(ctx context.Context, cards ...*core.Card) ([]*core.Card, error)
}

var (
	_ Summarizer = (*service.Manager)(nil)
	_ Store      = (storage.CardRepository)(nil)
)

// Config tunes a run.
type Config struct {
	// BatchSize is the number of cards written back per update
	BatchSize int

	// ReportInterval is how often to report progress (number of cards)
	ReportInterval int

	// Options shapes every summary
	Options core.SummarizationOptions

	// Model is the catalog model to use; chosen per card when empty
	Model string

	// MissingOnly skips cards that already have a summary
	MissingOnly bool
}

func DefaultConfig() *Config {
	return &Config{
		BatchSize:      20,
		ReportInterval: 10,
		Options: core.SummarizationOptions{
			Type:      core.SummaryConcise,
			Language:  "en",
			MaxLength: 1000,
		},
	}
}

// Result counts what a run did. Updated + Skipped + Failed == Total when the
// run completes.
type Result struct {
	Total   int
	Updated int
	Skipped int
	Failed  int
}

type Resummarizer struct {
	store    Store
	svc      Summarizer
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// Option configures a Resummarizer.
type Option func(*Resummarizer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resummarizer) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "resummarize")
	}
}

// NewResummarizer creates a run over store. A nil config takes
// DefaultConfig and a nil progress writer discards progress.
func NewResummarizer(store Store, svc Summarizer, config *Config, progress io.Writer, opts ...Option) (*Resummarizer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if svc == nil {
		return nil, ErrSummarizerRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if progress == nil {
		progress = io.Discard
	}

	r := &Resummarizer{
		store:    store,
		svc:      svc,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "resummarize"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run summarizes every stored card, newest first.
//
// A card whose summary fails is logged and counted as failed. Failures that
// would repeat for every card (credentials, payment, configuration) and
// cancellation end the run; batches already written stay written.
func (r *Resummarizer) Run(ctx context.Context) (Result, error) {
	cards, err := r.store.GetCards(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load cards: %w", err)
	}

	res := Result{Total: len(cards)}
	if res.Total == 0 {
		fmt.Fprintf(r.progress, "No cards found in database (0 cards)\n")
		return res, nil
	}

	fmt.Fprintf(r.progress, "Summarizing %d cards (batch size: %d)\n", res.Total, r.config.BatchSize)
	tracker := NewProgressTracker(r.progress, res.Total, r.config.ReportInterval)
	tracker.Start()

	for start := 0; start < len(cards); start += r.config.BatchSize {
		batch := cards[start:min(start+r.config.BatchSize, len(cards))]

		changed, err := r.summarizeBatch(ctx, batch, &res)
		if len(changed) > 0 {
			if _, updErr := r.store.UpdateCards(ctx, changed...); updErr != nil {
				return res, fmt.Errorf("failed to update cards: %w", updErr)
			}
			res.Updated += len(changed)
		}
		if err != nil {
			return res, err
		}
		tracker.Increment(len(batch))
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Summarizing complete. Updated %d of %d cards in %v (%d skipped, %d failed)\n",
		res.Updated, res.Total, elapsed.Round(time.Second), res.Skipped, res.Failed)
	return res, nil
}

// summarizeBatch returns the cards it gave a new summary, including those
// done before an error that ends the run.
func (r *Resummarizer) summarizeBatch(ctx context.Context, batch []*core.Card, res *Result) ([]*core.Card, error) {
	changed := make([]*core.Card, 0, len(batch))
	for _, card := range batch {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		if strings.TrimSpace(card.Content) == "" || (r.config.MissingOnly && card.Summary != "") {
			res.Skipped++
			continue
		}

		summary, err := r.svc.Summarize(ctx, card.Content, r.config.Options, service.Hints{
			Model:    r.config.Model,
			CardType: card.Type,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return changed, ctxErr
			}
			if abortsRun(err) {
				return changed, fmt.Errorf("summarizing card %s: %w", card.ID, err)
			}
			res.Failed++
			r.logger.Warn("card summary failed",
				"card", card.ID,
				"kind", ai.KindOf(err).String(),
				"err", err)
			continue
		}

		card.Summary = summary
		card.SummaryType = r.config.Options.Type.String()
		card.AIModel = r.config.Model
		changed = append(changed, card)
	}
	return changed, nil
}

func abortsRun(err error) bool {
	switch ai.KindOf(err) {
	case ai.KindAuthentication, ai.KindPaymentRequired, ai.KindConfiguration:
		return true
	default:
		return false
	}
}
