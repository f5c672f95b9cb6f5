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


package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/secondbrain/content"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/storage"
)

// EntityExtractor pulls entities out of card content.
// *content.EntityExtractor implements it.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]core.Entity, error)
}

var _ EntityExtractor = (*content.EntityExtractor)(nil)

// Builder assembles knowledge graphs from stored cards.
type Builder struct {
	cards    storage.CardStore
	entities EntityExtractor
	gen      content.Generator
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithPoolSize sets the number of workers used to scan cards.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		if b.pool != nil {
			b.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger.With("component", "knowledge-graph")
		return nil
	}
}

// NewBuilder creates a graph builder. gen is only used by FindConnections
// when two cards share nothing.
func NewBuilder(cards storage.CardStore, entities EntityExtractor, gen content.Generator, opts ...Option) (*Builder, error) {
	if cards == nil {
		return nil, ErrCardStoreRequired
	}
	if entities == nil {
		return nil, ErrExtractorRequired
	}
	if gen == nil {
		return nil, ErrGeneratorRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		cards:    cards,
		entities: entities,
		gen:      gen,
		pool:     pool,
		logger:   slog.Default().With("component", "knowledge-graph"),
	}
	for _, opt := range opts {
		if optErr := opt(b); optErr != nil {
			b.Release()
			return nil, optErr
		}
	}
	return b, nil
}

// Release stops the scan workers. The builder should not be used after
// calling Release.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// BuildGraph returns the graph centred on the card with the given ID: its
// entities, up to core.MaxRelatedCards related cards and the connections
// between them. Nothing is returned until every step has completed.
func (b *Builder) BuildGraph(ctx context.Context, cardID string) (*core.KnowledgeGraph, error) {
	card, err := b.cards.GetCardByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("loading card %s: %w", cardID, err)
	}

	entities, err := b.entities.Extract(ctx, card.Content)
	if err != nil {
		return nil, fmt.Errorf("extracting entities: %w", err)
	}
	if entities == nil {
		entities = []core.Entity{}
	}

	all, err := b.cards.GetCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cards: %w", err)
	}

	related, err := b.relatedCards(ctx, card, entities, all)
	if err != nil {
		return nil, err
	}

	graph := &core.KnowledgeGraph{
		CentralCard:  card,
		Entities:     entities,
		RelatedCards: related,
		Connections:  Connect(card, entities, related),
	}
	b.logger.Debug("knowledge graph built",
		"card", cardID,
		"entities", len(entities),
		"related", len(related),
		"connections", len(graph.Connections))
	return graph, nil
}

// noRank marks a card that matches neither an entity nor a tag.
const noRank = -1

// relatedCards scans candidates in parallel. A card's rank is the index of
// the first entity it mentions, or len(entities) when it only shares a tag.
// Sorting by rank and then store position gives the same order as walking
// the entities one at a time and appending tag matches last.
func (b *Builder) relatedCards(ctx context.Context, card *core.Card, entities []core.Entity, candidates []*core.Card) ([]*core.Card, error) {
	ranks := make([]int, len(candidates))
	chunk := max((len(candidates)+b.pool.Cap()-1)/b.pool.Cap(), 1)

	var wg sync.WaitGroup
	for start := 0; start < len(candidates); start += chunk {
		end := min(start+chunk, len(candidates))
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				ranks[i] = rankCandidate(card, entities, candidates[i])
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("scanning related cards: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order := make([]int, 0, len(candidates))
	for i, rank := range ranks {
		if rank != noRank {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return ranks[a] - ranks[b]
	})

	related := make([]*core.Card, 0, min(len(order), core.MaxRelatedCards))
	seen := make(map[string]struct{}, len(order))
	for _, i := range order {
		c := candidates[i]
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		related = append(related, c)
		if len(related) == core.MaxRelatedCards {
			break
		}
	}
	return related, nil
}

func rankCandidate(card *core.Card, entities []core.Entity, candidate *core.Card) int {
	if candidate == nil || candidate.ID == card.ID {
		return noRank
	}
	for i, entity := range entities {
		if Mentions(candidate, entity.Name) {
			return i
		}
	}
	if SharesTag(card.Tags, candidate.Tags) {
		return len(entities)
	}
	return noRank
}

// Connect builds the edges of a graph: central card to each entity,
// each entity to every related card that mentions it, and central card to
// each related card it shares tags with.
func Connect(card *core.Card, entities []core.Entity, related []*core.Card) []core.Connection {
	connections := make([]core.Connection, 0, len(entities)*(1+len(related))+len(related))

	for _, entity := range entities {
		connections = append(connections, core.Connection{
			SourceID:   card.ID,
			SourceType: core.NodeCard,
			TargetID:   entity.Name,
			TargetType: core.NodeEntity,
			Strength:   ConnectionStrength(card, entity),
			Type:       core.ConnectionContains,
		})
	}

	for _, entity := range entities {
		for _, rc := range related {
			if !Mentions(rc, entity.Name) {
				continue
			}
			connections = append(connections, core.Connection{
				SourceID:   entity.Name,
				SourceType: core.NodeEntity,
				TargetID:   rc.ID,
				TargetType: core.NodeCard,
				Strength:   ConnectionStrength(rc, entity),
				Type:       core.ConnectionAppearsIn,
			})
		}
	}

	for _, rc := range related {
		if overlap := TagOverlap(card.Tags, rc.Tags); overlap > 0 {
			connections = append(connections, tagConnection(card, rc, overlap))
		}
	}
	return connections
}

func tagConnection(from, to *core.Card, overlap float64) core.Connection {
	return core.Connection{
		SourceID:   from.ID,
		SourceType: core.NodeCard,
		TargetID:   to.ID,
		TargetType: core.NodeCard,
		Strength:   overlap,
		Type:       core.ConnectionRelatedByTags,
	}
}
