package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/jsonscan"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/service"
)

const (
	semanticExcerptRunes = 1000
	semanticMaxTokens    = 1000
	semanticTemperature  = 0.3
)

const semanticPrompt = `Analyze the following two pieces of content and identify semantic connections between them.

Content 1: %s

Content 2: %s

Identify the top 3 conceptual connections between these two pieces of content.
For each connection, provide:
1. The concept name
2. A brief description of how this concept connects the two pieces of content
3. A strength score from 0.0 to 1.0 indicating how strong the connection is

Format your response as a JSON array of objects with the following structure:
[
  {
    "concept": "Concept name",
    "description": "Description of connection",
    "strength": 0.8
  },
  ...
]`

// FindConnections links two cards through the entities both mention and the
// tags they share. When there are neither, the model is asked for
// conceptual links, each returned as a pair of SEMANTIC_RELATION edges
// through the concept.
//
// An answer that cannot be parsed yields no connections and is logged.
// Provider failures are returned.
func (b *Builder) FindConnections(ctx context.Context, cardID1, cardID2 string) ([]core.Connection, error) {
	card1, err := b.cards.GetCardByID(ctx, cardID1)
	if err != nil {
		return nil, fmt.Errorf("loading card %s: %w", cardID1, err)
	}
	card2, err := b.cards.GetCardByID(ctx, cardID2)
	if err != nil {
		return nil, fmt.Errorf("loading card %s: %w", cardID2, err)
	}

	entities1, err := b.entities.Extract(ctx, card1.Content)
	if err != nil {
		return nil, fmt.Errorf("extracting entities: %w", err)
	}
	entities2, err := b.entities.Extract(ctx, card2.Content)
	if err != nil {
		return nil, fmt.Errorf("extracting entities: %w", err)
	}

	connections := SharedConnections(card1, card2, entities1, entities2)
	if len(connections) > 0 {
		return connections, nil
	}

	semantic, err := b.semanticConnections(ctx, card1, card2)
	if err != nil {
		if ai.KindOf(err) != ai.KindParse {
			return nil, fmt.Errorf("finding semantic connections: %w", err)
		}
		b.logger.Warn("semantic connection answer unusable",
			"card1", card1.ID,
			"card2", card2.ID,
			"err", err)
		return []core.Connection{}, nil
	}
	return semantic, nil
}

// SharedConnections returns CONTAINS and APPEARS_IN edges for every entity
// of entities1 whose name also appears in entities2, plus a RELATED_BY_TAGS
// edge when the cards share tags.
func SharedConnections(card1, card2 *core.Card, entities1, entities2 []core.Entity) []core.Connection {
	names2 := make(map[string]struct{}, len(entities2))
	for _, e := range entities2 {
		names2[strings.ToLower(e.Name)] = struct{}{}
	}

	connections := []core.Connection{}
	for _, entity := range entities1 {
		if _, ok := names2[strings.ToLower(entity.Name)]; !ok {
			continue
		}
		connections = append(connections,
			core.Connection{
				SourceID:   card1.ID,
				SourceType: core.NodeCard,
				TargetID:   entity.Name,
				TargetType: core.NodeEntity,
				Strength:   ConnectionStrength(card1, entity),
				Type:       core.ConnectionContains,
			},
			core.Connection{
				SourceID:   entity.Name,
				SourceType: core.NodeEntity,
				TargetID:   card2.ID,
				TargetType: core.NodeCard,
				Strength:   ConnectionStrength(card2, entity),
				Type:       core.ConnectionAppearsIn,
			})
	}

	if overlap := TagOverlap(card1.Tags, card2.Tags); overlap > 0 {
		connections = append(connections, tagConnection(card1, card2, overlap))
	}
	return connections
}

func (b *Builder) semanticConnections(ctx context.Context, card1, card2 *core.Card) ([]core.Connection, error) {
	answer, err := b.gen.Generate(ctx, service.GenerateRequest{
		UserPrompt:  fmt.Sprintf(semanticPrompt, excerpt(card1.Content), excerpt(card2.Content)),
		Temperature: semanticTemperature,
		MaxTokens:   semanticMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return ParseSemanticConnections(answer, card1.ID, card2.ID)
}

type semanticJSON struct {
	Concept     string  `json:"concept"`
	Description string  `json:"description"`
	Strength    float64 `json:"strength"`
}

// ParseSemanticConnections decodes a model answer into edges
// card1 -> concept -> card2. Entries without a concept are skipped and
// strengths are clamped to [0, 1]. A response without a usable JSON array
// yields an empty slice and an ai.KindParse error.
func ParseSemanticConnections(answer, cardID1, cardID2 string) ([]core.Connection, error) {
	raw, err := jsonscan.DecodeArray[semanticJSON](answer)
	if err != nil {
		return []core.Connection{}, err
	}

	connections := make([]core.Connection, 0, 2*len(raw))
	for _, r := range raw {
		concept := strings.TrimSpace(r.Concept)
		if concept == "" {
			continue
		}
		strength := min(max(r.Strength, 0), 1)
		description := strings.TrimSpace(r.Description)
		connections = append(connections,
			core.Connection{
				SourceID:    cardID1,
				SourceType:  core.NodeCard,
				TargetID:    concept,
				TargetType:  core.NodeEntity,
				Strength:    strength,
				Type:        core.ConnectionSemanticRelation,
				Description: description,
			},
			core.Connection{
				SourceID:    concept,
				SourceType:  core.NodeEntity,
				TargetID:    cardID2,
				TargetType:  core.NodeCard,
				Strength:    strength,
				Type:        core.ConnectionSemanticRelation,
				Description: description,
			})
	}
	return connections, nil
}

func excerpt(s string) string {
	n := 0
	for i := range s {
		if n == semanticExcerptRunes {
			return s[:i]
		}
		n++
	}
	return s
}
