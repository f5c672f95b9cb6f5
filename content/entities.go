package content

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/jsonscan"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/service"
)

const entityPrompt = `Extract the key entities from the following content. For each entity, provide:
1. The entity name
2. The entity type (PERSON, ORGANIZATION, LOCATION, CONCEPT, TECHNOLOGY, EVENT, or OTHER)
3. A brief description of the entity based on the content

Format your response as a JSON array of objects with the following structure:
[
  {
    "name": "Entity name",
    "type": "ENTITY_TYPE",
    "description": "Brief description"
  },
  ...
]

Only include significant entities that are central to understanding the content. Limit to 10 most important entities.

Content:
`

const (
	entityMaxTokens      = 2000
	entityTemperature    = 0.3
	heuristicDescription = "Mentioned in the content"
)

// EntityExtractor pulls named entities out of text.
type EntityExtractor struct {
	gen    Generator
	logger *slog.Logger
}

// ExtractorOption configures an EntityExtractor.
type ExtractorOption func(*EntityExtractor)

// WithExtractorLogger sets the extractor's logger.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *EntityExtractor) {
		if logger != nil {
			e.logger = logger.With("component", "entity-extractor")
		}
	}
}

// NewEntityExtractor creates an extractor that asks gen about long content.
func NewEntityExtractor(gen Generator, opts ...ExtractorOption) (*EntityExtractor, error) {
	if gen == nil {
		return nil, ErrGeneratorRequired
	}
	e := &EntityExtractor{
		gen:    gen,
		logger: slog.Default().With("component", "entity-extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract returns at most core.MaxEntities entities, unique by name.
//
// Short text uses ExtractHeuristic. Longer text asks the model for a JSON
// array; when the call fails or the answer cannot be parsed the heuristic
// result is returned and the classified failure is logged. Only
// cancellation of ctx is returned as an error.
func (e *EntityExtractor) Extract(ctx context.Context, text string) ([]core.Entity, error) {
	if utf8.RuneCountInString(text) < ShortContentThreshold {
		return ExtractHeuristic(text), nil
	}

	entities, err := e.extractWithModel(ctx, text)
	if err == nil {
		return entities, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	fallback := ExtractHeuristic(text)
	e.logger.Warn("entity extraction by model failed, using heuristic",
		"kind", ai.KindOf(err).String(),
		"err", err,
		"entities", len(fallback))
	return fallback, nil
}

func (e *EntityExtractor) extractWithModel(ctx context.Context, text string) ([]core.Entity, error) {
	answer, err := e.gen.Generate(ctx, service.GenerateRequest{
		UserPrompt:  entityPrompt + text,
		Temperature: entityTemperature,
		MaxTokens:   entityMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return ParseEntities(answer)
}

type entityJSON struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ParseEntities decodes the JSON array embedded in a model answer. Unknown
// types become core.EntityOther and nameless entries are skipped. A response
// without a usable array yields an empty slice and an ai.KindParse error.
func ParseEntities(answer string) ([]core.Entity, error) {
	raw, err := jsonscan.DecodeArray[entityJSON](answer)
	if err != nil {
		return []core.Entity{}, err
	}

	out := make([]core.Entity, 0, min(len(raw), core.MaxEntities))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		ent := core.Entity{
			Name:        strings.TrimSpace(r.Name),
			Type:        core.ParseEntityType(r.Type),
			Description: strings.TrimSpace(r.Description),
		}
		if core.ValidateEntity(ent) != nil {
			continue
		}
		key := strings.ToLower(ent.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ent)
		if len(out) == core.MaxEntities {
			break
		}
	}
	return out, nil
}

func isEntitySeparator(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '(', ')', '[', ']', '{', '}':
		return true
	}
	return unicode.IsSpace(r)
}

// ExtractHeuristic finds capitalized words that occur more than once, in
// order of first appearance, and guesses each one's type from the words
// around it.
func ExtractHeuristic(text string) []core.Entity {
	tokens := strings.FieldsFunc(text, isEntitySeparator)

	counts := make(map[string]int, len(tokens))
	var order []string
	for _, tok := range tokens {
		r, _ := utf8.DecodeRuneInString(tok)
		if !unicode.IsUpper(r) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	out := make([]core.Entity, 0, core.MaxEntities)
	for _, name := range order {
		if counts[name] < 2 {
			continue
		}
		out = append(out, core.Entity{
			Name:        name,
			Type:        GuessEntityType(name, text),
			Description: heuristicDescription,
		})
		if len(out) == core.MaxEntities {
			break
		}
	}
	return out
}

var typeCues = []struct {
	typ  core.EntityType
	cues []string
}{
	{core.EntityPerson, []string{" he ", " she ", " his ", " her ", " Mr. ", " Mrs. ", " Ms. ", " Dr. "}},
	{core.EntityOrganization, []string{" company ", " organization ", " corporation ", " Inc. ", " LLC ", " Ltd. ", " Corp. "}},
	{core.EntityLocation, []string{" in ", " at ", " from ", " to ", " city ", " country ", " state ", " region "}},
	{core.EntityTechnology, []string{" technology ", " software ", " hardware ", " platform ", " system ", " app ", " application "}},
}

// GuessEntityType checks the cue words directly before or after name in
// context. The first matching group wins; no match means core.EntityConcept.
func GuessEntityType(name, context string) core.EntityType {
	for _, group := range typeCues {
		for _, cue := range group.cues {
			if strings.Contains(context, cue+name) || strings.Contains(context, name+cue) {
				return group.typ
			}
		}
	}
	return core.EntityConcept
}
