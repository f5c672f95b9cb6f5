package knowledge

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/content"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/service"
	"github.com/poiesic/secondbrain/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	cards []*core.Card
}

func (s *memStore) GetCardByID(_ context.Context, id string) (*core.Card, error) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) GetCards(_ context.Context) ([]*core.Card, error) {
	return s.cards, nil
}

type fakeExtractor struct {
	byContent map[string][]core.Entity
	err       error
}

func (f *fakeExtractor) Extract(_ context.Context, text string) ([]core.Entity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byContent[text], nil
}

type fakeGenerator struct {
	mu           sync.Mutex
	GenerateFunc func(ctx context.Context, req service.GenerateRequest) (string, error)
	requests     []service.GenerateRequest
}

func (g *fakeGenerator) Generate(ctx context.Context, req service.GenerateRequest) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	if g.GenerateFunc != nil {
		return g.GenerateFunc(ctx, req)
	}
	return "[]", nil
}

func (g *fakeGenerator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func newTestBuilder(t *testing.T, store *memStore, ex *fakeExtractor, gen *fakeGenerator, opts ...Option) *Builder {
	t.Helper()
	b, err := NewBuilder(store, ex, gen, opts...)
	require.NoError(t, err)
	t.Cleanup(b.Release)
	return b
}

func entity(name string) core.Entity {
	return core.Entity{Name: name, Type: core.EntityConcept, Description: "test"}
}

func TestNewBuilder_Validation(t *testing.T) {
	store := &memStore{}
	ex := &fakeExtractor{}
	gen := &fakeGenerator{}

	tests := []struct {
		name    string
		store   storage.CardStore
		ex      EntityExtractor
		gen     content.Generator
		wantErr error
	}{
		{"missing store", nil, ex, gen, ErrCardStoreRequired},
		{"missing extractor", store, nil, gen, ErrExtractorRequired},
		{"missing generator", store, ex, nil, ErrGeneratorRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(tt.store, tt.ex, tt.gen)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithPoolSize(t *testing.T) {
	b := newTestBuilder(t, &memStore{}, &fakeExtractor{}, &fakeGenerator{}, WithPoolSize(0))
	assert.Equal(t, 1, b.pool.Cap())

	b = newTestBuilder(t, &memStore{}, &fakeExtractor{}, &fakeGenerator{}, WithPoolSize(4))
	assert.Equal(t, 4, b.pool.Cap())
}

func TestTagOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"half shared", []string{"x", "y"}, []string{"x", "z"}, 0.5},
		{"identical", []string{"x", "y"}, []string{"y", "x"}, 1},
		{"disjoint", []string{"x"}, []string{"y"}, 0},
		{"empty a", nil, []string{"x"}, 0},
		{"empty both", nil, nil, 0},
		{"longer list divides", []string{"x"}, []string{"x", "y", "z", "w"}, 0.25},
		{"case insensitive", []string{"Go"}, []string{"go", "db"}, 0.5},
		{"duplicates count once", []string{"x", "x"}, []string{"x"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TagOverlap(tt.a, tt.b), 1e-9)
		})
	}
}

func TestConnectionStrength(t *testing.T) {
	tests := []struct {
		name string
		card *core.Card
		ent  string
		want float64
	}{
		{"content occurrences", &core.Card{Content: "Go is great. go go"}, "Go", 0.3},
		{"title bonus", &core.Card{Title: "Go notes", Content: "go"}, "go", 0.4},
		{"tag bonus", &core.Card{Content: "go", Tags: []string{"golang"}}, "go", 0.3},
		{"all bonuses", &core.Card{Title: "Go", Content: "go", Tags: []string{"go"}}, "go", 0.6},
		{"capped at one", &core.Card{Title: "go", Content: strings.Repeat("go ", 30)}, "go", 1},
		{"no occurrences", &core.Card{Content: "nothing here"}, "Rust", 0},
		{"empty entity name", &core.Card{Content: "anything"}, "", 0},
		{"empty card", &core.Card{}, "x", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ConnectionStrength(tt.card, entity(tt.ent)), 1e-9)
		})
	}
}

func TestConnectionStrength_AlwaysInRange(t *testing.T) {
	contents := []string{"", "a", strings.Repeat("a ", 100)}
	titles := []string{"", "a", "b"}
	tagSets := [][]string{nil, {}, {"a"}, {"b", "ab"}}
	names := []string{"", "a", "b", "zzz"}

	for _, c := range contents {
		for _, title := range titles {
			for _, tags := range tagSets {
				for _, name := range names {
					card := &core.Card{Title: title, Content: c, Tags: tags}
					s := ConnectionStrength(card, entity(name))
					assert.GreaterOrEqual(t, s, 0.0)
					assert.LessOrEqual(t, s, 1.0)
				}
			}
		}
	}
}

func TestBuildGraph(t *testing.T) {
	central := &core.Card{ID: "c", Title: "Central", Content: "Alice and Bob", Tags: []string{"x", "y"}}
	r1 := &core.Card{ID: "r1", Title: "one", Content: "Bob went home", Tags: []string{"z"}}
	r2 := &core.Card{ID: "r2", Title: "two", Content: "nothing", Tags: []string{"x", "z"}}
	r3 := &core.Card{ID: "r3", Title: "three", Content: "Alice here"}
	r4 := &core.Card{ID: "r4", Title: "four", Content: "none", Tags: []string{"w"}}
	store := &memStore{cards: []*core.Card{r1, r2, r3, r4, central}}
	ex := &fakeExtractor{byContent: map[string][]core.Entity{
		"Alice and Bob": {entity("Alice"), entity("Bob")},
	}}

	b := newTestBuilder(t, store, ex, &fakeGenerator{})
	graph, err := b.BuildGraph(context.Background(), "c")
	require.NoError(t, err)

	assert.Same(t, central, graph.CentralCard)
	assert.Equal(t, []core.Entity{entity("Alice"), entity("Bob")}, graph.Entities)
	// Alice matches first, then Bob, then tag-only matches
	assert.Equal(t, []*core.Card{r3, r1, r2}, graph.RelatedCards)

	want := []core.Connection{
		{SourceID: "c", SourceType: core.NodeCard, TargetID: "Alice", TargetType: core.NodeEntity, Strength: 0.1, Type: core.ConnectionContains},
		{SourceID: "c", SourceType: core.NodeCard, TargetID: "Bob", TargetType: core.NodeEntity, Strength: 0.1, Type: core.ConnectionContains},
		{SourceID: "Alice", SourceType: core.NodeEntity, TargetID: "r3", TargetType: core.NodeCard, Strength: 0.1, Type: core.ConnectionAppearsIn},
		{SourceID: "Bob", SourceType: core.NodeEntity, TargetID: "r1", TargetType: core.NodeCard, Strength: 0.1, Type: core.ConnectionAppearsIn},
		{SourceID: "c", SourceType: core.NodeCard, TargetID: "r2", TargetType: core.NodeCard, Strength: 0.5, Type: core.ConnectionRelatedByTags},
	}
	assert.Equal(t, want, graph.Connections)

	for _, conn := range graph.Connections {
		assert.NoError(t, core.ValidateConnection(conn))
	}
}

func TestBuildGraph_RelatedCardsCapped(t *testing.T) {
	central := &core.Card{ID: "c", Content: "central", Tags: []string{"shared"}}
	cards := []*core.Card{central}
	for i := range 25 {
		cards = append(cards, &core.Card{ID: fmt.Sprintf("r%02d", i), Content: "other", Tags: []string{"shared"}})
	}
	store := &memStore{cards: cards}

	b := newTestBuilder(t, store, &fakeExtractor{}, &fakeGenerator{}, WithPoolSize(3))
	graph, err := b.BuildGraph(context.Background(), "c")
	require.NoError(t, err)

	require.Len(t, graph.RelatedCards, core.MaxRelatedCards)
	for i, c := range graph.RelatedCards {
		assert.Equal(t, fmt.Sprintf("r%02d", i), c.ID)
	}
	assert.Empty(t, graph.Entities)
	assert.NotNil(t, graph.Entities)
}

func TestBuildGraph_Deterministic(t *testing.T) {
	var cards []*core.Card
	central := &core.Card{ID: "c", Content: "Kafka Redis", Tags: []string{"infra"}}
	cards = append(cards, central)
	for i := range 40 {
		c := &core.Card{ID: fmt.Sprintf("n%02d", i), Content: "plain"}
		switch i % 4 {
		case 0:
			c.Content = "uses Redis"
		case 1:
			c.Content = "uses Kafka"
		case 2:
			c.Tags = []string{"infra"}
		}
		cards = append(cards, c)
	}
	store := &memStore{cards: cards}
	ex := &fakeExtractor{byContent: map[string][]core.Entity{
		"Kafka Redis": {entity("Kafka"), entity("Redis")},
	}}
	b := newTestBuilder(t, store, ex, &fakeGenerator{}, WithPoolSize(8))

	first, err := b.BuildGraph(context.Background(), "c")
	require.NoError(t, err)
	for range 5 {
		again, err := b.BuildGraph(context.Background(), "c")
		require.NoError(t, err)
		assert.Equal(t, first.RelatedCards, again.RelatedCards)
	}

	// Kafka mentions come first; 10 of them exist so nothing else fits
	for _, c := range first.RelatedCards {
		assert.Equal(t, "uses Kafka", c.Content)
	}
}

func TestBuildGraph_Errors(t *testing.T) {
	store := &memStore{cards: []*core.Card{{ID: "c", Content: "text"}}}

	t.Run("card not found", func(t *testing.T) {
		b := newTestBuilder(t, store, &fakeExtractor{}, &fakeGenerator{})
		_, err := b.BuildGraph(context.Background(), "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("extraction failure", func(t *testing.T) {
		b := newTestBuilder(t, store, &fakeExtractor{err: context.Canceled}, &fakeGenerator{})
		_, err := b.BuildGraph(context.Background(), "c")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("cancelled during scan", func(t *testing.T) {
		b := newTestBuilder(t, store, &fakeExtractor{}, &fakeGenerator{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		graph, err := b.BuildGraph(ctx, "c")
		assert.Nil(t, graph)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFindConnections_SharedEntitiesAndTags(t *testing.T) {
	a := &core.Card{ID: "a", Content: "Go and Rust", Tags: []string{"lang", "sys"}}
	b := &core.Card{ID: "b", Content: "go tooling", Tags: []string{"lang"}}
	store := &memStore{cards: []*core.Card{a, b}}
	ex := &fakeExtractor{byContent: map[string][]core.Entity{
		"Go and Rust": {entity("Go"), entity("Rust")},
		"go tooling":  {entity("go")},
	}}
	gen := &fakeGenerator{}
	builder := newTestBuilder(t, store, ex, gen)

	conns, err := builder.FindConnections(context.Background(), "a", "b")
	require.NoError(t, err)

	want := []core.Connection{
		{SourceID: "a", SourceType: core.NodeCard, TargetID: "Go", TargetType: core.NodeEntity, Strength: 0.1, Type: core.ConnectionContains},
		{SourceID: "Go", SourceType: core.NodeEntity, TargetID: "b", TargetType: core.NodeCard, Strength: 0.1, Type: core.ConnectionAppearsIn},
		{SourceID: "a", SourceType: core.NodeCard, TargetID: "b", TargetType: core.NodeCard, Strength: 0.5, Type: core.ConnectionRelatedByTags},
	}
	assert.Equal(t, want, conns)
	assert.Zero(t, gen.CallCount())
}

func TestFindConnections_SemanticFallback(t *testing.T) {
	a := &core.Card{ID: "a", Content: "Photosynthesis in plants"}
	b := &core.Card{ID: "b", Content: "Solar panel efficiency"}
	store := &memStore{cards: []*core.Card{a, b}}

	t.Run("parsed concepts", func(t *testing.T) {
		gen := &fakeGenerator{GenerateFunc: func(_ context.Context, req service.GenerateRequest) (string, error) {
			return "Sure!\n```json\n[{\"concept\": \"Solar energy\", \"description\": \"Both convert sunlight\", \"strength\": 0.8}]\n```", nil
		}}
		builder := newTestBuilder(t, store, &fakeExtractor{}, gen)

		conns, err := builder.FindConnections(context.Background(), "a", "b")
		require.NoError(t, err)
		want := []core.Connection{
			{SourceID: "a", SourceType: core.NodeCard, TargetID: "Solar energy", TargetType: core.NodeEntity, Strength: 0.8, Type: core.ConnectionSemanticRelation, Description: "Both convert sunlight"},
			{SourceID: "Solar energy", SourceType: core.NodeEntity, TargetID: "b", TargetType: core.NodeCard, Strength: 0.8, Type: core.ConnectionSemanticRelation, Description: "Both convert sunlight"},
		}
		assert.Equal(t, want, conns)

		require.Equal(t, 1, gen.CallCount())
		prompt := gen.requests[0].UserPrompt
		assert.Contains(t, prompt, "Content 1: Photosynthesis in plants")
		assert.Contains(t, prompt, "Content 2: Solar panel efficiency")
	})

	t.Run("unparseable answer gives no connections", func(t *testing.T) {
		gen := &fakeGenerator{GenerateFunc: func(context.Context, service.GenerateRequest) (string, error) {
			return "I could not find any.", nil
		}}
		builder := newTestBuilder(t, store, &fakeExtractor{}, gen)

		conns, err := builder.FindConnections(context.Background(), "a", "b")
		require.NoError(t, err)
		assert.NotNil(t, conns)
		assert.Empty(t, conns)
	})

	t.Run("provider failure is returned", func(t *testing.T) {
		gen := &fakeGenerator{GenerateFunc: func(context.Context, service.GenerateRequest) (string, error) {
			return "", ai.NewError(ai.KindPaymentRequired, ai.ProviderOpenAI, "quota exhausted", nil)
		}}
		builder := newTestBuilder(t, store, &fakeExtractor{}, gen)

		_, err := builder.FindConnections(context.Background(), "a", "b")
		require.Error(t, err)
		assert.Equal(t, ai.KindPaymentRequired, ai.KindOf(err))
	})
}

func TestFindConnections_MissingCard(t *testing.T) {
	store := &memStore{cards: []*core.Card{{ID: "a", Content: "x"}}}
	builder := newTestBuilder(t, store, &fakeExtractor{}, &fakeGenerator{})

	_, err := builder.FindConnections(context.Background(), "a", "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestParseSemanticConnections(t *testing.T) {
	answer := `[
		{"concept": "High", "description": "too strong", "strength": 1.7},
		{"concept": "Low", "description": "negative", "strength": -0.2},
		{"concept": "  ", "description": "blank", "strength": 0.5}
	]`

	conns, err := ParseSemanticConnections(answer, "a", "b")
	require.NoError(t, err)
	require.Len(t, conns, 4)
	assert.Equal(t, 1.0, conns[0].Strength)
	assert.Equal(t, 0.0, conns[2].Strength)
	for _, c := range conns {
		assert.NoError(t, core.ValidateConnection(c))
	}

	conns, err = ParseSemanticConnections("no json", "a", "b")
	assert.Equal(t, ai.KindParse, ai.KindOf(err))
	assert.NotNil(t, conns)
	assert.Empty(t, conns)
}

func TestLayout_Errors(t *testing.T) {
	_, err := Layout(nil, LayoutOptions{Width: 800, Height: 600})
	assert.ErrorIs(t, err, ErrNilGraph)

	_, err = Layout(&core.KnowledgeGraph{}, LayoutOptions{Width: 800, Height: 600})
	assert.ErrorIs(t, err, ErrNilGraph)

	_, err = Layout(&core.KnowledgeGraph{CentralCard: &core.Card{ID: "c"}}, LayoutOptions{Width: 0, Height: 600})
	assert.Error(t, err)
}

func sampleGraph() *core.KnowledgeGraph {
	central := &core.Card{ID: "c", Content: "Alice Bob Carol", Tags: []string{"x"}}
	related := []*core.Card{
		{ID: "r1", Content: "Alice", Tags: []string{"x"}},
		{ID: "r2", Content: "Bob"},
		{ID: "r3", Content: "Carol", Tags: []string{"x"}},
	}
	entities := []core.Entity{entity("Alice"), entity("Bob"), entity("Carol")}
	return &core.KnowledgeGraph{
		CentralCard:  central,
		Entities:     entities,
		RelatedCards: related,
		Connections:  Connect(central, entities, related),
	}
}

func TestLayout_StaysInsideMargins(t *testing.T) {
	opts := LayoutOptions{Width: 1000, Height: 700}
	positions, err := Layout(sampleGraph(), opts)
	require.NoError(t, err)
	require.Len(t, positions, 7)

	for _, p := range positions {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), p.ID)
		assert.GreaterOrEqual(t, p.X, DefaultMargin, p.ID)
		assert.LessOrEqual(t, p.X, opts.Width-DefaultMargin, p.ID)
		assert.GreaterOrEqual(t, p.Y, DefaultMargin, p.ID)
		assert.LessOrEqual(t, p.Y, opts.Height-DefaultMargin, p.ID)
	}
}

func TestLayout_OrderAndDeterminism(t *testing.T) {
	graph := sampleGraph()
	opts := LayoutOptions{Width: 1200, Height: 800, Iterations: 50}

	first, err := Layout(graph, opts)
	require.NoError(t, err)
	second, err := Layout(graph, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var ids []string
	var types []core.NodeType
	for _, p := range first {
		ids = append(ids, p.ID)
		types = append(types, p.Type)
	}
	assert.Equal(t, []string{"c", "Alice", "Bob", "Carol", "r1", "r2", "r3"}, ids)
	assert.Equal(t, []core.NodeType{
		core.NodeCard, core.NodeEntity, core.NodeEntity, core.NodeEntity,
		core.NodeCard, core.NodeCard, core.NodeCard,
	}, types)
}

func TestLayout_CentralCardAlone(t *testing.T) {
	graph := &core.KnowledgeGraph{CentralCard: &core.Card{ID: "c"}}
	positions, err := Layout(graph, LayoutOptions{Width: 800, Height: 600})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.InDelta(t, 400, positions[0].X, 1e-9)
	assert.InDelta(t, 300, positions[0].Y, 1e-9)
}

func TestLayout_SymmetricGraphKeepsCentre(t *testing.T) {
	central := &core.Card{ID: "c", Content: "N E S W"}
	entities := []core.Entity{entity("N"), entity("E"), entity("S"), entity("W")}
	graph := &core.KnowledgeGraph{
		CentralCard: central,
		Entities:    entities,
		Connections: Connect(central, entities, nil),
	}

	positions, err := Layout(graph, LayoutOptions{Width: 900, Height: 900})
	require.NoError(t, err)
	assert.InDelta(t, 450, positions[0].X, 5)
	assert.InDelta(t, 450, positions[0].Y, 5)

	// Entities spread out rather than collapsing onto the centre
	for _, p := range positions[1:] {
		d := math.Hypot(p.X-450, p.Y-450)
		assert.Greater(t, d, 10.0, p.ID)
		assert.GreaterOrEqual(t, p.X, DefaultMargin, p.ID)
		assert.LessOrEqual(t, p.X, 900-DefaultMargin, p.ID)
		assert.GreaterOrEqual(t, p.Y, DefaultMargin, p.ID)
		assert.LessOrEqual(t, p.Y, 900-DefaultMargin, p.ID)
	}
}

func TestOnRing_QuarterTurnsAreExact(t *testing.T) {
	want := []vec{{400, 100}, {100, 400}, {-200, 100}, {100, -200}}
	for i, w := range want {
		assert.Equal(t, w, onRing(100, 100, 300, i, 4), i)
	}
}

func TestLayout_TinyCanvasPinsToMiddle(t *testing.T) {
	positions, err := Layout(sampleGraph(), LayoutOptions{Width: 150, Height: 150})
	require.NoError(t, err)
	for _, p := range positions {
		assert.InDelta(t, 75, p.X, 1e-9)
		assert.InDelta(t, 75, p.Y, 1e-9)
	}
}

func TestMentions(t *testing.T) {
	card := &core.Card{Title: "Weekly Notes", Content: "Met with ALICE", Tags: []string{"project-x"}}

	assert.True(t, Mentions(card, "alice"))
	assert.True(t, Mentions(card, "weekly"))
	assert.True(t, Mentions(card, "Project"))
	assert.False(t, Mentions(card, "bob"))
	assert.False(t, Mentions(card, ""))
	assert.False(t, Mentions(nil, "alice"))
}
