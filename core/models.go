package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
// Cards carry string IDs assigned by the store; ID is used for content-hash indexes.
type ID uint64

// IDFromContent generates a deterministic ID from text content: the first
// 8 bytes of its BLAKE2b-256 digest, little-endian.
func IDFromContent(text string) ID {
	sum := blake2b.Sum256([]byte(text))
	return ID(binary.LittleEndian.Uint64(sum[:8]))
}

// CardType is the structural origin of a card.
type CardType int

const (
	CardTypeURL CardType = iota + 1
	CardTypeSearch
	CardTypePDF
	CardTypeNote
	CardTypeAudio
)

var cardTypeNames = map[CardType]string{
	CardTypeURL:    "url",
	CardTypeSearch: "search",
	CardTypePDF:    "pdf",
	CardTypeNote:   "note",
	CardTypeAudio:  "audio",
}

func (t CardType) String() string {
	if name, ok := cardTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseCardType maps a case-insensitive name to a CardType.
func ParseCardType(s string) (CardType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range cardTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, ErrInvalidCardType
}

// Card is a stored unit of captured content.
// The AI core receives cards by value from the store and never mutates them.
type Card struct {
	ID           string
	Title        string
	Content      string
	Summary      string
	Type         CardType
	Source       string
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Language     string
	AIModel      string // Model that produced Summary
	SummaryType  string
	ThumbnailURL string
	PageCount    int // Zero when not a paged document
}

// HasTag reports whether the card carries tag, ignoring case.
func (c *Card) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// EntityType classifies a named entity.
type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
	EntityConcept      EntityType = "CONCEPT"
	EntityTechnology   EntityType = "TECHNOLOGY"
	EntityEvent        EntityType = "EVENT"
	EntityOther        EntityType = "OTHER"
)

// ParseEntityType maps a type name to an EntityType. Unknown names become EntityOther.
func ParseEntityType(s string) EntityType {
	switch t := EntityType(strings.ToUpper(strings.TrimSpace(s))); t {
	case EntityPerson, EntityOrganization, EntityLocation, EntityConcept,
		EntityTechnology, EntityEvent, EntityOther:
		return t
	default:
		return EntityOther
	}
}

// Entity is a named thing mentioned in content.
// Name is the dedup key within a single extraction run.
type Entity struct {
	Name        string
	Type        EntityType
	Description string
}

// NodeType identifies which kind of node a connection endpoint refers to.
type NodeType string

const (
	NodeCard   NodeType = "CARD"
	NodeEntity NodeType = "ENTITY"
)

// ConnectionType describes why two nodes are connected.
type ConnectionType string

const (
	ConnectionContains         ConnectionType = "CONTAINS"
	ConnectionAppearsIn        ConnectionType = "APPEARS_IN"
	ConnectionRelatedByTags    ConnectionType = "RELATED_BY_TAGS"
	ConnectionSemanticRelation ConnectionType = "SEMANTIC_RELATION"
)

// Connection is a directed, weighted edge. Parallel edges of different types
// between the same pair are allowed.
type Connection struct {
	SourceID    string
	SourceType  NodeType
	TargetID    string
	TargetType  NodeType
	Strength    float64 // Normalized to [0,1]
	Type        ConnectionType
	Description string
}

// KnowledgeGraph is a request-scoped subgraph around one card. It is never persisted.
type KnowledgeGraph struct {
	CentralCard  *Card
	Entities     []Entity
	RelatedCards []*Card // At most MaxRelatedCards
	Connections  []Connection
}

// MaxRelatedCards bounds KnowledgeGraph.RelatedCards.
const MaxRelatedCards = 10

// MaxEntities bounds every entity extraction result.
const MaxEntities = 10
