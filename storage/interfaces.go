package storage

import (
	"context"

	"github.com/poiesic/secondbrain/core"
)

// CardStore is the read-only view of stored cards used by the knowledge
// graph builder. Implementations must be safe for concurrent use.
type CardStore interface {
	// GetCardByID returns the card with the given ID.
	// Returns ErrNotFound if no such card exists.
	GetCardByID(ctx context.Context, id string) (*core.Card, error)

	// GetCards returns every stored card, newest first.
	GetCards(ctx context.Context) ([]*core.Card, error)
}

// CardRepository provides operations for managing cards.
type CardRepository interface {
	CardStore

	// AddCards validates and stores one or more cards.
	// Cards without an ID receive a new one. CreatedAt is set if not
	// already set and UpdatedAt is always set.
	// Returns the cards with IDs and timestamps populated.
	AddCards(ctx context.Context, cards ...*core.Card) ([]*core.Card, error)

	// UpdateCards replaces existing cards and refreshes UpdatedAt.
	// Returns ErrNotFound if any card doesn't exist.
	UpdateCards(ctx context.Context, cards ...*core.Card) ([]*core.Card, error)

	// DeleteCards removes cards and their index entries.
	// Returns ErrNotFound if any card doesn't exist.
	DeleteCards(ctx context.Context, ids ...string) error

	// GetCardsByTag returns the cards carrying tag, ignoring case.
	GetCardsByTag(ctx context.Context, tag string) ([]*core.Card, error)

	// FindCardByContent returns the card whose content is exactly content.
	// Returns ErrNotFound if there is none.
	FindCardByContent(ctx context.Context, content string) (*core.Card, error)

	// Close releases repository resources. It does not close the backend.
	Close() error
}
