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


package badger

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/storage"
)

// CardRepository implements storage.CardRepository for BadgerDB.
type CardRepository struct {
	backend *Backend
	now     func() time.Time
}

var _ storage.CardRepository = (*CardRepository)(nil)

// NewCardRepository creates a new CardRepository.
func NewCardRepository(backend *Backend) (*CardRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &CardRepository{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *CardRepository) Close() error {
	return nil
}

// AddCards adds one or more cards to storage.
func (r *CardRepository) AddCards(ctx context.Context, cards ...*core.Card) ([]*core.Card, error) {
	for _, card := range cards {
		if err := core.ValidateCard(card); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, card := range cards {
			if err := ctx.Err(); err != nil {
				return err
			}
			if card.ID == "" {
				card.ID = uuid.NewString()
			} else {
				existing, err := readCard(tx, makeCardKey(card.ID))
				if err != nil {
					return err
				}
				if existing != nil {
					return storage.ErrDuplicateKey
				}
			}

			now := r.now().Truncate(time.Microsecond)
			if card.CreatedAt.IsZero() {
				card.CreatedAt = now
			}
			card.UpdatedAt = now

			if err := tx.Set(makeCardKey(card.ID), storage.MarshalCard(card)); err != nil {
				return err
			}
			if err := writeIndexes(tx, card); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// UpdateCards updates existing cards.
func (r *CardRepository) UpdateCards(ctx context.Context, cards ...*core.Card) ([]*core.Card, error) {
	for _, card := range cards {
		if err := core.ValidateCard(card); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, card := range cards {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := makeCardKey(card.ID)
			old, err := readCard(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			if card.CreatedAt.IsZero() {
				card.CreatedAt = old.CreatedAt
			}
			card.UpdatedAt = r.now().Truncate(time.Microsecond)

			if err := deleteIndexes(tx, old); err != nil {
				return err
			}
			if err := tx.Set(key, storage.MarshalCard(card)); err != nil {
				return err
			}
			if err := writeIndexes(tx, card); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// DeleteCards removes cards by their IDs.
func (r *CardRepository) DeleteCards(ctx context.Context, ids ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCardKey(id)
			card, err := readCard(tx, key)
			if err != nil {
				return err
			}
			if card == nil {
				return storage.ErrNotFound
			}
			if err := deleteIndexes(tx, card); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetCardByID retrieves a single card by ID.
func (r *CardRepository) GetCardByID(ctx context.Context, id string) (*core.Card, error) {
	var result *core.Card
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readCard(tx, makeCardKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCards retrieves every card, newest first.
func (r *CardRepository) GetCards(ctx context.Context) ([]*core.Card, error) {
	var results []*core.Card
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(cardDatePrefix + ":")
		// 0xff sorts after every timestamp byte
		start := append(bytes.Clone(prefix), 0xff)
		for iter.Seek(start); iter.ValidForPrefix(prefix); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			card, err := readIndexedCard(tx, iter.Item())
			if err != nil {
				return err
			}
			if card != nil {
				results = append(results, card)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetCardsByTag retrieves the cards carrying tag, oldest first.
func (r *CardRepository) GetCardsByTag(ctx context.Context, tag string) ([]*core.Card, error) {
	var results []*core.Card
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := makePartialCardTagKey(tag)
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			card, err := readIndexedCard(tx, iter.Item())
			if err != nil {
				return err
			}
			// Tags containing ':' can share a prefix with another tag
			if card != nil && card.HasTag(strings.TrimSpace(tag)) {
				results = append(results, card)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	sortOldestFirst(results)
	return results, nil
}

// FindCardByContent finds the card whose content equals content.
func (r *CardRepository) FindCardByContent(ctx context.Context, content string) (*core.Card, error) {
	var result *core.Card
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCardContentKey(content))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		card, err := readIndexedCard(tx, item)
		if err != nil {
			return err
		}
		// Hash collisions are possible
		if card == nil || card.Content != content {
			return storage.ErrNotFound
		}
		result = card
		return nil
	}, false)
	return result, err
}

// Helper functions

// readCard reads a card from the transaction. A missing key yields nil, nil.
func readCard(tx *badger.Txn, key []byte) (*core.Card, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var card *core.Card
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		card, unmarshalErr = storage.UnmarshalCard(val)
		return unmarshalErr
	})
	return card, err
}

// readIndexedCard follows an index entry whose value is a card ID.
func readIndexedCard(tx *badger.Txn, item *badger.Item) (*core.Card, error) {
	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return readCard(tx, makeCardKey(string(id)))
}

func writeIndexes(tx *badger.Txn, card *core.Card) error {
	id := []byte(card.ID)
	if err := tx.Set(makeCardDateKey(card.CreatedAt, card.ID), id); err != nil {
		return err
	}
	for _, tag := range uniqueTags(card.Tags) {
		if err := tx.Set(makeCardTagKey(tag, card.ID), id); err != nil {
			return err
		}
	}
	if card.Content != "" {
		if err := tx.Set(makeCardContentKey(card.Content), id); err != nil {
			return err
		}
	}
	return nil
}

func deleteIndexes(tx *badger.Txn, card *core.Card) error {
	if err := tx.Delete(makeCardDateKey(card.CreatedAt, card.ID)); err != nil {
		return err
	}
	for _, tag := range uniqueTags(card.Tags) {
		if err := tx.Delete(makeCardTagKey(tag, card.ID)); err != nil {
			return err
		}
	}
	if card.Content == "" {
		return nil
	}
	// Another card with the same content may own the entry now
	contentKey := makeCardContentKey(card.Content)
	item, err := tx.Get(contentKey)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	owner, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if string(owner) != card.ID {
		return nil
	}
	return tx.Delete(contentKey)
}

// uniqueTags lowercases tags and drops blanks and duplicates.
func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func sortOldestFirst(cards []*core.Card) {
	slices.SortStableFunc(cards, func(a, b *core.Card) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
