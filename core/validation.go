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


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateCard checks that a card is usable by the store and the AI core.
func ValidateCard(card *Card) error {
	if card == nil {
		return fmt.Errorf("%w: card is nil", ErrInvalidCard)
	}

	if strings.TrimSpace(card.Title) == "" && strings.TrimSpace(card.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCard, ErrEmptyContent)
	}

	if _, ok := cardTypeNames[card.Type]; !ok {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidCard, ErrInvalidCardType, card.Type)
	}

	if !card.CreatedAt.IsZero() && !IsValidTimestamp(card.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidCard, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEntity checks an extracted entity.
func ValidateEntity(entity Entity) error {
	if strings.TrimSpace(entity.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyEntityName)
	}
	return nil
}

// ValidateConnection checks endpoint presence and the strength bound.
func ValidateConnection(conn Connection) error {
	if conn.SourceID == "" || conn.TargetID == "" {
		return fmt.Errorf("%w: missing endpoint", ErrInvalidConnection)
	}
	if conn.Strength < 0 || conn.Strength > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidConnection, ErrStrengthOutOfRange, conn.Strength)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is not in the future.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
