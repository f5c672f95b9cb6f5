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

import "errors"

var (
	// ErrInvalidCard indicates a Card failed validation.
	ErrInvalidCard = errors.New("invalid card")

	// ErrInvalidCardType indicates an unknown CardType value.
	ErrInvalidCardType = errors.New("invalid card type")

	// ErrEmptyContent indicates both Title and Content are empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidEntity indicates an Entity failed validation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrEmptyEntityName indicates the entity Name field is empty.
	ErrEmptyEntityName = errors.New("entity name cannot be empty")

	// ErrInvalidConnection indicates a Connection failed validation.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrStrengthOutOfRange indicates a connection strength outside [0,1].
	ErrStrengthOutOfRange = errors.New("strength must be within [0,1]")
)
