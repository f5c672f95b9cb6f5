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

import "errors"

var (
	// ErrCardStoreRequired is returned when a Builder is created without a card store.
	ErrCardStoreRequired = errors.New("card store is required")

	// ErrExtractorRequired is returned when a Builder is created without an entity extractor.
	ErrExtractorRequired = errors.New("entity extractor is required")

	// ErrGeneratorRequired is returned when a Builder is created without a generator.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrNilGraph is returned by Layout for a graph without a central card.
	ErrNilGraph = errors.New("graph has no central card")
)
