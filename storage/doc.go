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


// Package storage defines the card store used by secondbrain.
//
// The AI core only reads cards, through CardStore. CardRepository adds the
// write side used by the command line tool and the root facade. The badger
// subpackage provides the BadgerDB implementation.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	cards, err := badger.NewCardRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cards.Close()
//
// Use in tests with in-memory storage:
//
//	cards, backend, err := badger.NewMemoryCardRepository()
//
// # Encoding
//
// Cards are stored in a compact binary form built from mus-go primitives.
// Timestamps are kept at microsecond precision in UTC.
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
package storage
