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


package content

import "errors"

var (
	// ErrGeneratorRequired is returned when a component that calls the AI is built without a generator.
	ErrGeneratorRequired = errors.New("AI generator required")

	// ErrSummaryServiceRequired is returned when a Summarizer is built without a summary service.
	ErrSummaryServiceRequired = errors.New("summary service required")

	// ErrDetectorRequired is returned when a Summarizer is built without a category detector.
	ErrDetectorRequired = errors.New("category detector required")

	// ErrExtractorRequired is returned when a Summarizer is built without an entity extractor.
	ErrExtractorRequired = errors.New("entity extractor required")
)
