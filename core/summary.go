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

import "strings"

// ContentCategory is the detected genre of free text. It selects specialized
// summary prompts and is distinct from CardType.
//
// Declaration order matters: ties during detection resolve to the earliest category.
type ContentCategory int

const (
	CategoryAcademic ContentCategory = iota
	CategoryNews
	CategoryTechnical
	CategoryCreative
	CategoryBusiness
	CategoryPersonal
	CategoryUnknown
)

// DetectableCategories lists the categories detection can produce, in tie-break order.
var DetectableCategories = []ContentCategory{
	CategoryAcademic,
	CategoryNews,
	CategoryTechnical,
	CategoryCreative,
	CategoryBusiness,
	CategoryPersonal,
}

var categoryNames = [...]string{
	CategoryAcademic:  "academic",
	CategoryNews:      "news",
	CategoryTechnical: "technical",
	CategoryCreative:  "creative",
	CategoryBusiness:  "business",
	CategoryPersonal:  "personal",
	CategoryUnknown:   "unknown",
}

func (c ContentCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseContentCategory maps a name to a category. Unrecognized names yield CategoryUnknown.
func ParseContentCategory(s string) ContentCategory {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == s {
			return ContentCategory(i)
		}
	}
	return CategoryUnknown
}

// SummaryType is the requested shape of a summary.
type SummaryType int

const (
	SummaryConcise SummaryType = iota
	SummaryDetailed
	SummaryBulletPoints
	SummaryQuestionAnswer
	SummaryKeyFacts
)

var summaryTypeLabels = [...]string{
	SummaryConcise:        "Concise summary",
	SummaryDetailed:       "Detailed summary",
	SummaryBulletPoints:   "Bullet points",
	SummaryQuestionAnswer: "Question and answer",
	SummaryKeyFacts:       "Key facts",
}

// String returns the display label used by task bundles and stored cards.
func (t SummaryType) String() string {
	if t < 0 || int(t) >= len(summaryTypeLabels) {
		return summaryTypeLabels[SummaryConcise]
	}
	return summaryTypeLabels[t]
}

// ParseSummaryType accepts display labels ("Bullet points", "Question & Answer")
// and short names ("bullets", "qa", "key_facts"). Anything else is SummaryConcise.
func ParseSummaryType(s string) SummaryType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "detailed summary", "detailed":
		return SummaryDetailed
	case "bullet points", "bullets", "bullet_points":
		return SummaryBulletPoints
	case "question and answer", "question & answer", "qa", "q&a", "question_answer":
		return SummaryQuestionAnswer
	case "key facts", "key_facts", "facts":
		return SummaryKeyFacts
	default:
		return SummaryConcise
	}
}

// SummarizationOptions is a per-call value object.
type SummarizationOptions struct {
	Type               SummaryType
	Language           string
	MaxLength          int // Zero means provider default
	CustomInstructions string

	// SystemPrompt replaces the system prompt otherwise chosen from the
	// card type and summary type.
	SystemPrompt string
}

// SummarizationResult bundles a content-aware summary with what was derived along the way.
type SummarizationResult struct {
	Summary  string
	Category ContentCategory
	Entities []Entity
}
