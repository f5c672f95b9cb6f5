package knowledge

import (
	"strings"

	"github.com/poiesic/secondbrain/core"
)

const (
	titleWeight = 3
	tagWeight   = 2
	scoreScale  = 10.0
)

// ConnectionStrength scores how strongly entity is tied to card: one point
// per occurrence in the content, three if the title mentions it and two if
// any tag does. The score is divided by ten and capped at 1.
func ConnectionStrength(card *core.Card, entity core.Entity) float64 {
	name := strings.ToLower(entity.Name)
	if card == nil || name == "" {
		return 0
	}

	score := strings.Count(strings.ToLower(card.Content), name)
	if strings.Contains(strings.ToLower(card.Title), name) {
		score += titleWeight
	}
	if tagMentions(card.Tags, name) {
		score += tagWeight
	}
	return min(float64(score)/scoreScale, 1)
}

// Mentions reports whether name appears in the card's content, title or
// tags, ignoring case.
func Mentions(card *core.Card, name string) bool {
	name = strings.ToLower(name)
	if card == nil || name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(card.Content), name) ||
		strings.Contains(strings.ToLower(card.Title), name) ||
		tagMentions(card.Tags, name)
}

// tagMentions expects a lowercased name.
func tagMentions(tags []string, name string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), name) {
			return true
		}
	}
	return false
}

// TagOverlap is the number of distinct tags a and b share divided by the
// length of the longer list. Tags compare case-insensitively. Either list
// being empty gives 0.
func TagOverlap(a, b []string) float64 {
	longest := max(len(a), len(b))
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inB := make(map[string]struct{}, len(b))
	for _, tag := range b {
		inB[strings.ToLower(tag)] = struct{}{}
	}
	shared := make(map[string]struct{})
	for _, tag := range a {
		key := strings.ToLower(tag)
		if _, ok := inB[key]; ok {
			shared[key] = struct{}{}
		}
	}
	return float64(len(shared)) / float64(longest)
}

// SharesTag reports whether a and b have at least one tag in common.
func SharesTag(a, b []string) bool {
	return TagOverlap(a, b) > 0
}
