package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "plain content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, IDFromContent(tt.content), IDFromContent(tt.content))
		})
	}
}

func TestIDFromContent_KnownDigests(t *testing.T) {
	assert.Equal(t, ID(1726010951319763853), IDFromContent("test content"))
	assert.Equal(t, ID(12845362516788860686), IDFromContent(""))
}

func TestIDFromContent_Different(t *testing.T) {
	assert.NotEqual(t, IDFromContent("content1"), IDFromContent("content2"))
}

func TestParseCardType(t *testing.T) {
	got, err := ParseCardType(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, CardTypePDF, got)
	assert.Equal(t, "pdf", got.String())

	_, err = ParseCardType("video")
	assert.ErrorIs(t, err, ErrInvalidCardType)
	assert.Equal(t, "unknown", CardType(99).String())
}

func TestCard_HasTag(t *testing.T) {
	card := &Card{Tags: []string{"Go", "databases"}}
	assert.True(t, card.HasTag("go"))
	assert.True(t, card.HasTag("DATABASES"))
	assert.False(t, card.HasTag("rust"))
}

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		in   string
		want EntityType
	}{
		{"PERSON", EntityPerson},
		{"organization", EntityOrganization},
		{" Location ", EntityLocation},
		{"TECHNOLOGY", EntityTechnology},
		{"EVENT", EntityEvent},
		{"WIDGET", EntityOther},
		{"", EntityOther},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEntityType(tt.in))
		})
	}
}

func TestContentCategory(t *testing.T) {
	assert.Equal(t, "technical", CategoryTechnical.String())
	assert.Equal(t, CategoryBusiness, ParseContentCategory("Business"))
	assert.Equal(t, CategoryUnknown, ParseContentCategory("poetry"))
	assert.Len(t, DetectableCategories, 6)
	assert.Equal(t, CategoryAcademic, DetectableCategories[0])
}

func TestParseSummaryType(t *testing.T) {
	tests := []struct {
		in   string
		want SummaryType
	}{
		{"Concise summary", SummaryConcise},
		{"Detailed summary", SummaryDetailed},
		{"Bullet points", SummaryBulletPoints},
		{"Question and answer", SummaryQuestionAnswer},
		{"Question & Answer", SummaryQuestionAnswer},
		{"Key facts", SummaryKeyFacts},
		{"something else", SummaryConcise},
		{"", SummaryConcise},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSummaryType(tt.in))
		})
	}
	assert.Equal(t, "Bullet points", SummaryBulletPoints.String())
}
