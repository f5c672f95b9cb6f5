package storage

import (
	"testing"
	"time"

	"github.com/poiesic/secondbrain/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalCard(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		card *core.Card
	}{
		{
			name: "minimal card",
			card: &core.Card{
				ID:      "c1",
				Title:   "Hello",
				Type:    core.CardTypeNote,
				Content: "world",
			},
		},
		{
			name: "full card",
			card: &core.Card{
				ID:           "6f1c1f0e-7f0c-4a49-9d57-7b8a3f9f2b10",
				Title:        "Distributed systems reading list",
				Content:      "Notes on consensus, replication and failure detectors.",
				Summary:      "A list of papers.",
				Type:         core.CardTypeURL,
				Source:       "https://example.com/reading",
				Tags:         []string{"distributed", "papers", "consensus"},
				CreatedAt:    now.Add(-time.Hour),
				UpdatedAt:    now,
				Language:     "en",
				AIModel:      "gpt-4o",
				SummaryType:  "Concise summary",
				ThumbnailURL: "https://example.com/thumb.png",
				PageCount:    12,
			},
		},
		{
			name: "unicode content",
			card: &core.Card{
				ID:      "c3",
				Title:   "Café ☕",
				Content: "日本語のテキスト",
				Type:    core.CardTypePDF,
				Tags:    []string{"Ünïcödé"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalCard(tt.card)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalCard(data)
			require.NoError(t, err)
			assert.Equal(t, tt.card, decoded)
		})
	}
}

func TestMarshalCard_ZeroTimesSurvive(t *testing.T) {
	card := &core.Card{ID: "z", Title: "t", Type: core.CardTypeNote}

	decoded, err := UnmarshalCard(MarshalCard(card))
	require.NoError(t, err)
	assert.True(t, decoded.CreatedAt.IsZero())
	assert.True(t, decoded.UpdatedAt.IsZero())
}

func TestUnmarshalCard_Invalid(t *testing.T) {
	valid := MarshalCard(&core.Card{ID: "c1", Title: "Hello", Type: core.CardTypeNote, Tags: []string{"a"}})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated", valid[:len(valid)/2]},
		{"unknown version", append([]byte{0x10}, valid[1:]...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCard(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}
