package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	summaryTypes := []core.SummaryType{
		core.SummaryConcise, core.SummaryDetailed, core.SummaryBulletPoints,
		core.SummaryQuestionAnswer, core.SummaryKeyFacts,
	}
	cardTypes := []core.CardType{core.CardTypeURL, core.CardTypePDF, core.CardTypeAudio, core.CardTypeNote, core.CardTypeSearch}

	for _, ct := range cardTypes {
		for _, st := range summaryTypes {
			t.Run(ct.String()+"/"+st.String(), func(t *testing.T) {
				p := SystemPrompt(ct, false, st)
				assert.NotEmpty(t, p)
				assert.NotEqual(t, genericSystemPrompts[st], p)
			})
		}
	}

	assert.Contains(t, SystemPrompt(core.CardTypePDF, false, core.SummaryKeyFacts), "PDF documents")
	assert.Contains(t, SystemPrompt(core.CardTypeNote, true, core.SummaryDetailed), "YouTube videos")
	assert.Equal(t, genericSystemPrompts[core.SummaryDetailed], SystemPrompt(0, false, core.SummaryDetailed))
	assert.Equal(t, genericSystemPrompts[core.SummaryConcise], SystemPrompt(0, false, core.SummaryType(42)))
}

func TestIsYouTubeContent(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"YouTube Video: talk\nVideo ID: x", true},
		{"YouTube Video: talk\nTranscript: hi", true},
		{"YouTube Video: talk only", false},
		{"Video ID: x\nTranscript: y", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsYouTubeContent(tt.content), tt.content)
	}
}

func TestSummaryUserPrompts(t *testing.T) {
	tests := []struct {
		typ  core.SummaryType
		want string
	}{
		{core.SummaryConcise, "Create a concise summary of the following content in en:"},
		{core.SummaryDetailed, "Create a detailed summary of the following content in en:"},
		{core.SummaryBulletPoints, "Summarize the following content as bullet points in en:"},
		{core.SummaryQuestionAnswer, "Create a Q&A summary of the following content in en:"},
		{core.SummaryKeyFacts, "Extract the key facts from the following content in en:"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, summaryUserPrompt(tt.typ, "en"))
		})
	}

	assert.Equal(t, "Create a concise summary of the following content in en:\n\nbody",
		summaryRequestPrompt(core.SummaryConcise, "en", "   ", "body"))
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	for _, uri := range []string{path, "file://" + path} {
		media, err := FileLoader{}.Load(context.Background(), uri)
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), media.Data)
		assert.Equal(t, "scan.png", media.FileName)
		assert.Equal(t, "image/png", media.MimeType)
	}

	_, err := FileLoader{}.Load(context.Background(), filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestNewClients(t *testing.T) {
	_, err := NewClients(ai.NewConfig(), nil)
	assert.ErrorIs(t, err, ai.ErrProviderNotConfigured)

	clients, err := NewClients(ai.NewConfig(
		ai.WithAPIKey(ai.ProviderOpenAI, "sk-test"),
		ai.WithAPIKey(ai.ProviderGoogle, "g-test"),
	), nil)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, ai.ProviderOpenAI, clients[0].Provider())
	assert.Equal(t, ai.ProviderGoogle, clients[1].Provider())

	_, isTranscriber := clients[0].(ai.Transcriber)
	assert.True(t, isTranscriber)
}
