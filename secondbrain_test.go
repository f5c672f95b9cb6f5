package secondbrain

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/mock"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBrain(t *testing.T, opts ...Option) (*Brain, *mock.MockClient) {
	t.Helper()
	client := mock.NewMockClient(ai.ProviderOpenAI)
	opts = append([]Option{InMemory(), WithClients(client)}, opts...)
	b, err := Open("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, client
}

func TestOpen(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		b, _ := openTestBrain(t)

		assert.NotNil(t, b.Cards())
		assert.NotNil(t, b.Manager())
		assert.NotNil(t, b.Summarizer())
		assert.NotNil(t, b.Graph())
		assert.NotNil(t, b.logger)
	})

	t.Run("without credentials", func(t *testing.T) {
		b, err := Open("", InMemory())
		require.Error(t, err)
		assert.Nil(t, b)
		assert.Equal(t, ai.KindConfiguration, ai.KindOf(err))
	})

	t.Run("clients from config", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithAPIKey(ai.ProviderAnthropic, "test-key"))
		b, err := Open("", InMemory(), WithAIConfig(cfg))
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, []ai.Provider{ai.ProviderAnthropic}, b.Manager().Providers())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		b, err := Open(tmpFile, WithClients(mock.NewMockClient(ai.ProviderOpenAI)))
		assert.Error(t, err)
		assert.Nil(t, b)
	})
}

func TestBrain_Persistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "brain")
	client := mock.NewMockClient(ai.ProviderOpenAI)
	ctx := context.Background()

	b, err := Open(dir, WithClients(client))
	require.NoError(t, err)
	added, err := b.Cards().AddCards(ctx, &core.Card{
		Title:   "Reading list",
		Content: "Designing Data-Intensive Applications",
		Type:    core.CardTypeNote,
		Tags:    []string{"books"},
	})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b, err = Open(dir, WithClients(client))
	require.NoError(t, err)
	defer b.Close()

	card, err := b.Cards().GetCardByID(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Reading list", card.Title)
	assert.Equal(t, []string{"books"}, card.Tags)
}

func TestBrain_Queue(t *testing.T) {
	b, client := openTestBrain(t)
	ctx := context.Background()

	added, err := b.Cards().AddCards(ctx,
		&core.Card{Title: "Gardening", Content: "Tomatoes need sun.", Type: core.CardTypeNote, Tags: []string{"garden"}},
		&core.Card{Title: "Compost", Content: "Compost feeds the soil.", Type: core.CardTypeNote, Tags: []string{"garden"}},
	)
	require.NoError(t, err)

	q, err := b.NewQueue(worker.WithPoolSize(2))
	require.NoError(t, err)
	defer q.Release()

	t.Run("title through the manager", func(t *testing.T) {
		out := q.Run(ctx, worker.Bundle{
			worker.KeyTaskType: worker.TaskGenerateTitle,
			worker.KeyContent:  "Tomatoes need sun.",
		})
		_, failed := out.Err()
		require.False(t, failed, out)
		assert.True(t, strings.HasPrefix(out.Result(), "mock response for"))
		assert.Positive(t, client.CallCount())
	})

	t.Run("graph through the builder", func(t *testing.T) {
		_, done, err := q.Submit(ctx, worker.Bundle{
			worker.KeyTaskType: worker.TaskBuildGraph,
			worker.KeyCardID:   added[0].ID,
		})
		require.NoError(t, err)

		out := <-done
		_, failed := out.Err()
		require.False(t, failed, out)

		var res worker.GraphResult
		require.NoError(t, json.Unmarshal([]byte(out.Result()), &res))
		assert.Equal(t, added[0].ID, res.CentralCard)
		assert.Contains(t, res.RelatedCards, added[1].ID)
	})

	t.Run("missing card", func(t *testing.T) {
		out := q.Run(ctx, worker.Bundle{
			worker.KeyTaskType: worker.TaskBuildGraph,
			worker.KeyCardID:   "nope",
		})
		assert.Equal(t, worker.KindNotFound, out[worker.KeyErrorKind])
	})
}
