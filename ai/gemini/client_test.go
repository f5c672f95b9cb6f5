package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/prompt"
	"github.com/poiesic/secondbrain/ai/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{"candidates":[{"content":{"parts":[{"text":"Gemini "},{"text":"says hi"}],"role":"model"},"finishReason":"STOP"}]}`

func startServer(t *testing.T, status int, body string) (*httptest.Server, *generateRequest) {
	t.Helper()
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func newTestClient(t *testing.T, url string) ai.Client {
	t.Helper()
	client, err := New(ai.NewConfig(ai.WithAPIKey(ai.ProviderGoogle, "g-key"), ai.WithBaseURL(ai.ProviderGoogle, url)))
	require.NoError(t, err)
	return client
}

func TestComplete_WithSystemPrompt(t *testing.T) {
	server, got := startServer(t, http.StatusOK, okBody)
	client := newTestClient(t, server.URL)

	text, err := client.Complete(context.Background(), ai.CompletionRequest{
		Model:        "gemini-1.5-flash",
		SystemPrompt: "Answer tersely.",
		UserPrompt:   "Hello?",
		Temperature:  0.3,
		MaxTokens:    100,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gemini says hi", text)

	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "Answer tersely.")
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, prompt.GeminiAcknowledgment, got.Contents[1].Parts[0].Text)
	assert.Equal(t, "Hello?", got.Contents[2].Parts[0].Text)
	assert.Equal(t, 100, got.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.3, got.GenerationConfig.Temperature, 1e-9)
}

func TestComplete_WithoutSystemPrompt(t *testing.T) {
	server, got := startServer(t, http.StatusOK, okBody)
	client := newTestClient(t, server.URL)

	_, err := client.Complete(context.Background(), ai.CompletionRequest{Model: "gemini-1.5-flash", UserPrompt: "Hi"})
	require.NoError(t, err)
	require.Len(t, got.Contents, 1)
	assert.Empty(t, got.Contents[0].Role)
	assert.Equal(t, "Hi", got.Contents[0].Parts[0].Text)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ai.Kind
	}{
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"Resource exhausted","status":"RESOURCE_EXHAUSTED"}}`, ai.KindRateLimit},
		{"bad key", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`, ai.KindAuthentication},
		{"server", http.StatusInternalServerError, `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`, ai.KindServer},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, ai.KindServer},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, ai.KindInvalidRequest},
		{"garbage", http.StatusOK, `not json`, ai.KindParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := startServer(t, tt.status, tt.body)
			client := newTestClient(t, server.URL)
			_, err := client.Complete(context.Background(), ai.CompletionRequest{Model: "gemini-1.5-flash", UserPrompt: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.want, ai.KindOf(err))
		})
	}
}

func TestReadImage_InlineData(t *testing.T) {
	server, got := startServer(t, http.StatusOK, okBody)
	client := newTestClient(t, server.URL)

	_, err := client.(ai.ImageReader).ReadImage(context.Background(),
		ai.CompletionRequest{Model: "gemini-1.5-flash", UserPrompt: "Read this"},
		ai.Image{Data: []byte("jpg")})
	require.NoError(t, err)

	require.Len(t, got.Contents, 1)
	parts := got.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "Read this", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MimeType)
	assert.Equal(t, "anBn", parts[1].InlineData.Data)
}

func TestComplete_ModelRequired(t *testing.T) {
	client, err := New(ai.NewConfig(ai.WithAPIKey(ai.ProviderGoogle, "k")))
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), ai.CompletionRequest{UserPrompt: "x"})
	assert.ErrorIs(t, err, ai.ErrConfiguration)
}

func TestComplete_NetworkErrorHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := New(ai.NewConfig(
		ai.WithAPIKey(ai.ProviderGoogle, "SECRET-GEMINI-KEY"),
		ai.WithBaseURL(ai.ProviderGoogle, baseURL)))
	require.NoError(t, err)

	var logs bytes.Buffer
	policy := retry.Policy{
		Times:  1,
		Sleep:  func(context.Context, time.Duration) error { return nil },
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	}
	_, err = retry.Value(context.Background(), policy, func(ctx context.Context) (string, error) {
		return client.Complete(ctx, ai.CompletionRequest{Model: "gemini-1.5-flash", UserPrompt: "x"})
	})
	require.Error(t, err)
	assert.Equal(t, ai.KindNetwork, ai.KindOf(err))
	assert.NotContains(t, err.Error(), "SECRET-GEMINI-KEY")
	assert.Contains(t, logs.String(), "operation failed, retrying")
	assert.NotContains(t, logs.String(), "SECRET-GEMINI-KEY")
}
