package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/secondbrain/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string, header http.Header) (*httptest.Server, *map[string]any, *http.Header) {
	t.Helper()
	var got map[string]any
	var gotHeader http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		gotHeader = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		for k, vs := range header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &got, &gotHeader
}

func newClient(t *testing.T, url string) ai.Client {
	t.Helper()
	cfg := ai.NewConfig(ai.WithAPIKey(ai.ProviderAnthropic, "sk-ant"), ai.WithBaseURL(ai.ProviderAnthropic, url+"/v1"))
	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func TestComplete(t *testing.T) {
	server, body, header := newServer(t, http.StatusOK,
		`{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there."}],"stop_reason":"end_turn"}`, nil)
	client := newClient(t, server.URL)

	got, err := client.Complete(context.Background(), ai.CompletionRequest{
		Model:        "claude-3-haiku-20240307",
		SystemPrompt: "Be brief.",
		UserPrompt:   "Say hello",
		Temperature:  0.3,
		MaxTokens:    200,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", got)

	assert.Equal(t, "sk-ant", header.Get("x-api-key"))
	assert.Equal(t, APIVersion, header.Get("anthropic-version"))
	assert.Equal(t, "claude-3-haiku-20240307", (*body)["model"])
	assert.Equal(t, "Be brief.", (*body)["system"])
	assert.EqualValues(t, 200, (*body)["max_tokens"])

	msgs := (*body)["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestComplete_EmptySystemIsEmptyString(t *testing.T) {
	server, body, _ := newServer(t, http.StatusOK, `{"content":[{"type":"text","text":"ok"}]}`, nil)
	client := newClient(t, server.URL)

	_, err := client.Complete(context.Background(), ai.CompletionRequest{Model: "claude-3-haiku-20240307", UserPrompt: "x"})
	require.NoError(t, err)

	system, present := (*body)["system"]
	assert.True(t, present)
	assert.Equal(t, "", system)
	assert.EqualValues(t, defaultMaxTokens, (*body)["max_tokens"])
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind ai.Kind
	}{
		{"overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, ai.KindOverloaded},
		{"rate limit", http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow"}}`, ai.KindRateLimit},
		{"auth", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"bad key"}}`, ai.KindAuthentication},
		{"billing", http.StatusBadRequest, `{"type":"error","error":{"type":"billing_error","message":"credit balance too low"}}`, ai.KindPaymentRequired},
		{"invalid", http.StatusBadRequest, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`, ai.KindInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, _ := newServer(t, tt.status, tt.body, nil)
			client := newClient(t, server.URL)
			_, err := client.Complete(context.Background(), ai.CompletionRequest{Model: "m", UserPrompt: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, ai.KindOf(err))
		})
	}
}

func TestComplete_RetryAfterHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")
	server, _, _ := newServer(t, http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error"}}`, h)
	client := newClient(t, server.URL)

	_, err := client.Complete(context.Background(), ai.CompletionRequest{Model: "m", UserPrompt: "x"})
	var aiErr *ai.Error
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, "7s", aiErr.RetryAfter.String())
}

func TestComplete_NoTextIsEmptyResponse(t *testing.T) {
	server, _, _ := newServer(t, http.StatusOK, `{"content":[]}`, nil)
	client := newClient(t, server.URL)
	_, err := client.Complete(context.Background(), ai.CompletionRequest{Model: "m", UserPrompt: "x"})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestReadImage(t *testing.T) {
	server, body, _ := newServer(t, http.StatusOK, `{"content":[{"type":"text","text":"STOP"}]}`, nil)
	client := newClient(t, server.URL)
	reader, ok := client.(ai.ImageReader)
	require.True(t, ok)

	got, err := reader.ReadImage(context.Background(),
		ai.CompletionRequest{Model: "claude-3-opus-20240229", UserPrompt: "Extract all text"},
		ai.Image{Data: []byte("png"), MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "STOP", got)

	msgs := (*body)["messages"].([]any)
	content := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	image := content[0].(map[string]any)
	assert.Equal(t, "image", image["type"])
	source := image["source"].(map[string]any)
	assert.Equal(t, "image/png", source["media_type"])
	assert.Equal(t, "cG5n", source["data"])
	assert.Equal(t, "Extract all text", content[1].(map[string]any)["text"])
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(ai.NewConfig())
	assert.ErrorIs(t, err, ai.ErrProviderNotConfigured)
}
