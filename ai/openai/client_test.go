package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/secondbrain/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "  A short summary.  "}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`

type capturedRequest struct {
	header http.Header
	body   struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
}

func newChatServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		captured.header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func testConfig(p ai.Provider, baseURL string) *ai.Config {
	return ai.NewConfig(ai.WithAPIKey(p, "test-key"), ai.WithBaseURL(p, baseURL))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(ai.NewConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrConfiguration)
	assert.ErrorIs(t, err, ai.ErrProviderNotConfigured)

	_, err = New(nil)
	assert.ErrorIs(t, err, ai.ErrConfiguration)
}

func TestComplete_OpenAI(t *testing.T) {
	server, captured := newChatServer(t, http.StatusOK, completionBody)

	client, err := New(testConfig(ai.ProviderOpenAI, server.URL+"/v1"))
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderOpenAI, client.Provider())

	got, err := client.Complete(context.Background(), ai.CompletionRequest{
		Model:        "gpt-4o",
		SystemPrompt: "You summarize.",
		UserPrompt:   "Summarize this text",
		Temperature:  0.3,
		MaxTokens:    500,
	})
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", got)

	assert.Equal(t, "Bearer test-key", captured.header.Get("Authorization"))
	assert.Equal(t, "gpt-4o", captured.body.Model)
	require.Len(t, captured.body.Messages, 2)
	assert.Equal(t, "system", captured.body.Messages[0].Role)
	assert.Contains(t, string(captured.body.Messages[0].Content), "You summarize.")
	assert.Equal(t, "user", captured.body.Messages[1].Role)
	assert.Contains(t, string(captured.body.Messages[1].Content), "Summarize this text")
}

func TestComplete_NoSystemPrompt(t *testing.T) {
	server, captured := newChatServer(t, http.StatusOK, completionBody)
	client, err := NewDeepSeek(testConfig(ai.ProviderDeepSeek, server.URL+"/v1"))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), ai.CompletionRequest{Model: "deepseek-chat", UserPrompt: "hello"})
	require.NoError(t, err)
	require.Len(t, captured.body.Messages, 1)
	assert.Equal(t, "user", captured.body.Messages[0].Role)
}

func TestComplete_OpenRouterAttributionHeaders(t *testing.T) {
	server, captured := newChatServer(t, http.StatusOK, completionBody)
	cfg := testConfig(ai.ProviderOpenRouter, server.URL+"/v1")
	ai.WithOpenRouterAttribution("https://example.com", "Second Brain Test")(cfg)

	client, err := NewOpenRouter(cfg)
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), ai.CompletionRequest{Model: "openrouter/auto", UserPrompt: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", captured.header.Get("HTTP-Referer"))
	assert.Equal(t, "Second Brain Test", captured.header.Get("X-Title"))
}

func TestComplete_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind ai.Kind
		sentinel error
	}{
		{"payment required", http.StatusPaymentRequired, `{"error":{"message":"Insufficient credits","code":402}}`, ai.KindPaymentRequired, ai.ErrPaymentRequired},
		{"quota exhausted", http.StatusTooManyRequests, `{"error":{"message":"quota","type":"insufficient_quota"}}`, ai.KindPaymentRequired, ai.ErrPaymentRequired},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit_error"}}`, ai.KindRateLimit, ai.ErrRateLimit},
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, ai.KindAuthentication, ai.ErrAuthentication},
		{"unavailable", http.StatusServiceUnavailable, `upstream down`, ai.KindServer, ai.ErrServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newChatServer(t, tt.status, tt.body)
			client, err := NewOpenRouter(testConfig(ai.ProviderOpenRouter, server.URL+"/v1"))
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), ai.CompletionRequest{Model: "openrouter/auto", UserPrompt: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, ai.KindOf(err))
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestReadImage_SendsDataURL(t *testing.T) {
	var raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	client, err := New(testConfig(ai.ProviderOpenAI, server.URL+"/v1"))
	require.NoError(t, err)
	reader, ok := client.(ai.ImageReader)
	require.True(t, ok)

	got, err := reader.ReadImage(context.Background(),
		ai.CompletionRequest{Model: "gpt-4o", UserPrompt: "Extract all text"},
		ai.Image{Data: []byte{0xff, 0xd8, 0xff}})
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", got)
	assert.Contains(t, raw, "data:image/jpeg;base64,/9j/")
	assert.Contains(t, raw, "Extract all text")

	_, err = reader.ReadImage(context.Background(), ai.CompletionRequest{UserPrompt: "x"}, ai.Image{})
	assert.ErrorIs(t, err, ai.ErrInvalidRequest)
}

func TestTranscribe(t *testing.T) {
	tests := []struct {
		name       string
		timestamps bool
		response   string
		want       string
	}{
		{"plain text", false, "hello world\n", "hello world"},
		{"verbose json", true, `{"text":" hello with timestamps ","segments":[]}`, "hello with timestamps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				require.NoError(t, r.ParseMultipartForm(1<<20))
				assert.Equal(t, DefaultTranscriptionModel, r.FormValue("model"))
				assert.Equal(t, "en", r.FormValue("language"))
				if tt.timestamps {
					assert.Equal(t, "verbose_json", r.FormValue("response_format"))
				} else {
					assert.Equal(t, "text", r.FormValue("response_format"))
				}
				f, hdr, err := r.FormFile("file")
				require.NoError(t, err)
				defer f.Close()
				data, _ := io.ReadAll(f)
				assert.Equal(t, "memo.m4a", hdr.Filename)
				assert.Equal(t, "RIFF", string(data))
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client, err := New(testConfig(ai.ProviderOpenAI, server.URL+"/v1"))
			require.NoError(t, err)
			transcriber, ok := client.(ai.Transcriber)
			require.True(t, ok)

			got, err := transcriber.Transcribe(context.Background(),
				ai.TranscriptionRequest{Language: "en", Timestamps: tt.timestamps},
				ai.Audio{Data: []byte("RIFF"), FileName: "memo.m4a"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := New(testConfig(ai.ProviderOpenAI, server.URL+"/v1"))
	require.NoError(t, err)
	_, err = client.(ai.Transcriber).Transcribe(context.Background(), ai.TranscriptionRequest{}, ai.Audio{Data: []byte("x")})
	require.Error(t, err)
	assert.True(t, ai.IsRetryable(err))
	assert.True(t, strings.Contains(err.Error(), "boom"))
}

func TestDeepSeekAndOpenRouterDoNotTranscribe(t *testing.T) {
	cfg := ai.NewConfig(ai.WithAPIKey(ai.ProviderDeepSeek, "k"), ai.WithAPIKey(ai.ProviderOpenRouter, "k"))
	ds, err := NewDeepSeek(cfg)
	require.NoError(t, err)
	or, err := NewOpenRouter(cfg)
	require.NoError(t, err)

	_, ok := ds.(ai.Transcriber)
	assert.False(t, ok)
	_, ok = or.(ai.Transcriber)
	assert.False(t, ok)
}
