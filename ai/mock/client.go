package mock

import (
	"context"
	"sync"

	"github.com/poiesic/secondbrain/ai"
)

// MockClient is a test double for ai.Client.
// It allows custom behavior injection via function fields.
type MockClient struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns "mock response for <model>".
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	provider ai.Provider

	mu        sync.Mutex
	callCount int
	requests  []ai.CompletionRequest
}

var _ ai.Client = (*MockClient)(nil)

// NewMockClient creates a mock client reporting the given provider.
func NewMockClient(provider ai.Provider) *MockClient {
	return &MockClient{provider: provider}
}

// WithCompleteFunc sets CompleteFunc and returns m for chaining.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req ai.CompletionRequest) (string, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = fn
	return m
}

// Provider returns the provider given at construction.
func (m *MockClient) Provider() ai.Provider {
	return m.provider
}

// Complete records req and delegates to CompleteFunc.
func (m *MockClient) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return "mock response for " + req.Model, nil
}

// CallCount returns the number of times any method was called.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of every request seen so far.
func (m *MockClient) Requests() []ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or the zero value.
func (m *MockClient) LastRequest() ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ai.CompletionRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// Reset clears the call count, captured requests and injected behavior.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.requests = nil
	m.CompleteFunc = nil
}

func (m *MockClient) record(req ai.CompletionRequest) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	m.mu.Unlock()
}

// MockImageReader is a MockClient that also implements ai.ImageReader.
type MockImageReader struct {
	*MockClient

	// ReadImageFunc is called by ReadImage if set.
	ReadImageFunc func(ctx context.Context, req ai.CompletionRequest, img ai.Image) (string, error)

	imgMu  sync.Mutex
	images []ai.Image
}

var _ ai.ImageReader = (*MockImageReader)(nil)

// NewMockImageReader creates a vision-capable mock client.
func NewMockImageReader(provider ai.Provider) *MockImageReader {
	return &MockImageReader{MockClient: NewMockClient(provider)}
}

// ReadImage records the call and delegates to ReadImageFunc.
func (m *MockImageReader) ReadImage(ctx context.Context, req ai.CompletionRequest, img ai.Image) (string, error) {
	m.record(req)
	m.imgMu.Lock()
	m.images = append(m.images, img)
	fn := m.ReadImageFunc
	m.imgMu.Unlock()

	if fn != nil {
		return fn(ctx, req, img)
	}
	return "mock image text", nil
}

// Images returns the images passed to ReadImage.
func (m *MockImageReader) Images() []ai.Image {
	m.imgMu.Lock()
	defer m.imgMu.Unlock()
	out := make([]ai.Image, len(m.images))
	copy(out, m.images)
	return out
}

// MockTranscriber is a MockClient that also implements ai.Transcriber.
type MockTranscriber struct {
	*MockClient

	// TranscribeFunc is called by Transcribe if set.
	TranscribeFunc func(ctx context.Context, req ai.TranscriptionRequest, audio ai.Audio) (string, error)

	trMu     sync.Mutex
	lastReq  ai.TranscriptionRequest
	lastFile string
}

var _ ai.Transcriber = (*MockTranscriber)(nil)

// NewMockTranscriber creates a transcription-capable mock client.
func NewMockTranscriber(provider ai.Provider) *MockTranscriber {
	return &MockTranscriber{MockClient: NewMockClient(provider)}
}

// Transcribe records the call and delegates to TranscribeFunc.
func (m *MockTranscriber) Transcribe(ctx context.Context, req ai.TranscriptionRequest, audio ai.Audio) (string, error) {
	m.record(ai.CompletionRequest{Model: req.Model})
	m.trMu.Lock()
	m.lastReq = req
	m.lastFile = audio.FileName
	fn := m.TranscribeFunc
	m.trMu.Unlock()

	if fn != nil {
		return fn(ctx, req, audio)
	}
	return "mock transcript", nil
}

// LastTranscription returns the most recent transcription request and file name.
func (m *MockTranscriber) LastTranscription() (ai.TranscriptionRequest, string) {
	m.trMu.Lock()
	defer m.trMu.Unlock()
	return m.lastReq, m.lastFile
}
