package ai

import "context"

// CompletionRequest is a provider-neutral text completion. Clients format it
// into their own wire dialect.
type CompletionRequest struct {
	// Model is the provider's model identifier, e.g. "gpt-4o".
	Model string

	// SystemPrompt may be empty; an empty system prompt means "no system prompt".
	SystemPrompt string

	// UserPrompt carries the instructions and the content.
	UserPrompt string

	Temperature float64

	// MaxTokens bounds the response length. Zero leaves the provider default.
	MaxTokens int
}

// Client sends completions to one AI vendor.
// Implementations must be safe for concurrent use.
type Client interface {
	// Provider identifies the vendor; the service manager dispatches on it.
	Provider() Provider

	// Complete sends one request and returns the generated text.
	// Failures are returned as *Error so the retry policy can classify them.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Image is an encoded picture sent to a vision-capable model.
type Image struct {
	Data     []byte
	MimeType string // Defaults to image/jpeg when empty
}

// ImageReader is implemented by clients that accept images.
type ImageReader interface {
	// ReadImage asks the model about img using the prompts in req.
	ReadImage(ctx context.Context, req CompletionRequest, img Image) (string, error)
}

// Audio is an encoded recording sent for transcription.
type Audio struct {
	Data     []byte
	FileName string
	MimeType string
}

// TranscriptionRequest configures a speech-to-text call.
type TranscriptionRequest struct {
	Model      string
	Language   string
	Prompt     string // Optional context that guides spelling and vocabulary
	Timestamps bool   // Request segment timestamps in the output
}

// Transcriber is implemented by clients that support speech-to-text.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest, audio Audio) (string, error)
}
