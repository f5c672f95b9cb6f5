package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/poiesic/secondbrain/ai"
)

// DefaultTranscriptionModel is the Whisper model used when the request names none.
const DefaultTranscriptionModel = "whisper-1"

// Transcribe posts audio to the Whisper transcription endpoint.
// With Timestamps set the verbose JSON format is requested and its text field returned.
func (c *AudioClient) Transcribe(ctx context.Context, req ai.TranscriptionRequest, audio ai.Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", ai.NewError(ai.KindInvalidRequest, c.provider, "empty audio", nil)
	}
	model := req.Model
	if model == "" {
		model = DefaultTranscriptionModel
	}
	fileName := audio.FileName
	if fileName == "" {
		fileName = "audio.m4a"
	}
	format := "text"
	if req.Timestamps {
		format = "verbose_json"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"model", model},
		{"response_format", format},
	}
	if req.Language != "" {
		fields = append(fields, [2]string{"language", req.Language})
	}
	if req.Prompt != "" {
		fields = append(fields, [2]string{"prompt", req.Prompt})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return "", ai.NewError(ai.KindInvalidRequest, c.provider, "building form", err)
		}
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return "", ai.NewError(ai.KindInvalidRequest, c.provider, "building form", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return "", ai.NewError(ai.KindInvalidRequest, c.provider, "building form", err)
	}
	if err := w.Close(); err != nil {
		return "", ai.NewError(ai.KindInvalidRequest, c.provider, "building form", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", ai.NewError(ai.KindConfiguration, c.provider, "building request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	c.logger.Debug("sending transcription", "model", model, "bytes", len(audio.Data))
	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ai.ClassifyTransport(ctx, c.provider, err)
	}
	if !req.Timestamps {
		return strings.TrimSpace(string(raw)), nil
	}

	var verbose struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &verbose); err != nil {
		return "", ai.NewError(ai.KindParse, c.provider, "decoding verbose transcription", err)
	}
	return strings.TrimSpace(verbose.Text), nil
}
