// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai defines the provider-neutral vocabulary of the AI layer:
// providers, model capabilities, the model catalog, client interfaces,
// configuration and the shared error taxonomy.
//
// # Interfaces
//
//   - Client: sends a text completion to one vendor
//   - ImageReader: optional, implemented by vision-capable clients
//   - Transcriber: optional, implemented by speech-to-text clients
//
// Every client failure is an *Error carrying a Kind. The retry package
// decides whether to try again from Kind alone, and callers match kinds
// with errors.Is against the ErrXxx sentinels:
//
//	if errors.Is(err, ai.ErrPaymentRequired) {
//	    // tell the user to top up
//	}
//
// # Implementation Packages
//
//   - ai/openai: OpenAI, DeepSeek and OpenRouter via langchaingo
//   - ai/anthropic: Claude via the Messages API
//   - ai/gemini: Gemini via generateContent
//   - ai/mock: test doubles
//
// Public constructors in the implementation packages return ai.Client.
// Optional capabilities are discovered with type assertions:
//
//	client, err := openai.New(cfg)
//	if t, ok := client.(ai.Transcriber); ok {
//	    text, err := t.Transcribe(ctx, ai.TranscriptionRequest{Language: "en"}, audio)
//	}
package ai
