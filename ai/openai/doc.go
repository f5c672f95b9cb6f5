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


// Package openai provides ai.Client implementations for vendors that speak
// the OpenAI chat completions dialect: OpenAI itself, DeepSeek and OpenRouter.
//
// Chat and vision requests go through the langchaingo openai model. The
// HTTP client handed to langchaingo classifies every non-2xx response into
// an *ai.Error before langchaingo sees it, so callers always receive the
// shared error taxonomy regardless of how langchaingo wraps failures.
//
// # Usage
//
//	cfg := ai.NewConfig(ai.WithAPIKey(ai.ProviderOpenAI, key))
//	client, err := openai.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := client.Complete(ctx, ai.CompletionRequest{
//	    Model:      "gpt-4o-mini",
//	    UserPrompt: "Summarize: ...",
//	})
//
// The client returned by New also implements ai.ImageReader and
// ai.Transcriber (Whisper). DeepSeek and OpenRouter clients implement
// ai.ImageReader only.
package openai
