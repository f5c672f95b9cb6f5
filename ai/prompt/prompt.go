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


// Package prompt translates a (system prompt, user prompt) pair into the
// message shape each AI vendor expects.
//
// Every formatter is a pure function. An empty system prompt always means
// "no system prompt": no formatter emits an empty system message.
package prompt

import (
	"strings"

	"github.com/poiesic/secondbrain/ai"
)

// Message roles used across vendors.
const (
	RoleSystem = "system"
	RoleUser   = "user"
	RoleModel  = "model" // Gemini's assistant role
)

// GeminiAcknowledgment is the fixed model turn that primes Gemini to follow
// synthesized system instructions.
const GeminiAcknowledgment = "I understand and will follow these instructions."

const geminiInstructionPrefix = "You are an AI assistant with the following instructions: "

// Message is a single conversational turn. Role may be empty for vendors
// that accept role-less single-turn content.
type Message struct {
	Role    string
	Content string
}

// Prompt is the formatted request body shared by all vendors.
// System is only populated for vendors that carry it as a top-level field.
type Prompt struct {
	System   string
	Messages []Message
}

// Formatter builds a Prompt. modelID is only consulted by routing vendors.
type Formatter func(systemPrompt, userPrompt, modelID string) Prompt

func hasSystem(systemPrompt string) bool {
	return strings.TrimSpace(systemPrompt) != ""
}

// OpenAI returns [system, user] or just [user] when there is no system prompt.
func OpenAI(systemPrompt, userPrompt string) []Message {
	if !hasSystem(systemPrompt) {
		return []Message{{Role: RoleUser, Content: userPrompt}}
	}
	return []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userPrompt},
	}
}

// DeepSeek uses the OpenAI message shape.
func DeepSeek(systemPrompt, userPrompt string) []Message {
	return OpenAI(systemPrompt, userPrompt)
}

// Claude returns the top-level system field and the message list.
// The system field is "" when there is no system prompt, never absent.
func Claude(systemPrompt, userPrompt string) (string, []Message) {
	system := ""
	if hasSystem(systemPrompt) {
		system = systemPrompt
	}
	return system, []Message{{Role: RoleUser, Content: userPrompt}}
}

// Gemini has no system role. With a system prompt it synthesizes a
// user/model/user exchange whose last turn is the user prompt verbatim.
func Gemini(systemPrompt, userPrompt string) []Message {
	if !hasSystem(systemPrompt) {
		return []Message{{Content: userPrompt}}
	}
	return []Message{
		{Role: RoleUser, Content: geminiInstructionPrefix + systemPrompt},
		{Role: RoleModel, Content: GeminiAcknowledgment},
		{Role: RoleUser, Content: userPrompt},
	}
}

// OpenRouter routes to many model families. Claude-family models currently
// get the same shape as every other model.
func OpenRouter(systemPrompt, userPrompt, modelID string) []Message {
	if isClaudeModel(modelID) {
		return OpenAI(systemPrompt, userPrompt)
	}
	return OpenAI(systemPrompt, userPrompt)
}

func isClaudeModel(modelID string) bool {
	id := strings.ToLower(modelID)
	return strings.Contains(id, "claude") || strings.HasPrefix(id, "anthropic/")
}

var formatters = map[ai.Provider]Formatter{
	ai.ProviderOpenAI: func(s, u, _ string) Prompt {
		return Prompt{Messages: OpenAI(s, u)}
	},
	ai.ProviderDeepSeek: func(s, u, _ string) Prompt {
		return Prompt{Messages: DeepSeek(s, u)}
	},
	ai.ProviderAnthropic: func(s, u, _ string) Prompt {
		system, msgs := Claude(s, u)
		return Prompt{System: system, Messages: msgs}
	},
	ai.ProviderGoogle: func(s, u, _ string) Prompt {
		return Prompt{Messages: Gemini(s, u)}
	},
	ai.ProviderOpenRouter: func(s, u, model string) Prompt {
		return Prompt{Messages: OpenRouter(s, u, model)}
	},
}

// For returns the formatter registered for provider. Unknown providers get
// the OpenAI shape, which most compatible endpoints accept.
func For(provider ai.Provider) Formatter {
	if f, ok := formatters[provider]; ok {
		return f
	}
	return formatters[ai.ProviderOpenAI]
}

// Format is shorthand for For(provider)(systemPrompt, userPrompt, modelID).
func Format(provider ai.Provider, systemPrompt, userPrompt, modelID string) Prompt {
	return For(provider)(systemPrompt, userPrompt, modelID)
}
