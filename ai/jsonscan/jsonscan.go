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


// Package jsonscan recovers JSON embedded in free-form model output.
//
// Models asked for JSON frequently wrap it in prose or code fences and
// occasionally drop quotes. Nothing in this package panics on bad input.
package jsonscan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/secondbrain/ai"
)

// ExtractArray returns the substring from the first '[' to the last ']'.
// When no such span exists it returns "[]" and false.
func ExtractArray(text string) (string, bool) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return "[]", false
	}
	return text[start : end+1], true
}

// StripCodeFence removes a surrounding ```json ... ``` block if present.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		// Drop the language tag line.
		if tag := strings.TrimSpace(trimmed[:nl]); !strings.ContainsAny(tag, "[{") {
			trimmed = trimmed[nl+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// DecodeArray locates a JSON array in text and decodes it into out.
// Failures are returned as ai.KindParse errors carrying a snippet of the input.
func DecodeArray[T any](text string) ([]T, error) {
	raw, ok := ExtractArray(StripCodeFence(text))
	if !ok {
		return []T{}, ai.NewError(ai.KindParse, 0, fmt.Sprintf("no JSON array in response %q", Snippet(text)), nil)
	}

	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		repaired := Repair(raw)
		if rerr := json.Unmarshal([]byte(repaired), &out); rerr != nil {
			return []T{}, ai.NewError(ai.KindParse, 0, fmt.Sprintf("malformed JSON array %q", Snippet(raw)), err)
		}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Snippet collapses whitespace and truncates text for log and error messages.
func Snippet(text string) string {
	return ai.Truncate(strings.Join(strings.Fields(text), " "), 200)
}

// Repair attempts to fix common JSON formatting issues from LLM responses.
// It handles missing opening quotes before keys and trailing commas.
func Repair(s string) string {
	return stripTrailingCommas(quoteKeys(s))
}

func quoteKeys(s string) string {
	// Pattern: after { or , followed by optional whitespace, then a word followed by ":
	// Example: `, type":` -> `, "type":`
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+16)

	i := 0
	for i < len(result) {
		ch := result[i]
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}

		fixed = append(fixed, ch)
		i++
		for i < len(result) && isSpace(result[i]) {
			fixed = append(fixed, result[i])
			i++
		}

		if i >= len(result) || result[i] == '"' || !isLetter(result[i]) {
			continue
		}

		keyStart := i
		for i < len(result) && (isLetter(result[i]) || result[i] == '_') {
			i++
		}
		if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
			fixed = append(fixed, '"')
		}
		fixed = append(fixed, result[keyStart:i]...)
	}

	return string(fixed)
}

func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if ch == ',' {
			j := i + 1
			for j < len(s) && isSpace(rune(s[j])) {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
