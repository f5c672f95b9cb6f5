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


// Package mock provides test doubles for the ai client interfaces.
//
// # Usage
//
//	client := mock.NewMockClient(ai.ProviderOpenAI).
//	    WithCompleteFunc(func(ctx context.Context, req ai.CompletionRequest) (string, error) {
//	        return "TECHNICAL", nil
//	    })
//
//	// Check call counts and captured requests
//	count := client.CallCount()
//	last := client.LastRequest()
//
// # Default Behavior
//
//   - MockClient: echoes a fixed "mock response for <model>" string
//   - MockImageReader: a MockClient that also answers ReadImage with "mock image text"
//   - MockTranscriber: a MockClient that also answers Transcribe with "mock transcript"
//
// All mocks are safe for concurrent use.
package mock
