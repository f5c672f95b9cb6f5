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


package service

import "errors"

var (
	// ErrSelectorRequired is returned when a Manager is built without a model selector.
	ErrSelectorRequired = errors.New("model selector required")

	// ErrClientsRequired is returned when a Manager is built without any provider client.
	ErrClientsRequired = errors.New("at least one AI client required")

	// ErrEmptyContent is wrapped into an invalid-request error for blank input.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrMediaLoad is wrapped into an invalid-request error when an image or audio URI cannot be read.
	ErrMediaLoad = errors.New("failed to load media")

	// ErrMediaLoaderRequired is returned by WithMediaLoader(nil).
	ErrMediaLoaderRequired = errors.New("media loader required")
)
