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


// Package secondbrain wires the card store, the AI service manager, the
// content summarizer and the knowledge graph builder into one handle.
package secondbrain

import (
	"errors"
	"log/slog"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/retry"
	"github.com/poiesic/secondbrain/ai/selection"
	"github.com/poiesic/secondbrain/content"
	"github.com/poiesic/secondbrain/knowledge"
	"github.com/poiesic/secondbrain/service"
	"github.com/poiesic/secondbrain/storage"
	"github.com/poiesic/secondbrain/storage/badger"
	"github.com/poiesic/secondbrain/worker"
)

type Brain struct {
	backend    *badger.Backend
	cards      *badger.CardRepository
	manager    *service.Manager
	summarizer *content.Summarizer
	graph      *knowledge.Builder
	logger     *slog.Logger
}

// Option configures a Brain.
type Option func(*options)

type options struct {
	aiConfig *ai.Config
	clients  []ai.Client
	catalog  *ai.Catalog
	media    service.MediaLoader
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets provider credentials and retry values.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = cfg
	}
}

// WithClients uses the given provider clients instead of building them
// from the AI configuration.
func WithClients(clients ...ai.Client) Option {
	return func(o *options) {
		o.clients = clients
	}
}

// WithCatalog replaces the default model catalog.
func WithCatalog(catalog *ai.Catalog) Option {
	return func(o *options) {
		o.catalog = catalog
	}
}

// WithMediaLoader sets how image and audio URIs are read.
func WithMediaLoader(loader service.MediaLoader) Option {
	return func(o *options) {
		o.media = loader
	}
}

// InMemory keeps cards in memory only. The path given to Open is ignored.
func InMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open opens the card store at filePath and builds the AI components on top
// of it.
func Open(filePath string, opts ...Option) (*Brain, error) {
	o := &options{
		aiConfig: ai.DefaultConfig(),
		catalog:  ai.DefaultCatalog(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.aiConfig == nil {
		o.aiConfig = ai.DefaultConfig()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.aiConfig.Normalize()

	backend, err := badger.OpenBackend(filePath, o.inMemory, badger.WithBackendLogger(o.logger))
	if err != nil {
		return nil, err
	}

	cards, err := badger.NewCardRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	manager, err := newManager(o)
	if err != nil {
		cards.Close()
		backend.Close()
		return nil, err
	}

	summarizer, err := content.NewDefaultSummarizer(manager, o.logger)
	if err != nil {
		cards.Close()
		backend.Close()
		return nil, err
	}

	extractor, err := content.NewEntityExtractor(manager, content.WithExtractorLogger(o.logger))
	if err != nil {
		cards.Close()
		backend.Close()
		return nil, err
	}

	graph, err := knowledge.NewBuilder(cards, extractor, manager, knowledge.WithLogger(o.logger))
	if err != nil {
		cards.Close()
		backend.Close()
		return nil, err
	}

	return &Brain{
		backend:    backend,
		cards:      cards,
		manager:    manager,
		summarizer: summarizer,
		graph:      graph,
		logger:     o.logger,
	}, nil
}

func newManager(o *options) (*service.Manager, error) {
	clients := o.clients
	if len(clients) == 0 {
		built, err := service.NewClients(o.aiConfig, o.logger)
		if err != nil {
			return nil, err
		}
		clients = built
	}

	selector, err := selection.New(o.catalog, o.aiConfig.CostPreference)
	if err != nil {
		return nil, err
	}

	managerOpts := []service.Option{
		service.WithRetryPolicy(retry.FromConfig(o.aiConfig.Retry)),
		service.WithLogger(o.logger),
	}
	if o.media != nil {
		managerOpts = append(managerOpts, service.WithMediaLoader(o.media))
	}
	return service.NewManager(selector, clients, managerOpts...)
}

// Close stops the graph workers and closes the card store.
func (b *Brain) Close() error {
	b.graph.Release()

	var errs []error
	if err := b.cards.Close(); err != nil {
		b.logger.Error("error closing card repository", "err", err)
		errs = append(errs, err)
	}
	if err := b.backend.Close(); err != nil {
		b.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *Brain) Cards() storage.CardRepository {
	return b.cards
}

func (b *Brain) Manager() *service.Manager {
	return b.manager
}

func (b *Brain) Summarizer() *content.Summarizer {
	return b.summarizer
}

func (b *Brain) Graph() *knowledge.Builder {
	return b.graph
}

// NewQueue creates a task queue over the manager with graph tasks enabled.
// The caller releases it.
func (b *Brain) NewQueue(opts ...worker.Option) (*worker.Queue, error) {
	opts = append([]worker.Option{
		worker.WithGraph(b.graph),
		worker.WithLogger(b.logger),
	}, opts...)
	return worker.NewQueue(b.manager, opts...)
}
