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


package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/knowledge"
	"github.com/poiesic/secondbrain/service"
	"github.com/poiesic/secondbrain/storage"
)

// AIService runs the text and media tasks. *service.Manager implements it.
type AIService interface {
	Summarize(ctx context.Context, content string, opts core.SummarizationOptions, hints service.Hints) (string, error)
	GenerateTags(ctx context.Context, content, language string, maxTags int, model string) ([]string, error)
	GenerateTitle(ctx context.Context, content, language, model string) (string, error)
	TranscribeAudio(ctx context.Context, uri, language string, opts service.TranscribeOptions) (string, error)
	ExtractTextFromImage(ctx context.Context, uri, language, model string) (string, error)
}

// GraphService runs the graph tasks. *knowledge.Builder implements it.
type GraphService interface {
	BuildGraph(ctx context.Context, cardID string) (*core.KnowledgeGraph, error)
	FindConnections(ctx context.Context, cardID1, cardID2 string) ([]core.Connection, error)
}

var (
	_ AIService    = (*service.Manager)(nil)
	_ GraphService = (*knowledge.Builder)(nil)
)

// Queue decodes task bundles and runs them on a worker pool.
type Queue struct {
	ai       AIService
	graph    GraphService
	pool     *ants.Pool
	inflight sync.WaitGroup
	logger   *slog.Logger
}

// Option configures a Queue.
type Option func(*Queue) error

// WithPoolSize sets how many tasks run at once.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(q *Queue) error {
		if size < 1 {
			size = 1
		}
		if q.pool != nil {
			q.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		q.pool = pool
		return nil
	}
}

// WithGraph enables the build_graph and find_connections tasks.
func WithGraph(graph GraphService) Option {
	return func(q *Queue) error {
		q.graph = graph
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger.With("component", "worker")
		return nil
	}
}

// NewQueue creates a task queue over svc.
func NewQueue(svc AIService, opts ...Option) (*Queue, error) {
	if svc == nil {
		return nil, ErrServiceRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
	if err != nil {
		return nil, err
	}

	q := &Queue{
		ai:     svc,
		pool:   pool,
		logger: slog.Default().With("component", "worker"),
	}
	for _, opt := range opts {
		if optErr := opt(q); optErr != nil {
			q.Release()
			return nil, optErr
		}
	}
	return q, nil
}

// Submit schedules in on the pool and returns the task ID together with a
// channel that receives the output bundle once. Submit blocks while every
// worker is busy.
func (q *Queue) Submit(ctx context.Context, in Bundle) (string, <-chan Bundle, error) {
	id := uuid.NewString()
	in = in.Clone()
	done := make(chan Bundle, 1)

	q.inflight.Add(1)
	err := q.pool.Submit(func() {
		defer q.inflight.Done()
		done <- q.run(ctx, id, in)
		close(done)
	})
	if err != nil {
		q.inflight.Done()
		return "", nil, fmt.Errorf("submitting task: %w", err)
	}
	return id, done, nil
}

// Run executes in on the calling goroutine.
func (q *Queue) Run(ctx context.Context, in Bundle) Bundle {
	return q.run(ctx, uuid.NewString(), in)
}

// Wait blocks until every submitted task has produced its output.
func (q *Queue) Wait() {
	q.inflight.Wait()
}

// Release waits for submitted tasks and stops the workers. The queue should
// not be used after calling Release.
func (q *Queue) Release() {
	q.inflight.Wait()
	if q.pool != nil {
		q.pool.Release()
	}
}

func (q *Queue) run(ctx context.Context, id string, in Bundle) Bundle {
	task := strings.ToLower(in.text(KeyTaskType))
	logger := q.logger.With("task_id", id, "task", task)
	start := time.Now()

	out := Bundle{KeyTaskID: id}
	result, err := q.dispatch(ctx, task, in)
	if err != nil {
		kind := ErrorKind(err)
		out[KeyError] = err.Error()
		out[KeyErrorKind] = kind
		logger.Warn("task failed", "kind", kind, "err", err)
		return out
	}

	out[KeyResult] = result
	logger.Debug("task completed", "elapsed", time.Since(start))
	return out
}

func (q *Queue) dispatch(ctx context.Context, task string, in Bundle) (string, error) {
	model := in.text(KeyAIModel)

	switch task {
	case TaskSummarize:
		content, err := in.require(KeyContent)
		if err != nil {
			return "", err
		}
		return q.ai.Summarize(ctx, content, in.summarizationOptions(), service.Hints{
			Model:    model,
			CardType: in.cardType(),
		})

	case TaskTranscribe:
		uri, err := in.require(KeyURI)
		if err != nil {
			return "", err
		}
		return q.ai.TranscribeAudio(ctx, uri, in.language(), service.TranscribeOptions{Model: model})

	case TaskExtractText:
		uri, err := in.require(KeyURI)
		if err != nil {
			return "", err
		}
		return q.ai.ExtractTextFromImage(ctx, uri, in.language(), model)

	case TaskGenerateTags:
		content, err := in.require(KeyContent)
		if err != nil {
			return "", err
		}
		tags, err := q.ai.GenerateTags(ctx, content, in.language(), in.positive(KeyMaxTags, DefaultMaxTags), model)
		if err != nil {
			return "", err
		}
		return strings.Join(tags, ","), nil

	case TaskGenerateTitle:
		content, err := in.require(KeyContent)
		if err != nil {
			return "", err
		}
		return q.ai.GenerateTitle(ctx, content, in.language(), model)

	case TaskBuildGraph:
		if q.graph == nil {
			return "", ErrGraphUnavailable
		}
		cardID, err := in.require(KeyCardID)
		if err != nil {
			return "", err
		}
		graph, err := q.graph.BuildGraph(ctx, cardID)
		if err != nil {
			return "", err
		}
		return encodeGraph(graph)

	case TaskFindConnections:
		if q.graph == nil {
			return "", ErrGraphUnavailable
		}
		cardID1, err := in.require(KeyCardID)
		if err != nil {
			return "", err
		}
		cardID2, err := in.require(KeyCardID2)
		if err != nil {
			return "", err
		}
		connections, err := q.graph.FindConnections(ctx, cardID1, cardID2)
		if err != nil {
			return "", err
		}
		return encodeConnections(connections)

	case "":
		return "", invalidInput("task type not specified")
	default:
		return "", invalidInput("unknown task type: %s", task)
	}
}

// ErrorKind names the category of a task failure as reported under
// KeyErrorKind: an ai.Kind name, or one of KindInvalidInput, KindNotFound
// and KindCanceled.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, storage.ErrNotFound):
		return KindNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrGraphUnavailable):
		return ai.KindConfiguration.String()
	default:
		return ai.KindOf(err).String()
	}
}
