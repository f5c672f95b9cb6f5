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


// Package retry wraps operations in exponential backoff driven by an error
// classification predicate.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/secondbrain/ai"
)

// Policy configures exponential backoff.
//
// An operation is attempted up to Times times with a sleep after each
// retryable failure, then attempted once more unconditionally, so the
// worst case is Times+1 invocations.
type Policy struct {
	Times        int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64

	// Retryable classifies failures. Defaults to ai.IsRetryable.
	Retryable func(error) bool

	// Sleep waits for d or until ctx is done. Defaults to a timer select.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger *slog.Logger
}

// DefaultPolicy returns 3 retries starting at 1s, doubling, capped at 20s.
func DefaultPolicy() Policy {
	return FromConfig(ai.DefaultConfig().Retry)
}

// FromConfig builds a Policy from AI configuration values.
func FromConfig(c ai.RetryConfig) Policy {
	return Policy{
		Times:        c.Times,
		InitialDelay: c.InitialDelay,
		MaxDelay:     c.MaxDelay,
		Factor:       c.Factor,
	}
}

// Delay returns the sleep that precedes retry number k (k >= 1):
// min(InitialDelay * Factor^(k-1), MaxDelay).
func (p Policy) Delay(k int) time.Duration {
	d := p.InitialDelay
	for i := 1; i < k; i++ {
		d = p.next(d)
	}
	return p.clamp(d)
}

func (p Policy) next(d time.Duration) time.Duration {
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	n := time.Duration(float64(d) * factor)
	if p.MaxDelay > 0 && n > p.MaxDelay {
		return p.MaxDelay
	}
	return n
}

func (p Policy) clamp(d time.Duration) time.Duration {
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Do runs op under the policy. It returns nil on the first success and the
// failure itself on the first non-retryable error, without sleeping.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := Value(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Value runs op under p and returns its result. A failure carrying a
// RetryAfter longer than the backoff delay waits for RetryAfter instead.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	retryable := p.Retryable
	if retryable == nil {
		retryable = ai.IsRetryable
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default().With("component", "retry")
	}

	delay := p.clamp(p.InitialDelay)
	for attempt := 1; attempt <= p.Times; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return v, nil
		}
		if !retryable(err) {
			return zero, err
		}

		wait, retryAfter := delay, retryAfterOf(err)
		if retryAfter > wait {
			wait = retryAfter
		}
		logger.Warn("operation failed, retrying",
			"attempt", attempt,
			"delay", wait,
			"retry_after", retryAfter,
			"kind", ai.KindOf(err).String(),
			"err", err)

		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
		delay = p.next(delay)
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}
	// Final attempt; its outcome is returned whatever it is.
	return op(ctx)
}

// retryAfterOf returns the wait the provider asked for, if any.
func retryAfterOf(err error) time.Duration {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		return aiErr.RetryAfter
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
