package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/poiesic/secondbrain/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	delays []time.Duration
}

func (r *recorder) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func testPolicy(times int, r *recorder) Policy {
	return Policy{
		Times:        times,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Factor:       2.0,
		Sleep:        r.sleep,
	}
}

func serverError() error {
	return ai.ErrorFromStatus(ai.ProviderOpenAI, http.StatusServiceUnavailable, "unavailable", nil, "")
}

func TestDo_SuccessFirstTry(t *testing.T) {
	r := &recorder{}
	attempts := 0
	err := testPolicy(3, r).Do(context.Background(), func(context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, r.delays)
}

func TestDo_RetryOn503ThenSuccess(t *testing.T) {
	r := &recorder{}
	attempts := 0
	err := testPolicy(3, r).Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts == 1 {
			return serverError()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, r.delays)
}

func TestDo_PaymentRequiredIsTerminal(t *testing.T) {
	r := &recorder{}
	attempts := 0
	err := testPolicy(3, r).Do(context.Background(), func(context.Context) error {
		attempts++
		return ai.ErrorFromStatus(ai.ProviderOpenRouter, http.StatusPaymentRequired, "", nil, "")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrPaymentRequired)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, r.delays)
}

func TestDo_TotalAttemptsIsTimesPlusOne(t *testing.T) {
	for _, times := range []int{0, 1, 3, 5} {
		r := &recorder{}
		attempts := 0
		err := testPolicy(times, r).Do(context.Background(), func(context.Context) error {
			attempts++
			return serverError()
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ai.ErrServer)
		assert.Equal(t, times+1, attempts, "times=%d", times)
		assert.Len(t, r.delays, times)
	}
}

func TestDo_FinalAttemptResultIsReturned(t *testing.T) {
	r := &recorder{}
	attempts := 0
	err := testPolicy(2, r).Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts == 3 {
			return nil
		}
		return serverError()
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_UnknownErrorsAreNotRetried(t *testing.T) {
	r := &recorder{}
	attempts := 0
	err := testPolicy(3, r).Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("mystery")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_CustomClassifier(t *testing.T) {
	r := &recorder{}
	p := testPolicy(2, r)
	p.Retryable = func(error) bool { return true }
	attempts := 0
	_ = p.Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("always")
	})
	assert.Equal(t, 3, attempts)
}

func TestDo_BackoffGrowthIsCapped(t *testing.T) {
	r := &recorder{}
	p := testPolicy(6, r)
	_ = p.Do(context.Background(), func(context.Context) error { return serverError() })

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	assert.Equal(t, want, r.delays)
	for k, d := range r.delays {
		assert.LessOrEqual(t, d, p.MaxDelay)
		assert.Equal(t, p.Delay(k+1), d)
	}
}

func TestDo_ContextCanceledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	p := Policy{
		Times:        5,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
		Factor:       2,
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, func(context.Context) error {
		attempts++
		return serverError()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextAlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := DefaultPolicy().Do(ctx, func(context.Context) error {
		attempts++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

func TestValue_ReturnsResult(t *testing.T) {
	r := &recorder{}
	attempts := 0
	got, err := Value(context.Background(), testPolicy(3, r), func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", ai.NewError(ai.KindRateLimit, ai.ProviderGoogle, "", nil)
		}
		return "summary", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "summary", got)
	assert.Len(t, r.delays, 2)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 3, p.Times)
	assert.Equal(t, time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 16*time.Second, p.Delay(5))
	assert.Equal(t, 20*time.Second, p.Delay(6))
}

func TestDo_HonorsRetryAfter(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter time.Duration
		want       time.Duration
	}{
		{"longer than backoff", 2 * time.Second, 2 * time.Second},
		{"shorter than backoff", 50 * time.Millisecond, 100 * time.Millisecond},
		{"absent", 0, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			attempts := 0
			err := testPolicy(1, r).Do(context.Background(), func(context.Context) error {
				attempts++
				if attempts == 1 {
					e := ai.ErrorFromStatus(ai.ProviderAnthropic, http.StatusTooManyRequests, "", nil, "")
					e.RetryAfter = tt.retryAfter
					return e
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []time.Duration{tt.want}, r.delays)
		})
	}
}
