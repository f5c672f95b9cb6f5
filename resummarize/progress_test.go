package resummarize

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("increments reach the total", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()

		tracker.Increment(25)
		tracker.Increment(25)
		tracker.Increment(50)

		assert.Greater(t, tracker.Elapsed(), time.Duration(0))
		assert.Contains(t, buf.String(), "100/100")
		assert.Contains(t, buf.String(), "100.0%")
		assert.Contains(t, buf.String(), "cards/s")
	})

	t.Run("finish completes the line", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()
		tracker.Update(75)
		tracker.Finish()

		assert.Contains(t, buf.String(), "100/100")
		assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	})

	t.Run("zero total", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 0, 10)
		tracker.Start()
		tracker.Finish()

		assert.Contains(t, buf.String(), "0/0")
	})

	t.Run("capped at total", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()
		tracker.Increment(150)

		assert.Contains(t, buf.String(), "100/100")
		assert.NotContains(t, buf.String(), "150")
	})

	t.Run("silent until started", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Increment(10)
		tracker.Finish()

		assert.Empty(t, buf.String())
		assert.Equal(t, time.Duration(0), tracker.Elapsed())
	})

	t.Run("reports on interval", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 1000, 100)
		tracker.Start()

		tracker.Update(50)
		assert.Empty(t, buf.String())

		tracker.Update(100)
		assert.NotEmpty(t, buf.String())

		buf.Reset()
		tracker.Update(150)
		assert.Empty(t, buf.String())

		tracker.Update(250)
		assert.Contains(t, buf.String(), "250/1000")
	})
}
