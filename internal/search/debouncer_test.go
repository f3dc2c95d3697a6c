package search

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Value

	for _, text := range []string{"j", "jo", "joh"} {
		d.Schedule(func() {
			calls.Add(1)
			last.Store(text)
		})
	}
	require.True(t, d.Pending())

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "joh", last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var fired atomic.Bool

	d.Schedule(func() { fired.Store(true) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel(), "second Cancel has nothing pending")

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestDebouncerRunsAgainAfterQuietPeriod(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32

	d.Schedule(func() { calls.Add(1) })
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 2*time.Millisecond)

	d.Schedule(func() { calls.Add(1) })
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 2*time.Millisecond)
}
