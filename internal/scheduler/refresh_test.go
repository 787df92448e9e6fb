package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresherDisabled(t *testing.T) {
	var calls atomic.Int32
	r := NewRefresher(0, func() { calls.Add(1) })
	require.NoError(t, r.Start())
	r.Stop()
	assert.Zero(t, calls.Load())
}

func TestRefresherRunsPeriodically(t *testing.T) {
	var calls atomic.Int32
	r := NewRefresher(50*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, r.Start())
	defer r.Stop()

	assert.Zero(t, calls.Load(), "first run waits for the schedule")
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
}
