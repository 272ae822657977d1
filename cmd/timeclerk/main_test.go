package main

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmelo/timeclerk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	_, err := newScheduler("not a schedule", testutil.NewTestLogger(), func() error { return nil })
	assert.Error(t, err)
}

// TestNewScheduler_SkipsOverlappingTicks verifies that a tick landing while
// the previous pass is still running does not start a second concurrent pass.
func TestNewScheduler_SkipsOverlappingTicks(t *testing.T) {
	release := make(chan struct{})
	var runs atomic.Int32

	scheduler, err := newScheduler("@hourly", testutil.NewTestLogger(), func() error {
		runs.Add(1)
		<-release
		return nil
	})
	require.NoError(t, err)

	entries := scheduler.Entries()
	require.Len(t, entries, 1)
	job := entries[0].WrappedJob

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job.Run()
	}()

	// Wait for the first pass to be underway.
	require.Eventually(t, func() bool {
		return runs.Load() == 1
	}, time.Second, time.Millisecond)

	// A tick firing mid-pass must return without running anything.
	job.Run()
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	wg.Wait()

	// Once the pass finishes, the next tick runs normally again.
	job.Run()
	assert.Equal(t, int32(2), runs.Load())
}
