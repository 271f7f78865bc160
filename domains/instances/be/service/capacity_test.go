package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapacityTrackerInitialize(t *testing.T) {
	tracker := NewCapacityTracker(200, 1)
	require.NoError(t, tracker.Initialize(50))

	available, unit := tracker.Snapshot()
	require.Equal(t, int64(150), available)
	require.Equal(t, int64(1), unit)
}

func TestCapacityTrackerInitializeOverCommitted(t *testing.T) {
	tracker := NewCapacityTracker(10, 1)
	require.Error(t, tracker.Initialize(11))
}

func TestCapacityTrackerExhaustion(t *testing.T) {
	tracker := NewCapacityTracker(2, 1)

	require.NoError(t, tracker.Reserve())
	require.NoError(t, tracker.Reserve())
	require.ErrorIs(t, tracker.Reserve(), ErrCapacityExhausted)

	tracker.Release()
	require.NoError(t, tracker.Reserve())
}

func TestCapacityTrackerConcurrentReserve(t *testing.T) {
	const workers = 64

	tracker := NewCapacityTracker(workers, 1)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = tracker.Reserve()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	available, _ := tracker.Snapshot()
	require.Equal(t, int64(0), available)
	require.ErrorIs(t, tracker.Reserve(), ErrCapacityExhausted)
}

func TestCapacityTrackerConcurrentReserveOverDemand(t *testing.T) {
	const (
		workers  = 64
		capacity = 40
	)

	tracker := NewCapacityTracker(capacity, 1)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tracker.Reserve(); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly capacity reservations win; the tracker never goes negative.
	require.Equal(t, capacity, succeeded)
	available, _ := tracker.Snapshot()
	require.Equal(t, int64(0), available)
}

func TestNewCapacityTrackerPanicsOnBadArguments(t *testing.T) {
	require.Panics(t, func() { NewCapacityTracker(-1, 1) })
	require.Panics(t, func() { NewCapacityTracker(10, 0) })
}
