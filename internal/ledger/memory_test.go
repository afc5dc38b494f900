package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_ReserveUpToCapacity(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	for i := 1; i <= 3; i++ {
		count, err := l.TryReserveSlot(ctx, 1, 3)
		require.NoError(t, err)
		require.Equal(t, i, count)
	}

	count, err := l.TryReserveSlot(ctx, 1, 3)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.Equal(t, 3, count, "a refused reserve reports the current count")

	// A different event has its own counter.
	count, err = l.TryReserveSlot(ctx, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMemory_ConcurrentReserveNeverExceedsCapacity(t *testing.T) {
	const capacity = 8
	const contenders = 64

	ctx := context.Background()
	l := NewMemory()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.TryReserveSlot(ctx, 1, capacity); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, capacity, wins)
	count, err := l.CurrentCount(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, capacity, count)
}

func TestMemory_ReleaseFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	count, err := l.ReleaseSlot(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, count)

	_, err = l.TryReserveSlot(ctx, 1, 1)
	require.NoError(t, err)
	count, err = l.ReleaseSlot(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMemory_SyncOverwritesCounter(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	require.NoError(t, l.Sync(ctx, 1, 4))
	count, err := l.CurrentCount(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	// A freed-up sync reopens admission.
	_, err = l.TryReserveSlot(ctx, 1, 4)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.NoError(t, l.Sync(ctx, 1, 2))
	count, err = l.TryReserveSlot(ctx, 1, 4)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Negative input clamps to zero.
	require.NoError(t, l.Sync(ctx, 1, -5))
	count, err = l.CurrentCount(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, count)
}
