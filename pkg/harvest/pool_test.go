package harvest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vexrank/pkg/logger"
	"vexrank/pkg/robotevents"
)

func TestWorkerPoolPreservesListingOrderSlots(t *testing.T) {
	process := func(ctx context.Context, event robotevents.Event) ([]Match, error) {
		// Later events finish first.
		time.Sleep(time.Duration(10-event.ID) * time.Millisecond)
		return []Match{{ID: event.ID}}, nil
	}

	pool := newWorkerPool(4, process, logger.NewNopLogger())
	pool.Start(context.Background())

	var collect sync.WaitGroup
	collect.Add(1)
	slots := make([][]Match, 8)
	go func() {
		defer collect.Done()
		for res := range pool.Results() {
			slots[res.index] = res.matches
		}
	}()

	for i := 0; i < 8; i++ {
		require.NoError(t, pool.Submit(eventJob{index: i, event: robotevents.Event{ID: i + 1}}))
	}
	pool.Stop()
	collect.Wait()

	for i, slot := range slots {
		require.Len(t, slot, 1, "slot %d", i)
		assert.Equal(t, i+1, slot[0].ID)
	}
}

func TestWorkerPoolBoundsParallelism(t *testing.T) {
	var inFlight, peak int32

	process := func(ctx context.Context, event robotevents.Event) ([]Match, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil, nil
	}

	pool := newWorkerPool(2, process, logger.NewNopLogger())
	pool.Start(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range pool.Results() {
		}
	}()

	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(eventJob{index: i}))
	}
	pool.Stop()
	<-done

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	process := func(ctx context.Context, event robotevents.Event) ([]Match, error) {
		close(started)
		<-release
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	pool := newWorkerPool(1, process, logger.NewNopLogger())
	pool.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range pool.Results() {
		}
	}()

	// Occupy the single worker, then fill the queue buffer.
	require.NoError(t, pool.Submit(eventJob{index: 0}))
	<-started
	require.NoError(t, pool.Submit(eventJob{index: 1}))
	require.NoError(t, pool.Submit(eventJob{index: 2}))

	cancel()

	err := pool.Submit(eventJob{index: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	pool.Stop()
	<-done
}
