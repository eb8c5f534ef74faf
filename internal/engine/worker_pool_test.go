package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolCollectsEveryJob(t *testing.T) {
	var mu sync.Mutex
	got := map[int]int{}
	p := newWorkerPool(context.Background(), 4, 2,
		func(_ context.Context, n int) (int, error) { return n * n, nil },
		func(n, sq int) {
			mu.Lock()
			got[n] = sq
			mu.Unlock()
		},
	)
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Submit(context.Background(), i))
	}
	require.NoError(t, p.Drain())

	assert.Len(t, got, 100)
	assert.Equal(t, 81, got[9])
}

func TestWorkerPoolReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	p := newWorkerPool(context.Background(), 1, 4,
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, boom
			}
			return n, nil
		},
		nil,
	)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(context.Background(), i))
	}
	assert.ErrorIs(t, p.Drain(), boom)
}
