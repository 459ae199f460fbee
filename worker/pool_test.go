package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome"
)

type fakeCoordinator struct {
	mu        sync.Mutex
	remaining int
	inserted  int
}

func (f *fakeCoordinator) Generate() *genome.Genome {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remaining <= 0 {
		return nil
	}
	f.remaining--
	return genome.New()
}

func (f *fakeCoordinator) Insert(g *genome.Genome) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted++
	return true
}

func TestPoolRunDrainsUntilGenerateReturnsNil(t *testing.T) {
	coord := &fakeCoordinator{remaining: 20}
	pool := &Pool{Workers: 4, Seed: 1}

	var trained int
	var mu sync.Mutex
	trainer := func(g *genome.Genome, r *erand.Rand) genome.TrainResult {
		mu.Lock()
		trained++
		mu.Unlock()
		return genome.TrainResult{MSE: r.Float64()}
	}

	pool.Run(context.Background(), coord, trainer)

	require.Equal(t, 20, trained)
	require.Equal(t, 20, coord.inserted)
}

func TestPoolRunExitsOnContextCancel(t *testing.T) {
	coord := &fakeCoordinator{remaining: 1 << 30}
	pool := &Pool{Workers: 2, Seed: 1}

	ctx, cancel := context.WithCancel(context.Background())
	var started sync.WaitGroup
	started.Add(1)
	var once sync.Once

	trainer := func(g *genome.Genome, r *erand.Rand) genome.TrainResult {
		once.Do(func() {
			started.Done()
			cancel()
		})
		return genome.TrainResult{}
	}

	done := make(chan struct{})
	go func() {
		pool.Run(ctx, coord, trainer)
		close(done)
	}()

	started.Wait()
	<-done
}
