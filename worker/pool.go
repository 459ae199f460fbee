// Package worker implements the fixed thread-pool driver: each worker
// repeatedly pulls a genome from the coordinator, trains it locally, and
// returns the trained result, exiting once the coordinator signals
// termination.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome"
)

// Coordinator is the subset of population.Coordinator a worker needs.
// Declared as an interface here so the pool can be tested against a
// fake without importing the population package.
type Coordinator interface {
	Generate() *genome.Genome
	Insert(g *genome.Genome) bool
}

// Trainer runs one genome's training, given a private random source. In
// production this is (*genome.Genome).Train closed over per-worker
// train/validation examples; tests may substitute a stub.
type Trainer func(g *genome.Genome, r *erand.Rand) genome.TrainResult

// Pool is a fixed set of worker goroutines sharing one Coordinator.
type Pool struct {
	Workers int
	Seed    int64
	Log     *zap.SugaredLogger
}

// Run spawns p.Workers goroutines, each looping generate -> train
// (unlocked) -> insert until Generate returns nil or ctx is canceled. It
// blocks until every worker has exited.
func (p *Pool) Run(ctx context.Context, coord Coordinator, train Trainer) {
	log := p.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	var wg sync.WaitGroup
	for i := 0; i < p.Workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := erand.NewRand(p.Seed + int64(i))
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				g := coord.Generate()
				if g == nil {
					log.Debugw("worker exiting, coordinator signaled termination", "worker", i)
					return
				}
				result := train(g, rng)
				if result.Failed {
					log.Warnw("genome training failed with non-finite parameters", "worker", i, "island", g.Island)
				}
				coord.Insert(g)
			}
		}()
	}
	wg.Wait()
}
