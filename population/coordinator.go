package population

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome"
	"github.com/examm-go/examm/genome/cell"
)

// GenerateWeights are the relative probabilities of the four generation
// strategies once an island is past its initial-fill stage.
type GenerateWeights struct {
	Clone            float64
	Mutate           float64
	IntraCrossover   float64
	InterCrossover   float64
}

func DefaultGenerateWeights() GenerateWeights {
	return GenerateWeights{Clone: 0.1, Mutate: 0.6, IntraCrossover: 0.2, InterCrossover: 0.1}
}

// Config bundles every coordinator-construction parameter that is not
// itself coordinator state.
type Config struct {
	NumberIslands       int
	IslandCapacity      int
	MaxGenomes          int
	InputNames          []string
	OutputNames         []string
	HyperParams         genome.HyperParams
	MutationWeights     genome.MutationWeights
	CrossoverParams     genome.CrossoverParams
	GenerateWeights     GenerateWeights
	CellTypes           []cell.Type
	WeightStd           float64
	MaxMutationAttempts int
	StagnationLimit     int
	DelaySampling       erand.Sampling
	DelayMin, DelayMax  int
	PheromoneBaseline   float64
	PheromoneDecayRate  float64
	GlobalDelaySampling bool // rec_sampling_population == "global" when true, "island" when false
	Seed                int64
}

// Coordinator is the single-mutex-guarded owner of every island, the
// innovation counter, the random source, and the recurrent-delay
// distributions. Every structural mutation, crossover, and insertion
// happens while holding that mutex.
type Coordinator struct {
	mu sync.Mutex

	cfg     Config
	islands []*Island
	counter *genome.InnovationCounter
	rng     *erand.Rand
	log     *zap.SugaredLogger

	globalDist erand.DelayDist
	islandDist []erand.DelayDist

	nextIslandRR   int
	generatedCount int
	insertedCount  int
	best           *genome.Genome
}

// New constructs a coordinator with cfg.NumberIslands empty islands.
func New(cfg Config, log *zap.SugaredLogger) *Coordinator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Coordinator{
		cfg:     cfg,
		counter: genome.NewInnovationCounter(),
		rng:     erand.NewRand(cfg.Seed),
		log:     log,
	}
	for i := 0; i < cfg.NumberIslands; i++ {
		c.islands = append(c.islands, NewIsland(i, cfg.IslandCapacity))
	}
	if cfg.GlobalDelaySampling {
		c.globalDist = erand.New(cfg.DelaySampling, cfg.DelayMin, cfg.DelayMax, cfg.PheromoneBaseline, cfg.PheromoneDecayRate)
	} else {
		c.islandDist = make([]erand.DelayDist, cfg.NumberIslands)
		for i := range c.islandDist {
			c.islandDist[i] = erand.New(cfg.DelaySampling, cfg.DelayMin, cfg.DelayMax, cfg.PheromoneBaseline, cfg.PheromoneDecayRate)
		}
	}
	return c
}

func (c *Coordinator) distFor(islandIdx int) erand.DelayDist {
	if c.globalDist != nil {
		return c.globalDist
	}
	return c.islandDist[islandIdx]
}

// Generate produces the next genome to train, or nil once MaxGenomes
// insertions have occurred.
func (c *Coordinator) Generate() *genome.Genome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.insertedCount >= c.cfg.MaxGenomes {
		return nil
	}

	idx := c.nextIslandRR % len(c.islands)
	c.nextIslandRR++
	island := c.islands[idx]

	var g *genome.Genome
	if island.State != StateFilled && island.Len() < island.Capacity {
		g = c.generateForFilling(island)
	} else {
		g = c.generateByOperator(idx, island)
	}
	g.Params = c.cfg.HyperParams
	g.Island = idx
	c.generatedCount++
	return g
}

func (c *Coordinator) generateForFilling(island *Island) *genome.Genome {
	if island.Len() == 0 {
		return genome.Seed(c.counter, c.cfg.InputNames, c.cfg.OutputNames, c.rng, c.cfg.WeightStd)
	}
	parent := island.Random(c.rng.Choose(island.Len()))
	child, err := genome.Mutate(parent, c.counter, c.cfg.MutationWeights, c.distFor(island.ID), c.cfg.CellTypes, c.rng, c.cfg.MaxMutationAttempts)
	if err != nil {
		c.log.Debugw("mutation exhausted during fill, cloning parent", "island", island.ID, "error", err)
		return parent.Clone()
	}
	return child
}

func (c *Coordinator) generateByOperator(idx int, island *Island) *genome.Genome {
	w := c.cfg.GenerateWeights
	total := w.Clone + w.Mutate + w.IntraCrossover + w.InterCrossover
	if total <= 0 {
		total = 1
	}
	pick := c.rng.Float64() * total

	switch {
	case pick < w.Clone:
		parent := island.Random(c.rng.Choose(island.Len()))
		clone := parent.Clone()
		clone.Producer = genome.OpClone
		return clone
	case pick < w.Clone+w.Mutate:
		parent := island.Random(c.rng.Choose(island.Len()))
		child, err := genome.Mutate(parent, c.counter, c.cfg.MutationWeights, c.distFor(idx), c.cfg.CellTypes, c.rng, c.cfg.MaxMutationAttempts)
		if err != nil {
			c.log.Debugw("mutation exhausted, cloning parent", "island", idx, "error", err)
			clone := parent.Clone()
			clone.Producer = genome.OpClone
			return clone
		}
		return child
	case pick < w.Clone+w.Mutate+w.IntraCrossover:
		return c.crossoverWithin(idx, island)
	default:
		return c.crossoverAcross(idx, island)
	}
}

func (c *Coordinator) crossoverWithin(idx int, island *Island) *genome.Genome {
	if island.Len() < 2 {
		return c.fallbackMutate(idx, island)
	}
	p1 := island.Random(c.rng.Choose(island.Len()))
	p2 := island.Random(c.rng.Choose(island.Len()))
	return c.crossover(idx, island, p1, p2)
}

func (c *Coordinator) crossoverAcross(idx int, island *Island) *genome.Genome {
	if len(c.islands) < 2 || island.Len() == 0 {
		return c.fallbackMutate(idx, island)
	}
	otherIdx := (idx + 1 + c.rng.Choose(len(c.islands)-1)) % len(c.islands)
	other := c.islands[otherIdx]
	if other.Len() == 0 {
		return c.fallbackMutate(idx, island)
	}
	p1 := island.Random(c.rng.Choose(island.Len()))
	p2 := other.Random(c.rng.Choose(other.Len()))
	return c.crossover(idx, island, p1, p2)
}

func (c *Coordinator) crossover(idx int, island *Island, p1, p2 *genome.Genome) *genome.Genome {
	moreFit, lessFit := p1, p2
	if p2.BestMSE < p1.BestMSE {
		moreFit, lessFit = p2, p1
	}
	child, err := genome.Crossover(moreFit, lessFit, c.counter, c.cfg.CrossoverParams, c.rng)
	if err != nil {
		c.log.Debugw("crossover produced non-live output, falling back to mutation", "island", idx, "error", err)
		return c.fallbackMutate(idx, island)
	}
	return child
}

func (c *Coordinator) fallbackMutate(idx int, island *Island) *genome.Genome {
	parent := island.Random(c.rng.Choose(island.Len()))
	child, err := genome.Mutate(parent, c.counter, c.cfg.MutationWeights, c.distFor(idx), c.cfg.CellTypes, c.rng, c.cfg.MaxMutationAttempts)
	if err != nil {
		clone := parent.Clone()
		clone.Producer = genome.OpClone
		return clone
	}
	return child
}

// Insert records a trained genome's result, retaining it in its assigned
// island under the fitness-ordered policy. A genome whose training failed
// (non-finite parameters, fitness +Inf) is counted but never handed to
// its island: it is returned to the coordinator and not inserted.
func (c *Coordinator) Insert(g *genome.Genome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	island := c.islands[g.Island]
	retained := !math.IsInf(g.BestMSE, 1) && !math.IsNaN(g.BestMSE) && island.insert(g)

	if retained {
		island.failedInsertsInRow = 0
		c.depositDelays(g)
		scope := []*Island{island}
		if c.globalDist != nil {
			scope = c.islands
		}
		var delays []int
		for _, isl := range scope {
			for _, member := range isl.genomes {
				for _, e := range member.RecurrentEdges() {
					if e.Enabled {
						delays = append(delays, e.Delay)
					}
				}
			}
		}
		c.distFor(g.Island).Rebuild(delays)
		if c.best == nil || g.BestMSE < c.best.BestMSE {
			c.best = g
		}
	} else {
		island.failedInsertsInRow++
		island.maybeRepopulate(c.cfg.StagnationLimit)
	}

	c.insertedCount++
	c.maybeDecay()
	return retained
}

func (c *Coordinator) depositDelays(g *genome.Genome) {
	dep, ok := c.distFor(g.Island).(interface{ Deposit(int) })
	if !ok {
		return
	}
	for _, e := range g.RecurrentEdges() {
		if e.Enabled {
			dep.Deposit(e.Delay)
		}
	}
}

func (c *Coordinator) maybeDecay() {
	if c.cfg.DelaySampling != erand.SamplingPheromone {
		return
	}
	const decayEvery = 25
	if c.insertedCount%decayEvery != 0 {
		return
	}
	if c.globalDist != nil {
		if d, ok := c.globalDist.(interface{ Decay() }); ok {
			d.Decay()
		}
		return
	}
	for _, d := range c.islandDist {
		if dd, ok := d.(interface{ Decay() }); ok {
			dd.Decay()
		}
	}
}

// Best returns the fittest genome inserted so far, or nil if none has been
// inserted.
func (c *Coordinator) Best() *genome.Genome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.best
}

// Terminated reports whether MaxGenomes insertions have occurred.
func (c *Coordinator) Terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertedCount >= c.cfg.MaxGenomes
}

// Counts returns the current generated/inserted counters, for metrics and
// logging.
func (c *Coordinator) Counts() (generated, inserted int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generatedCount, c.insertedCount
}

// Islands returns a copy of the coordinator's island slice. The *Island
// values in it are the coordinator's own, not copies.
func (c *Coordinator) Islands() []*Island {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Island(nil), c.islands...)
}
