// Package population implements the island-structured coordinator: a
// fixed set of islands each holding up to P fitness-sorted genomes,
// generation and insertion under a single mutex, and the recurrent-delay
// sampling-distribution lifecycle.
package population

import "github.com/examm-go/examm/genome"

// State is an island's lifecycle stage.
type State int

const (
	StateInitializing State = iota
	StateFilled
	StateRepopulating
)

func (s State) String() string {
	switch s {
	case StateFilled:
		return "filled"
	case StateRepopulating:
		return "repopulating"
	default:
		return "initializing"
	}
}

// Island is an ordered sequence of up to Capacity genomes, sorted
// ascending by validation MSE.
type Island struct {
	ID       int
	Capacity int
	State    State

	genomes            []*genome.Genome
	failedInsertsInRow  int
}

func NewIsland(id, capacity int) *Island {
	return &Island{ID: id, Capacity: capacity, State: StateInitializing}
}

func (isl *Island) Len() int { return len(isl.genomes) }

func (isl *Island) Genomes() []*genome.Genome { return isl.genomes }

func (isl *Island) Best() *genome.Genome {
	if len(isl.genomes) == 0 {
		return nil
	}
	return isl.genomes[0]
}

func (isl *Island) Worst() *genome.Genome {
	if len(isl.genomes) == 0 {
		return nil
	}
	return isl.genomes[len(isl.genomes)-1]
}

func (isl *Island) Random(pick int) *genome.Genome {
	if len(isl.genomes) == 0 {
		return nil
	}
	return isl.genomes[pick%len(isl.genomes)]
}

// insert applies the island-level portion of the coordinator's insert
// policy and returns whether g was retained.
func (isl *Island) insert(g *genome.Genome) bool {
	if len(isl.genomes) < isl.Capacity {
		isl.genomes = append(isl.genomes, g)
		sortByMSE(isl.genomes)
		if len(isl.genomes) == isl.Capacity {
			isl.State = StateFilled
		}
		return true
	}
	if g.BestMSE < isl.Worst().BestMSE {
		isl.genomes[len(isl.genomes)-1] = g
		sortByMSE(isl.genomes)
		return true
	}
	return false
}

// maybeRepopulate clears the island except for its best genome once it
// has failed to improve for stagnationLimit consecutive insert attempts.
func (isl *Island) maybeRepopulate(stagnationLimit int) {
	if isl.failedInsertsInRow < stagnationLimit {
		return
	}
	best := isl.Best()
	isl.genomes = isl.genomes[:0]
	if best != nil {
		isl.genomes = append(isl.genomes, best)
	}
	isl.failedInsertsInRow = 0
	isl.State = StateRepopulating
}

func sortByMSE(gs []*genome.Genome) {
	for i := 1; i < len(gs); i++ {
		for j := i; j > 0 && gs[j].BestMSE < gs[j-1].BestMSE; j-- {
			gs[j], gs[j-1] = gs[j-1], gs[j]
		}
	}
}
