package genome

import (
	"fmt"
	"sort"

	"github.com/examm-go/examm/erand"
)

// CrossoverParams holds the inheritance probabilities for edges present in
// only one parent.
type CrossoverParams struct {
	MoreFitCrossover float64
	LessFitCrossover float64
}

// Crossover merges two parents by innovation number. Matching-innovation
// edges are inherited from a uniformly chosen parent; disjoint edges are
// inherited with probability MoreFitCrossover or LessFitCrossover
// depending on which parent carries them. Every node that is an endpoint
// of an inherited edge is inherited too, along with every input/output
// node.
func Crossover(moreFit, lessFit *Genome, counter *InnovationCounter, params CrossoverParams, r *erand.Rand) (*Genome, error) {
	child := New()
	child.Producer = OpCrossover
	child.Params = moreFit.Params
	if moreFit.Generation >= lessFit.Generation {
		child.Generation = moreFit.Generation + 1
	} else {
		child.Generation = lessFit.Generation + 1
	}
	child.inputOrder = append([]int(nil), moreFit.inputOrder...)
	child.outputOrder = append([]int(nil), moreFit.outputOrder...)

	needed := make(map[int]bool)
	for _, inn := range child.inputOrder {
		needed[inn] = true
	}
	for _, inn := range child.outputOrder {
		needed[inn] = true
	}

	inheritedForward := crossoverForward(moreFit, lessFit, params, r)
	inheritedRecurrent := crossoverRecurrent(moreFit, lessFit, params, r)

	for _, e := range inheritedForward {
		needed[e.Input] = true
		needed[e.Output] = true
	}
	for _, e := range inheritedRecurrent {
		needed[e.Input] = true
		needed[e.Output] = true
	}

	for inn := range needed {
		src := moreFit.nodeByInn[inn]
		if src == nil {
			src = lessFit.nodeByInn[inn]
		}
		if src == nil {
			return nil, fmt.Errorf("genome: crossover endpoint %d absent from both parents", inn)
		}
		child.addNode(src.clone())
	}
	for _, e := range inheritedForward {
		child.addForwardEdge(e)
	}
	for _, e := range inheritedRecurrent {
		child.addRecurrentEdge(e)
	}

	child.ComputeReachability()
	if !child.OutputsLive() {
		return nil, fmt.Errorf("genome: crossover child has non-live output")
	}
	_ = counter // innovation numbers are inherited, not minted, during crossover
	return child, nil
}

func crossoverForward(moreFit, lessFit *Genome, params CrossoverParams, r *erand.Rand) []*ForwardEdge {
	inns := unionForwardInns(moreFit.forwardByInn, lessFit.forwardByInn)
	var out []*ForwardEdge
	for _, inn := range inns {
		em, okM := moreFit.forwardByInn[inn]
		el, okL := lessFit.forwardByInn[inn]
		switch {
		case okM && okL:
			if r.Bool(0.5) {
				out = append(out, em.clone())
			} else {
				out = append(out, el.clone())
			}
		case okM:
			if r.Bool(params.MoreFitCrossover) {
				out = append(out, em.clone())
			}
		case okL:
			if r.Bool(params.LessFitCrossover) {
				out = append(out, el.clone())
			}
		}
	}
	return out
}

func crossoverRecurrent(moreFit, lessFit *Genome, params CrossoverParams, r *erand.Rand) []*RecurrentEdge {
	inns := unionRecurrentInns(moreFit.recurrentByInn, lessFit.recurrentByInn)
	var out []*RecurrentEdge
	for _, inn := range inns {
		em, okM := moreFit.recurrentByInn[inn]
		el, okL := lessFit.recurrentByInn[inn]
		switch {
		case okM && okL:
			if r.Bool(0.5) {
				out = append(out, em.clone())
			} else {
				out = append(out, el.clone())
			}
		case okM:
			if r.Bool(params.MoreFitCrossover) {
				out = append(out, em.clone())
			}
		case okL:
			if r.Bool(params.LessFitCrossover) {
				out = append(out, el.clone())
			}
		}
	}
	return out
}

func unionForwardInns(a, b map[int]*ForwardEdge) []int {
	seen := make(map[int]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	out := make([]int, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func unionRecurrentInns(a, b map[int]*RecurrentEdge) []int {
	seen := make(map[int]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	out := make([]int, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
