package genome

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome/cell"
)

// MutationWeights holds the independent selection weight for each
// structural operator; weights are normalized to probabilities at
// selection time.
type MutationWeights struct {
	AddEdge          float64
	AddRecurrentEdge float64
	EnableEdge       float64
	DisableEdge      float64
	SplitEdge        float64
	AddNode          float64
	EnableNode       float64
	DisableNode      float64
	SplitNode        float64
	MergeNode        float64
}

// DefaultMutationWeights mirrors typical EXAMM configurations: edge
// operators favored over the rarer whole-node restructuring operators.
func DefaultMutationWeights() MutationWeights {
	return MutationWeights{
		AddEdge: 1.0, AddRecurrentEdge: 1.0,
		EnableEdge: 0.2, DisableEdge: 0.2,
		SplitEdge: 0.3, AddNode: 1.0,
		EnableNode: 0.1, DisableNode: 0.1,
		SplitNode: 0.2, MergeNode: 0.2,
	}
}

func (w MutationWeights) entries() []struct {
	op Operator
	wt float64
} {
	return []struct {
		op Operator
		wt float64
	}{
		{OpAddEdge, w.AddEdge},
		{OpAddRecurrentEdge, w.AddRecurrentEdge},
		{OpEnableEdge, w.EnableEdge},
		{OpDisableEdge, w.DisableEdge},
		{OpSplitEdge, w.SplitEdge},
		{OpAddNode, w.AddNode},
		{OpEnableNode, w.EnableNode},
		{OpDisableNode, w.DisableNode},
		{OpSplitNode, w.SplitNode},
		{OpMergeNode, w.MergeNode},
	}
}

func (w MutationWeights) choose(r *erand.Rand) Operator {
	entries := w.entries()
	total := 0.0
	for _, e := range entries {
		total += e.wt
	}
	if total <= 0 {
		return OpAddEdge
	}
	target := r.Float64() * total
	acc := 0.0
	for _, e := range entries {
		acc += e.wt
		if target < acc {
			return e.op
		}
	}
	return entries[len(entries)-1].op
}

// Mutate clones parent and applies one randomly-chosen structural operator,
// retrying up to maxAttempts times when the result is structurally invalid
// (an output left unreachable from any input). It returns the discarded
// attempts' errors joined, for logging, alongside the final error if every
// attempt failed.
func Mutate(parent *Genome, counter *InnovationCounter, weights MutationWeights, dist erand.DelayDist, cellTypes []cell.Type, r *erand.Rand, maxAttempts int) (*Genome, error) {
	var errs error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		child := parent.Clone()
		op := weights.choose(r)
		var err error
		switch op {
		case OpAddEdge:
			err = mutateAddEdge(child, counter, r)
		case OpAddRecurrentEdge:
			err = mutateAddRecurrentEdge(child, counter, dist, r)
		case OpEnableEdge:
			err = mutateSetEdgeEnabled(child, r, true)
		case OpDisableEdge:
			err = mutateSetEdgeEnabled(child, r, false)
		case OpSplitEdge:
			err = mutateSplitEdge(child, counter, cellTypes, r)
		case OpAddNode:
			err = mutateAddNode(child, counter, cellTypes, r)
		case OpEnableNode:
			err = mutateSetNodeEnabled(child, r, true)
		case OpDisableNode:
			err = mutateSetNodeEnabled(child, r, false)
		case OpSplitNode:
			err = mutateSplitNode(child, counter, r)
		case OpMergeNode:
			err = mutateMergeNode(child, r)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("attempt %d (%s): %w", attempt, op, err))
			continue
		}
		child.ComputeReachability()
		if !child.OutputsLive() {
			errs = multierr.Append(errs, fmt.Errorf("attempt %d (%s): output not live", attempt, op))
			continue
		}
		child.Producer = op
		child.Generation = parent.Generation + 1
		return child, nil
	}
	return nil, fmt.Errorf("genome: mutation exhausted %d attempts: %w", maxAttempts, errs)
}

func liveNonOutput(g *Genome) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Live() && n.Role != RoleOutput {
			out = append(out, n)
		}
	}
	return out
}

func liveNonInput(g *Genome) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Live() && n.Role != RoleInput {
			out = append(out, n)
		}
	}
	return out
}

func liveNodes(g *Genome) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Live() {
			out = append(out, n)
		}
	}
	return out
}

func hasForwardEdge(g *Genome, a, b int) bool {
	for _, e := range g.forwardEdges {
		if e.Input == a && e.Output == b {
			return true
		}
	}
	return false
}

// mutateAddEdge picks two live nodes (a, b) with depth(a) < depth(b) and,
// if no forward edge connects them yet, adds one.
func mutateAddEdge(g *Genome, counter *InnovationCounter, r *erand.Rand) error {
	candidates := liveNodes(g)
	if len(candidates) < 2 {
		return fmt.Errorf("fewer than two live nodes")
	}
	for attempt := 0; attempt < 20; attempt++ {
		a := candidates[r.Choose(len(candidates))]
		b := candidates[r.Choose(len(candidates))]
		if a.Depth >= b.Depth {
			continue
		}
		if hasForwardEdge(g, a.Innovation, b.Innovation) {
			continue
		}
		e := &ForwardEdge{
			Innovation: counter.NextEdge(),
			Input:      a.Innovation,
			Output:     b.Innovation,
			Weight:     erand.BoundedNormal(r, 0, 1, -10, 10),
			Enabled:    true,
		}
		g.addForwardEdge(e)
		return nil
	}
	return fmt.Errorf("no eligible (a, b) pair found")
}

// mutateAddRecurrentEdge picks any two live nodes (source not an output,
// destination not an input, per the firing-model restriction recorded in
// DESIGN.md) and a delay sampled from the current recurrent-delay
// distribution.
func mutateAddRecurrentEdge(g *Genome, counter *InnovationCounter, dist erand.DelayDist, r *erand.Rand) error {
	sources := liveNonOutput(g)
	dests := liveNonInput(g)
	if len(sources) == 0 || len(dests) == 0 {
		return fmt.Errorf("no eligible source/destination nodes")
	}
	a := sources[r.Choose(len(sources))]
	b := dests[r.Choose(len(dests))]
	d := 1
	if dist != nil {
		d = dist.Sample(r)
	}
	e := &RecurrentEdge{
		Innovation: counter.NextEdge(),
		Input:      a.Innovation,
		Output:     b.Innovation,
		Delay:      d,
		Weight:     erand.BoundedNormal(r, 0, 1, -10, 10),
		Enabled:    true,
	}
	g.addRecurrentEdge(e)
	return nil
}

func mutateSetEdgeEnabled(g *Genome, r *erand.Rand, enabled bool) error {
	type flag struct {
		set func(bool)
		cur bool
	}
	var candidates []flag
	for _, e := range g.forwardEdges {
		e := e
		if enabled && g.nodeByInn[e.Input].Depth >= g.nodeByInn[e.Output].Depth {
			continue // never re-enable a forward edge that breaks depth order
		}
		candidates = append(candidates, flag{func(v bool) { e.Enabled = v }, e.Enabled})
	}
	for _, e := range g.recurrentEdges {
		e := e
		candidates = append(candidates, flag{func(v bool) { e.Enabled = v }, e.Enabled})
	}
	var eligible []flag
	for _, c := range candidates {
		if c.cur != enabled {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return fmt.Errorf("no edge to toggle")
	}
	eligible[r.Choose(len(eligible))].set(enabled)
	return nil
}

// mutateSplitEdge replaces edge (a -> b) with (a -> n) and (n -> b) for a
// fresh hidden node n at the midpoint depth, disabling the original.
func mutateSplitEdge(g *Genome, counter *InnovationCounter, cellTypes []cell.Type, r *erand.Rand) error {
	var live []*ForwardEdge
	for _, e := range g.forwardEdges {
		if e.Live(g.nodeByInn) {
			live = append(live, e)
		}
	}
	if len(live) == 0 {
		return fmt.Errorf("no live forward edge to split")
	}
	e := live[r.Choose(len(live))]
	a, b := g.nodeByInn[e.Input], g.nodeByInn[e.Output]
	e.Enabled = false

	ct := cellTypes[r.Choose(len(cellTypes))]
	depth := (a.Depth + b.Depth) / 2
	n := NewHiddenNode(counter.NextNode(), ct, depth)
	n.Kernel.InitRandom(r, 0, 1)
	g.addNode(n)

	g.addForwardEdge(&ForwardEdge{
		Innovation: counter.NextEdge(), Input: a.Innovation, Output: n.Innovation,
		Weight: erand.BoundedNormal(r, 0, 1, -10, 10), Enabled: true,
	})
	g.addForwardEdge(&ForwardEdge{
		Innovation: counter.NextEdge(), Input: n.Innovation, Output: b.Innovation,
		Weight: erand.BoundedNormal(r, 0, 1, -10, 10), Enabled: true,
	})
	return nil
}

// mutateAddNode inserts a fresh hidden node with a uniformly drawn cell
// type, connected to one live predecessor and one live successor via
// add_edge semantics.
func mutateAddNode(g *Genome, counter *InnovationCounter, cellTypes []cell.Type, r *erand.Rand) error {
	live := liveNodes(g)
	if len(live) == 0 {
		return fmt.Errorf("no live nodes")
	}
	sort.Slice(live, func(i, j int) bool { return live[i].Depth < live[j].Depth })

	ct := cellTypes[r.Choose(len(cellTypes))]
	depth := 0.1 + r.Float64()*0.8
	n := NewHiddenNode(counter.NextNode(), ct, depth)
	n.Kernel.InitRandom(r, 0, 1)
	g.addNode(n)

	var pred, succ *Node
	for _, cand := range live {
		if cand.Depth < depth && cand.Role != RoleOutput {
			pred = cand
		}
	}
	for _, cand := range live {
		if cand.Depth > depth && cand.Role != RoleInput {
			succ = cand
			break
		}
	}
	if pred == nil || succ == nil {
		return fmt.Errorf("no eligible predecessor/successor at depth %f", depth)
	}
	g.addForwardEdge(&ForwardEdge{
		Innovation: counter.NextEdge(), Input: pred.Innovation, Output: n.Innovation,
		Weight: erand.BoundedNormal(r, 0, 1, -10, 10), Enabled: true,
	})
	g.addForwardEdge(&ForwardEdge{
		Innovation: counter.NextEdge(), Input: n.Innovation, Output: succ.Innovation,
		Weight: erand.BoundedNormal(r, 0, 1, -10, 10), Enabled: true,
	})
	return nil
}

// mutateSetNodeEnabled flips a random hidden node's enabled flag. Input
// and output nodes are never disabled.
func mutateSetNodeEnabled(g *Genome, r *erand.Rand, enabled bool) error {
	var eligible []*Node
	for _, n := range g.nodes {
		if n.Role != RoleHidden {
			continue
		}
		if n.Enabled != enabled {
			eligible = append(eligible, n)
		}
	}
	if len(eligible) == 0 {
		return fmt.Errorf("no hidden node to toggle")
	}
	eligible[r.Choose(len(eligible))].Enabled = enabled
	return nil
}

// mutateSplitNode duplicates a live hidden node, copying its kernel
// parameters. The copy receives a duplicate of every enabled incoming
// forward and recurrent edge of the original; each enabled outgoing forward
// edge of the original is moved to the copy with probability 1/2. Outgoing
// recurrent edges stay on the original.
func mutateSplitNode(g *Genome, counter *InnovationCounter, r *erand.Rand) error {
	var hidden []*Node
	for _, n := range g.nodes {
		if n.Role == RoleHidden && n.Live() {
			hidden = append(hidden, n)
		}
	}
	if len(hidden) == 0 {
		return fmt.Errorf("no live hidden node to split")
	}
	orig := hidden[r.Choose(len(hidden))]

	dup := NewHiddenNode(counter.NextNode(), orig.CellType, orig.Depth)
	off := 0
	buf := make([]float64, orig.Kernel.ParamCount())
	orig.Kernel.ReadParams(buf, &off)
	off = 0
	dup.Kernel.WriteParams(buf, &off)
	g.addNode(dup)

	for _, e := range g.forwardEdges {
		if e.Output == orig.Innovation && e.Enabled {
			g.addForwardEdge(&ForwardEdge{
				Innovation: counter.NextEdge(), Input: e.Input, Output: dup.Innovation,
				Weight: e.Weight, Enabled: true,
			})
		}
	}
	for _, e := range g.recurrentEdges {
		if e.Output == orig.Innovation && e.Enabled {
			g.addRecurrentEdge(&RecurrentEdge{
				Innovation: counter.NextEdge(), Input: e.Input, Output: dup.Innovation, Delay: e.Delay,
				Weight: e.Weight, Enabled: true,
			})
		}
	}
	half := len(g.forwardEdges)
	for i := 0; i < half; i++ {
		e := g.forwardEdges[i]
		if e.Input == orig.Innovation && e.Enabled && r.Bool(0.5) {
			g.addForwardEdge(&ForwardEdge{
				Innovation: counter.NextEdge(), Input: dup.Innovation, Output: e.Output,
				Weight: e.Weight, Enabled: true,
			})
			e.Enabled = false
		}
	}
	return nil
}

// mutateMergeNode collapses two live hidden nodes into one: the lower
// innovation number survives, the higher is disabled, edges are
// re-pointed to the survivor (dropping any resulting self-loop or forward
// edge that no longer runs from lower to higher depth, and resolving
// duplicate edges by keeping the lower innovation number).
func mutateMergeNode(g *Genome, r *erand.Rand) error {
	var hidden []*Node
	for _, n := range g.nodes {
		if n.Role == RoleHidden && n.Live() {
			hidden = append(hidden, n)
		}
	}
	if len(hidden) < 2 {
		return fmt.Errorf("fewer than two live hidden nodes")
	}
	i, j := r.Choose(len(hidden)), r.Choose(len(hidden))
	for j == i {
		j = r.Choose(len(hidden))
	}
	keep, drop := hidden[i], hidden[j]
	if keep.Innovation > drop.Innovation {
		keep, drop = drop, keep
	}

	seen := make(map[[2]int]*ForwardEdge)
	for _, e := range g.forwardEdges {
		if e.Input == drop.Innovation {
			e.Input = keep.Innovation
		}
		if e.Output == drop.Innovation {
			e.Output = keep.Innovation
		}
		if g.nodeByInn[e.Input].Depth >= g.nodeByInn[e.Output].Depth {
			e.Enabled = false
			continue
		}
		key := [2]int{e.Input, e.Output}
		if existing, ok := seen[key]; ok {
			if e.Innovation < existing.Innovation {
				existing.Enabled = false
				seen[key] = e
			} else {
				e.Enabled = false
			}
			continue
		}
		seen[key] = e
	}

	seenRec := make(map[[3]int]*RecurrentEdge)
	for _, e := range g.recurrentEdges {
		if e.Input == drop.Innovation {
			e.Input = keep.Innovation
		}
		if e.Output == drop.Innovation {
			e.Output = keep.Innovation
		}
		if e.Input == e.Output {
			e.Enabled = false
			continue
		}
		key := [3]int{e.Input, e.Output, e.Delay}
		if existing, ok := seenRec[key]; ok {
			if e.Innovation < existing.Innovation {
				existing.Enabled = false
				seenRec[key] = e
			} else {
				e.Enabled = false
			}
			continue
		}
		seenRec[key] = e
	}

	drop.Enabled = false
	return nil
}
