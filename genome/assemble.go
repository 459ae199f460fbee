package genome

// Assemble rebuilds a Genome from already-constructed nodes and edges,
// used by the serialize package when reloading a persisted genome. It
// recomputes reachability but does not unflatten parameters; callers
// apply those with Unflatten once the canonical parameter length is
// known.
func Assemble(generation int, params HyperParams, inputOrder, outputOrder []int, nodes []*Node, forwardEdges []*ForwardEdge, recurrentEdges []*RecurrentEdge) *Genome {
	g := New()
	g.Generation = generation
	g.Params = params
	g.inputOrder = inputOrder
	g.outputOrder = outputOrder
	for _, n := range nodes {
		g.addNode(n)
	}
	for _, e := range forwardEdges {
		g.addForwardEdge(e)
	}
	for _, e := range recurrentEdges {
		g.addRecurrentEdge(e)
	}
	g.ComputeReachability()
	return g
}
