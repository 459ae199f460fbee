package genome

// ForwardEdge carries a weighted same-timestep connection from a
// lower-depth node to a higher-depth node (invariant: depth(Input) <
// depth(Output)).
type ForwardEdge struct {
	Innovation int
	Input      int // node innovation number
	Output     int
	Weight     float64
	Enabled    bool

	dWeight float64
}

// Live reports whether the edge participates in the current graph: enabled
// and both endpoints live.
func (e *ForwardEdge) Live(nodes map[int]*Node) bool {
	if !e.Enabled {
		return false
	}
	in, out := nodes[e.Input], nodes[e.Output]
	return in != nil && out != nil && in.Live() && out.Live()
}

func (e *ForwardEdge) clone() *ForwardEdge {
	cp := *e
	return &cp
}

// RecurrentEdge carries a weighted connection from a node's activation at
// timestep t-Delay to another node's input at timestep t. Delay >= 1;
// recurrent edges are exempt from the depth ordering invariant and may
// close cycles.
type RecurrentEdge struct {
	Innovation int
	Input      int
	Output     int
	Delay      int
	Weight     float64
	Enabled    bool

	dWeight float64
}

func (e *RecurrentEdge) Live(nodes map[int]*Node) bool {
	if !e.Enabled {
		return false
	}
	in, out := nodes[e.Input], nodes[e.Output]
	return in != nil && out != nil && in.Live() && out.Live()
}

func (e *RecurrentEdge) clone() *RecurrentEdge {
	cp := *e
	return &cp
}
