package genome

// Example is one training or validation time series: parallel
// [channel][t] input and target output slices, all channels sharing the
// same length.
type Example struct {
	Inputs  [][]float64
	Outputs [][]float64
}

func (e Example) length() int {
	if len(e.Inputs) > 0 {
		return len(e.Inputs[0])
	}
	if len(e.Outputs) > 0 {
		return len(e.Outputs[0])
	}
	return 0
}

// resetForSeries (re)allocates every node's per-timestep buffers for a
// series of length T and records each node's current fan-in/fan-out from
// the live edge set.
func (g *Genome) resetForSeries(T int) {
	fanIn := make(map[int]int, len(g.nodes))
	fanOut := make(map[int]int, len(g.nodes))
	for _, e := range g.forwardEdges {
		if !e.Live(g.nodeByInn) {
			continue
		}
		fanIn[e.Output]++
		fanOut[e.Input]++
	}
	for _, e := range g.recurrentEdges {
		if !e.Live(g.nodeByInn) {
			continue
		}
		fanIn[e.Output]++
		fanOut[e.Input]++
	}
	for _, n := range g.nodes {
		if !n.Live() {
			continue
		}
		n.reset(T, fanIn[n.Innovation], fanOut[n.Innovation])
	}
	g.seriesLen = T
}

// forwardPreludeRecurrent bumps destination fan-in once, before any
// timestep is processed, for every recurrent edge whose delay reaches
// before the start of the series.
func (g *Genome) forwardPreludeRecurrent(T int, recEdges []*RecurrentEdge) {
	for _, e := range recEdges {
		dst := g.nodeByInn[e.Output]
		for t := 0; t < e.Delay && t < T; t++ {
			dst.bumpFiredInput(t)
		}
	}
}

// backwardPreludeRecurrent is the symmetric prelude for the backward pass:
// it bumps source fan-out for timesteps whose paired destination lies past
// the end of the series.
func (g *Genome) backwardPreludeRecurrent(T int, recEdges []*RecurrentEdge) {
	for _, e := range recEdges {
		src := g.nodeByInn[e.Input]
		for t := T - e.Delay; t < T; t++ {
			if t < 0 {
				continue
			}
			src.bumpFiredOutput(t)
		}
	}
}

// Forward runs the full time-unrolled forward pass over one example's
// input channels (given in InputOrder order) and returns each output
// node's activation series (in OutputOrder order).
func (g *Genome) Forward(inputs [][]float64, dropMask []bool, dropScale float64) [][]float64 {
	T := len(inputs[0])
	g.resetForSeries(T)

	recEdges := g.liveRecurrentEdges()
	fwdEdges := g.liveForwardEdgesByOutputDepth(false)

	for idx, inn := range g.inputOrder {
		node := g.nodeByInn[inn]
		for t := 0; t < T; t++ {
			node.SetInputValue(t, inputs[idx][t])
		}
	}

	g.forwardPreludeRecurrent(T, recEdges)

	for t := 0; t < T; t++ {
		for _, e := range recEdges {
			if t-e.Delay < 0 {
				continue
			}
			src, dst := g.nodeByInn[e.Input], g.nodeByInn[e.Output]
			dst.FireInput(t, e.Weight*src.Activation(t-e.Delay))
		}
		for ei, e := range fwdEdges {
			if dropMask != nil && dropMask[ei] {
				g.nodeByInn[e.Output].FireInput(t, 0)
				continue
			}
			src, dst := g.nodeByInn[e.Input], g.nodeByInn[e.Output]
			w := e.Weight
			if dropMask != nil {
				w *= dropScale
			}
			dst.FireInput(t, w*src.Activation(t))
		}
	}

	out := make([][]float64, len(g.outputOrder))
	for idx, inn := range g.outputOrder {
		node := g.nodeByInn[inn]
		series := make([]float64, T)
		for t := 0; t < T; t++ {
			series[t] = node.Activation(t)
		}
		out[idx] = series
	}
	return out
}

// Backward runs the full time-unrolled backward pass given dL/dOutput for
// every output channel and timestep (in OutputOrder order), accumulating
// every live node's kernel gradients and every live edge's weight
// gradient.
func (g *Genome) Backward(outputDeltas [][]float64, dropMask []bool, dropScale float64) {
	T := g.seriesLen

	for _, e := range g.forwardEdges {
		e.dWeight = 0
	}
	for _, e := range g.recurrentEdges {
		e.dWeight = 0
	}

	for idx, inn := range g.outputOrder {
		node := g.nodeByInn[inn]
		for t := 0; t < T; t++ {
			node.SetOutputDelta(t, outputDeltas[idx][t])
		}
	}

	recEdges := g.liveRecurrentEdges()
	fwdAscending := g.liveForwardEdgesByOutputDepth(false)
	dropIndex := make(map[int]int, len(fwdAscending))
	for i, e := range fwdAscending {
		dropIndex[e.Innovation] = i
	}
	fwdEdges := g.liveForwardEdgesByOutputDepth(true)

	g.backwardPreludeRecurrent(T, recEdges)

	for t := T - 1; t >= 0; t-- {
		for _, e := range recEdges {
			if t+e.Delay > T-1 {
				continue
			}
			src, dst := g.nodeByInn[e.Input], g.nodeByInn[e.Output]
			d := dst.Delta(t + e.Delay)
			e.dWeight += d * src.Activation(t)
			src.FireOutput(t, d*e.Weight)
		}
		for _, e := range fwdEdges {
			src, dst := g.nodeByInn[e.Input], g.nodeByInn[e.Output]
			d := dst.Delta(t)
			w := e.Weight
			if dropMask != nil && dropMask[dropIndex[e.Innovation]] {
				src.FireOutput(t, 0)
				continue
			}
			if dropMask != nil {
				w *= dropScale
			}
			e.dWeight += d * src.Activation(t)
			src.FireOutput(t, d*w)
		}
	}
}
