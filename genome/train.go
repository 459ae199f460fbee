package genome

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/examm-go/examm/erand"
)

// Loss computes mean squared error and mean absolute error between
// predicted and target output series (both [channel][t]).
func Loss(predicted, targets [][]float64) (mse, mae float64) {
	n := 0
	for c := range predicted {
		for t := range predicted[c] {
			d := predicted[c][t] - targets[c][t]
			mse += d * d
			mae += math.Abs(d)
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return mse / float64(n), mae / float64(n)
}

func lossGradient(predicted, targets [][]float64) [][]float64 {
	n := 0
	for _, ch := range predicted {
		n += len(ch)
	}
	grad := make([][]float64, len(predicted))
	for c := range predicted {
		grad[c] = make([]float64, len(predicted[c]))
		for t := range predicted[c] {
			grad[c][t] = 2 * (predicted[c][t] - targets[c][t]) / float64(n)
		}
	}
	return grad
}

func nonFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}

func (g *Genome) buildDropMask(r *erand.Rand) ([]bool, float64) {
	p := g.Params.DropoutProb
	if p <= 0 {
		return nil, 1
	}
	n := len(g.liveForwardEdgesByOutputDepth(false))
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = r.Float64() < p
	}
	return mask, 1 / (1 - p)
}

// TrainResult summarizes one Train call's outcome for the coordinator.
type TrainResult struct {
	MSE     float64
	MAE     float64
	Failed  bool
	Epochs  int
	Stopped string // "", "low_threshold", "high_threshold", "iterations"
}

// Train runs stochastic gradient descent with backpropagation-through-time
// for g.Params.BPIterations epochs, shuffling training examples each
// epoch, updating the best-parameter snapshot whenever validation MSE
// improves, and honoring the optional low/high early-stop thresholds. A
// parameter update that turns non-finite stops training, marks the result
// Failed, and sets g.BestMSE to +Inf. It never touches coordinator state;
// callers run it on a worker-private genome.
func (g *Genome) Train(train, validation []Example, r *erand.Rand) TrainResult {
	g.BestMSE = math.Inf(1)
	g.BestParams = nil

	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}

	result := TrainResult{Stopped: "iterations"}

	for epoch := 0; epoch < g.Params.BPIterations; epoch++ {
		r.ShuffleInts(order)

		for _, idx := range order {
			ex := train[idx]
			mask, scale := g.buildDropMask(r)
			predicted := g.Forward(ex.Inputs, mask, scale)
			grad := lossGradient(predicted, ex.Outputs)
			g.Backward(grad, mask, scale)

			params := g.Flatten()
			grads := g.Gradients()
			floats.AddScaled(params, -g.Params.LearningRate, grads)
			if nonFinite(params) {
				g.BestMSE = math.Inf(1)
				result.Failed = true
				result.MSE = math.Inf(1)
				return result
			}
			_ = g.Unflatten(params)
		}

		trainMSE := g.evaluateMSE(train)
		valMSE := g.evaluateMSE(validation)
		result.Epochs = epoch + 1

		if valMSE < g.BestMSE {
			g.BestMSE = valMSE
			g.BestParams = g.Flatten()
		}

		if g.Params.LowThreshold != nil && trainMSE < *g.Params.LowThreshold {
			result.Stopped = "low_threshold"
			break
		}
		if g.Params.HighThreshold != nil && valMSE > *g.Params.HighThreshold {
			result.Stopped = "high_threshold"
			break
		}
	}

	if g.BestParams != nil {
		_ = g.Unflatten(g.BestParams)
	}
	result.MSE, result.MAE = g.evaluateBoth(validation)
	return result
}

func (g *Genome) evaluateMSE(examples []Example) float64 {
	mse, _ := g.evaluateBoth(examples)
	return mse
}

func (g *Genome) evaluateBoth(examples []Example) (mse, mae float64) {
	if len(examples) == 0 {
		return 0, 0
	}
	var sumMSE, sumMAE float64
	for _, ex := range examples {
		predicted := g.Forward(ex.Inputs, nil, 1)
		m, a := Loss(predicted, ex.Outputs)
		sumMSE += m
		sumMAE += a
	}
	return sumMSE / float64(len(examples)), sumMAE / float64(len(examples))
}
