package cell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examm-go/examm/erand"
)

// runSeries computes the summed MSE-style loss of a kernel's outputs
// against a fixed target series, for a fixed input series.
func runSeries(k Kernel, inputs, targets []float64) float64 {
	T := len(inputs)
	k.Reset(T)
	loss := 0.0
	outs := make([]float64, T)
	for t := 0; t < T; t++ {
		outs[t] = k.Forward(t, inputs[t])
		d := outs[t] - targets[t]
		loss += d * d
	}
	return loss
}

func analyticGradients(k Kernel, inputs, targets []float64) []float64 {
	T := len(inputs)
	k.Reset(T)
	outs := make([]float64, T)
	for t := 0; t < T; t++ {
		outs[t] = k.Forward(t, inputs[t])
	}
	for t := T - 1; t >= 0; t-- {
		delta := 2 * (outs[t] - targets[t])
		k.Backward(t, delta)
	}
	return k.Gradients(nil)
}

func centeredDiffGradients(k Kernel, inputs, targets []float64, eps float64) []float64 {
	n := k.ParamCount()
	base := make([]float64, n)
	off := 0
	k.ReadParams(base, &off)

	grads := make([]float64, n)
	for i := 0; i < n; i++ {
		plus := append([]float64(nil), base...)
		plus[i] += eps
		o := 0
		k.WriteParams(plus, &o)
		lossPlus := runSeries(k, inputs, targets)

		minus := append([]float64(nil), base...)
		minus[i] -= eps
		o = 0
		k.WriteParams(minus, &o)
		lossMinus := runSeries(k, inputs, targets)

		grads[i] = (lossPlus - lossMinus) / (2 * eps)

		o = 0
		k.WriteParams(base, &o)
	}
	return grads
}

func TestKernelGradientsMatchCenteredDifference(t *testing.T) {
	r := erand.NewRand(42)
	inputs := []float64{0.1, -0.2, 0.3, 0.05, -0.1}
	targets := []float64{0.2, 0.1, -0.1, 0.0, 0.15}

	for _, typ := range Types {
		typ := typ
		t.Run(typ.String(), func(t *testing.T) {
			k := New(typ)
			k.InitRandom(r, 0, 0.5)

			analytic := analyticGradients(k, inputs, targets)
			numeric := centeredDiffGradients(k, inputs, targets, 1e-5)

			require.Len(t, numeric, len(analytic))
			for i := range analytic {
				denom := abs(analytic[i])
				if denom < 1e-6 {
					denom = 1e-6
				}
				relErr := abs(analytic[i]-numeric[i]) / denom
				if relErr > 1e-3 {
					t.Errorf("param %d: analytic=%v numeric=%v relErr=%v", i, analytic[i], numeric[i], relErr)
				}
			}
		})
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestParamCountMatchesReadWrite(t *testing.T) {
	r := erand.NewRand(7)
	for _, typ := range Types {
		k := New(typ)
		k.InitRandom(r, 0, 1)
		buf := make([]float64, k.ParamCount())
		off := 0
		k.ReadParams(buf, &off)
		require.Equal(t, k.ParamCount(), off)
		off = 0
		k.WriteParams(buf, &off)
		require.Equal(t, k.ParamCount(), off)
	}
}
