// Package series declares the external time-series loader interface and a
// small in-memory reference implementation used by tests and the
// sine-wave demo in cmd/examm.
package series

import "github.com/examm-go/examm/genome"

// Provider is the external collaborator that supplies normalized training
// and validation data. Implementations outside this module (CSV loaders,
// database-backed stores, etc.) are out of scope; only this interface is
// specified.
type Provider interface {
	NumSeries() int
	InputNames() []string
	OutputNames() []string
	// Bounds returns the observed [min, max] for a named channel, used for
	// min-max normalization: (raw - min) / (max - min).
	Bounds(channel string) (min, max float64)
	// Export slices series [start, start+count) into parallel training
	// examples. All series exported in one call share the same length.
	Export(start, count int) []genome.Example
}

// Memory is a Provider backed by already-normalized in-memory series,
// every one the same length.
type Memory struct {
	inputNames, outputNames []string
	bounds                  map[string][2]float64
	examples                []genome.Example
}

// NewMemory builds a Memory provider from parallel input/output series
// (each [seriesIdx][channel][t]) and their declared channel names.
func NewMemory(inputNames, outputNames []string, inputs, outputs [][][]float64) *Memory {
	m := &Memory{inputNames: inputNames, outputNames: outputNames, bounds: make(map[string][2]float64)}
	for i := range inputs {
		m.examples = append(m.examples, genome.Example{Inputs: inputs[i], Outputs: outputs[i]})
	}
	for ci, name := range inputNames {
		m.bounds[name] = channelBounds(inputs, ci)
	}
	for ci, name := range outputNames {
		m.bounds[name] = channelBounds(outputs, ci)
	}
	return m
}

func channelBounds(series [][][]float64, channel int) [2]float64 {
	min, max := 0.0, 0.0
	first := true
	for _, ex := range series {
		if channel >= len(ex) {
			continue
		}
		for _, v := range ex[channel] {
			if first {
				min, max = v, v
				first = false
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return [2]float64{min, max}
}

func (m *Memory) NumSeries() int        { return len(m.examples) }
func (m *Memory) InputNames() []string  { return m.inputNames }
func (m *Memory) OutputNames() []string { return m.outputNames }

func (m *Memory) Bounds(channel string) (float64, float64) {
	b := m.bounds[channel]
	return b[0], b[1]
}

func (m *Memory) Export(start, count int) []genome.Example {
	end := start + count
	if end > len(m.examples) {
		end = len(m.examples)
	}
	if start >= end {
		return nil
	}
	return append([]genome.Example(nil), m.examples[start:end]...)
}

// Normalize applies min-max normalization in place to every value in
// series using the given [min, max] bound.
func Normalize(values []float64, min, max float64) {
	span := max - min
	if span == 0 {
		span = 1
	}
	for i, v := range values {
		values[i] = (v - min) / span
	}
}
