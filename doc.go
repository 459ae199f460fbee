// Package examm is the repository root for the examm neuroevolutionary
// search engine: it discovers the topology and weights of recurrent neural
// networks for time-series regression.
//
// The repository is organized into the following packages:
//
//   - erand: seedable random source and the four recurrent-delay samplers
//     (uniform, histogram, normal, pheromone).
//   - genome: the recurrent genome graph (nodes, forward/recurrent edges),
//     its flatten/unflatten parameter view, BPTT training loop, and the
//     mutation/crossover operators.
//   - genome/cell: the per-type recurrent node kernels (LSTM, Simple, GRU,
//     MGU) behind a uniform Kernel interface.
//   - population: islands and the coordinator that generates and inserts
//     genomes under a single mutex.
//   - worker: the fixed worker-pool driver that loops generate/train/insert.
//   - series: the time-series loader interface consumed by training, plus a
//     minimal in-memory reference implementation.
//   - serialize: the on-disk genome format.
//   - dotexport: dot-language graph export.
//   - config: the recognized configuration options.
//   - cmd/examm: a runnable search driver wiring all of the above together.
package examm
