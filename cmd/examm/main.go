// Command examm wires a loaded configuration and a time-series provider
// into a coordinator and a worker pool and runs the search to completion.
// CLI parsing beyond the config file path is out of scope; this is
// minimal glue, not a full command surface.
package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/examm-go/examm/config"
	"github.com/examm-go/examm/erand"
	"github.com/examm-go/examm/genome"
	"github.com/examm-go/examm/genome/cell"
	"github.com/examm-go/examm/population"
	"github.com/examm-go/examm/serialize"
	"github.com/examm-go/examm/series"
	"github.com/examm-go/examm/worker"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: examm <config.toml>")
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalw("configuration invalid", "error", err)
	}

	provider := demoSineProvider()

	coordCfg := buildCoordinatorConfig(cfg, provider)
	coord := population.New(coordCfg, log)

	train, validation := splitExamples(provider)

	trainer := func(g *genome.Genome, r *erand.Rand) genome.TrainResult {
		return g.Train(train, validation, r)
	}

	pool := &worker.Pool{Workers: cfg.NumberThreads, Seed: 42, Log: log}
	pool.Run(context.Background(), coord, trainer)

	best := coord.Best()
	if best == nil {
		log.Fatalw("search completed with no inserted genome")
	}
	log.Infow("search complete", "best_mse", best.BestMSE, "generation", best.Generation)

	if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
		log.Fatalw("creating output directory", "error", err)
	}
	path := cfg.OutputDirectory + "/" + cfg.OutputFilename
	f, err := os.Create(path)
	if err != nil {
		log.Fatalw("creating output file", "error", err)
	}
	defer f.Close()
	if err := serialize.WriteJSON(f, best, false); err != nil {
		log.Fatalw("writing best genome", "error", err)
	}
}

func buildCoordinatorConfig(cfg *config.Config, provider series.Provider) population.Config {
	dropout := 0.0
	if cfg.DropoutProbability != nil {
		dropout = *cfg.DropoutProbability
	}
	sampling := erand.SamplingUniform
	switch cfg.RecSamplingDistribution {
	case "histogram":
		sampling = erand.SamplingHistogram
	case "normal":
		sampling = erand.SamplingNormal
	case "pheromone":
		sampling = erand.SamplingPheromone
	}
	return population.Config{
		NumberIslands:  cfg.NumberIslands,
		IslandCapacity: cfg.PopulationSize,
		MaxGenomes:     cfg.MaxGenomes,
		InputNames:     provider.InputNames(),
		OutputNames:    provider.OutputNames(),
		HyperParams: genome.HyperParams{
			LearningRate:  cfg.LearningRate,
			BPIterations:  cfg.BPIterations,
			DropoutProb:   dropout,
			LowThreshold:  cfg.LowThreshold,
			HighThreshold: cfg.HighThreshold,
		},
		MutationWeights:     genome.DefaultMutationWeights(),
		CrossoverParams:     genome.CrossoverParams{MoreFitCrossover: 0.8, LessFitCrossover: 0.3},
		GenerateWeights:     population.DefaultGenerateWeights(),
		CellTypes:           cell.Types,
		WeightStd:           0.5,
		MaxMutationAttempts: 20,
		StagnationLimit:     cfg.NumGenomesCheckOnIsland,
		DelaySampling:       sampling,
		DelayMin:            cfg.RecDelayMin,
		DelayMax:            cfg.RecDelayMax,
		PheromoneBaseline:   cfg.RecDepthPheromoneBaseline,
		PheromoneDecayRate:  cfg.RecDepthPheromoneDecayRate,
		GlobalDelaySampling: cfg.RecSamplingPopulation == "global",
		Seed:                1,
	}
}

func splitExamples(p series.Provider) (train, validation []genome.Example) {
	all := p.Export(0, p.NumSeries())
	if len(all) <= 1 {
		return all, all
	}
	split := len(all) * 4 / 5
	if split == 0 {
		split = 1
	}
	return all[:split], all[split:]
}

// demoSineProvider builds a small sine-wave dataset, used when no
// external time-series loader is wired in.
func demoSineProvider() series.Provider {
	const n = 200
	input := make([]float64, n)
	output := make([]float64, n)
	for i := 0; i < n; i++ {
		input[i] = float64(i)
		output[i] = math.Sin(2 * math.Pi * float64(i) / 20)
	}
	return series.NewMemory(
		[]string{"t"}, []string{"sin"},
		[][][]float64{{input}},
		[][][]float64{{output}},
	)
}
