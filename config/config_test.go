package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validTOML = `
population_size = 20
number_islands = 4
max_genomes = 2000

bp_iterations = 50
learning_rate = 0.001
low_threshold = 0.0001

rec_delay_min = 1
rec_delay_max = 10
rec_sampling_population = "island"
rec_sampling_distribution = "pheromone"
rec_depth_pheromone_decay_rate = 0.98
rec_depth_pheromone_baseline = 0.01

number_threads = 8

output_directory = "out"
output_filename = "best_genome.json"

num_genomes_check_on_island = 5
check_on_island_method = "worst"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, validTOML)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 20, cfg.PopulationSize)
	require.NotNil(t, cfg.LowThreshold)
	require.InDelta(t, 0.0001, *cfg.LowThreshold, 1e-12)
	require.Nil(t, cfg.HighThreshold)
}

func TestLoadRejectsOutOfRangeBounds(t *testing.T) {
	bad := strings.NewReplacer(
		"rec_delay_max = 10", "rec_delay_max = 0",
		"population_size = 20", "population_size = 0",
	).Replace(validTOML)
	path := writeTemp(t, bad)
	_, err := Load(path)
	require.Error(t, err)
}
