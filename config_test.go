package geostats

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, Gaussian, cfg.Variogram.Model)
	assert.Equal(t, 1.0, cfg.Variogram.Sill)
	assert.Equal(t, 1.0, cfg.Variogram.Range)
	assert.Equal(t, 0.0, cfg.Variogram.Nugget)
	assert.Equal(t, Ordinary, cfg.Kriging.Kind)
	assert.Nil(t, cfg.Kriging.Mean)
	assert.Equal(t, Unlimited, cfg.Kriging.Neighborhood.Kind)
	assert.False(t, cfg.Kriging.HullMask)
	assert.Equal(t, 1, cfg.Simulation.NReals)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	v, err := cfg.BuildVariogram()
	require.NoError(t, err)
	assert.IsType(t, &GaussianVariogram{}, v)
	assert.Equal(t, Euclidean{}, v.Metric())
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
variogram:
  model: spherical
  sill: 2
  range: 10
  nugget: 0.1
  semiaxes: [10, 5]
  angles: [90]
kriging:
  kind: simple
  mean: 3.5
  neighborhood:
    kind: knearest
    k: 8
  hull_mask: true
simulation:
  seed: 7
  nreals: 5
workers: 2
log:
  level: debug
  format: console
`
	path := filepath.Join(dir, "geostats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, Spherical, cfg.Variogram.Model)
	assert.Equal(t, []float64{10, 5}, cfg.Variogram.Semiaxes)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.Equal(t, 5, cfg.Simulation.NReals)
	assert.Equal(t, "console", cfg.Log.Format)

	p, err := cfg.KrigingParams()
	require.NoError(t, err)
	assert.Equal(t, Simple, p.Kind)
	require.NotNil(t, p.Mean)
	assert.Equal(t, 3.5, *p.Mean)
	assert.Equal(t, Neighborhood{Kind: KNearest, K: 8}, p.Neighborhood)
	assert.Equal(t, VariogramParams{Sill: 2, Range: 10, Nugget: 0.1}, p.Variogram.Params())

	m, ok := p.Variogram.Metric().(*Ellipsoidal)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{math.Pi / 2}, m.Angles(), 1e-12)

	k, err := cfg.NewKriging("z")
	require.NoError(t, err)
	assert.True(t, k.HullMask)
	assert.Equal(t, 2, k.Workers)
	assert.Contains(t, k.Params, "z")

	sim, err := cfg.NewLUGaussSim("z")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), sim.Seed)
	assert.Equal(t, 2, sim.Workers)
	assert.Equal(t, Spherical, sim.Params["z"].Variogram.Model())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GEOSTATS_VARIOGRAM_MODEL", "exponential")
	t.Setenv("GEOSTATS_WORKERS", "6")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Exponential, cfg.Variogram.Model)
	assert.Equal(t, 6, cfg.Workers)
}

func TestLoadConfigEnvWithoutDefaults(t *testing.T) {
	t.Setenv("GEOSTATS_KRIGING_MEAN", "2.5")
	t.Setenv("GEOSTATS_SIMULATION_MEAN", "-1")
	t.Setenv("GEOSTATS_VARIOGRAM_SEMIAXES", "4,2")
	t.Setenv("GEOSTATS_VARIOGRAM_ANGLES", "90")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg.Kriging.Mean)
	assert.Equal(t, 2.5, *cfg.Kriging.Mean)
	require.NotNil(t, cfg.Simulation.Mean)
	assert.Equal(t, -1.0, *cfg.Simulation.Mean)
	assert.Equal(t, []float64{4, 2}, cfg.Variogram.Semiaxes)

	v, err := cfg.BuildVariogram()
	require.NoError(t, err)
	m, ok := v.Metric().(*Ellipsoidal)
	require.True(t, ok)
	assert.Equal(t, []float64{4, 2}, m.Semiaxes())
	assert.InDeltaSlice(t, []float64{math.Pi / 2}, m.Angles(), 1e-12)
}

func TestConfigNewSimulationProblem(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Simulation.NReals = 3

	grid, err := NewRegularGrid([]int{2, 2}, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)

	p, err := cfg.NewSimulationProblem(nil, grid, "z")
	require.NoError(t, err)
	assert.Equal(t, 3, p.NReals())
	assert.False(t, p.HasData())

	p, err = cfg.NewSimulationProblem(threePoints(t), grid, "z")
	require.NoError(t, err)
	assert.Equal(t, 3, p.NReals())
	assert.True(t, p.HasData())

	cfg.Simulation.NReals = 0
	_, err = cfg.NewSimulationProblem(nil, grid, "z")
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigInvalid(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	cfg.Variogram.Sill = -1
	_, err = cfg.BuildVariogram()
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = cfg.SimParams()
	assert.ErrorIs(t, err, ErrConstruction)

	cfg.Variogram.Sill = 1
	cfg.Variogram.Semiaxes = []float64{1, 2}
	_, err = cfg.BuildVariogram()
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	cfg.Variogram.Semiaxes = nil
	cfg.Kriging.Neighborhood = Neighborhood{Kind: KNearest}
	_, err = cfg.KrigingParams()
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = cfg.NewKriging("z")
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "console"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))
	assert.True(t, zap.L().Core().Enabled(zap.WarnLevel))
}
