package geostats

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveKriging(t *testing.T, k *Kriging, data *GeospatialData, domain Domain) *EstimationSolution {
	t.Helper()
	problem, err := NewEstimationProblem(data, domain, "z")
	require.NoError(t, err)
	sol, err := k.Solve(context.Background(), problem)
	require.NoError(t, err)
	return sol
}

func krigingWith(t *testing.T, params KrigingParams) *Kriging {
	t.Helper()
	if params.Variogram == nil {
		v, err := NewGaussianVariogram(WithSill(1), WithRange(5))
		require.NoError(t, err)
		params.Variogram = v
	}
	return NewKriging(map[string]KrigingParams{"z": params})
}

func TestKrigingSinglePoint(t *testing.T) {
	data := newTestData(t, []float64{0}, []float64{0}, []float64{5})
	grid, err := NewRegularGrid([]int{3, 3}, []float64{-5, -5}, []float64{5, 5})
	require.NoError(t, err)

	mean := 100.0
	for _, model := range allModels {
		v, err := NewVariogram(model, WithSill(2), WithNugget(0.5), WithRange(3))
		require.NoError(t, err)
		for _, params := range []KrigingParams{
			{Variogram: v, Kind: Ordinary},
			{Variogram: v, Kind: Simple},
			{Variogram: v, Kind: Simple, Mean: &mean},
		} {
			sol := solveKriging(t, krigingWith(t, params), data, grid)

			for i := 0; i < grid.Len(); i++ {
				assert.Equal(t, 5.0, sol.Mean["z"][i], "%s %s at %d", model, params.Kind, i)
				assert.Equal(t, 2.5, sol.Variance["z"][i], "%s %s at %d", model, params.Kind, i)
			}
			assert.Empty(t, sol.Failures)
		}
	}
}

func TestKrigingExactAtData(t *testing.T) {
	data := threePoints(t)
	domain, err := PointSetFromData(data)
	require.NoError(t, err)

	for _, kind := range []KrigingKind{Ordinary, Simple} {
		sol := solveKriging(t, krigingWith(t, KrigingParams{Kind: kind}), data, domain)
		z, _ := data.Values("z")
		for i := range z {
			assert.InDelta(t, z[i], sol.Mean["z"][i], 1e-8, "%s at %d", kind, i)
			assert.InDelta(t, 0, sol.Variance["z"][i], 1e-8, "%s at %d", kind, i)
		}
	}
}

func TestKrigingNugget(t *testing.T) {
	mean := 1.5
	domain := newTestPoints(t, Coordinate{0, 0}, Coordinate{5, 0})

	for _, kind := range []KrigingKind{Ordinary, Simple} {
		plain, err := NewGaussianVariogram(WithRange(5))
		require.NoError(t, err)
		nugget, err := NewGaussianVariogram(WithRange(5), WithNugget(0.5))
		require.NoError(t, err)

		a := solveKriging(t, krigingWith(t, KrigingParams{Variogram: plain, Kind: kind, Mean: &mean}), threePoints(t), domain)
		b := solveKriging(t, krigingWith(t, KrigingParams{Variogram: nugget, Kind: kind, Mean: &mean}), threePoints(t), domain)

		// the nugget shifts the variance and leaves the weights alone
		for i := 0; i < domain.Len(); i++ {
			assert.InDelta(t, a.Mean["z"][i], b.Mean["z"][i], 1e-9, "%s at %d", kind, i)
			assert.InDelta(t, a.Variance["z"][i]+0.5, b.Variance["z"][i], 1e-9, "%s at %d", kind, i)
		}
		assert.InDelta(t, 1, b.Mean["z"][0], 1e-9, "%s", kind)
		assert.InDelta(t, 0.5, b.Variance["z"][0], 1e-9, "%s", kind)
	}
}

func TestKrigingScenario(t *testing.T) {
	sol := solveKriging(t, krigingWith(t, KrigingParams{}), threePoints(t), newTestPoints(t, Coordinate{5, 0}))

	mean, variance := sol.Mean["z"][0], sol.Variance["z"][0]
	assert.Greater(t, mean, 1.0)
	assert.Less(t, mean, 2.0)
	assert.InDelta(t, 1.5, mean, 1e-9)
	assert.Greater(t, variance, 0.0)
	assert.Less(t, variance, 1.0)
	assert.InDelta(t, 0.66057, variance, 1e-4)
}

func TestKrigingSimple(t *testing.T) {
	mean := 1.5
	k := krigingWith(t, KrigingParams{Kind: Simple, Mean: &mean})
	sol := solveKriging(t, k, threePoints(t), newTestPoints(t, Coordinate{5, 0}, Coordinate{100, 100}))

	assert.InDelta(t, 1.5, sol.Mean["z"][0], 1e-9)
	assert.InDelta(t, 0.65852, sol.Variance["z"][0], 1e-4)

	// beyond the range simple kriging returns the mean and the full sill
	assert.InDelta(t, 1.5, sol.Mean["z"][1], 1e-9)
	assert.InDelta(t, 1, sol.Variance["z"][1], 1e-9)

	// without a known mean the data mean is used
	data := newTestData(t, []float64{0, 1}, []float64{0, 0}, []float64{2, 4})
	sol = solveKriging(t, krigingWith(t, KrigingParams{Kind: Simple}), data, newTestPoints(t, Coordinate{500, 0}))
	assert.InDelta(t, 3, sol.Mean["z"][0], 1e-9)
}

func TestKrigingLinearTrend(t *testing.T) {
	v, err := NewExponentialVariogram(WithRange(5))
	require.NoError(t, err)
	data := newTestData(t, []float64{0, 1, 2, 3}, []float64{0, 0, 0, 0}, []float64{0, 1, 2, 3})

	sol := solveKriging(t, krigingWith(t, KrigingParams{Variogram: v}), data, newTestPoints(t, Coordinate{1.5, 0}))
	assert.InDelta(t, 1.5, sol.Mean["z"][0], 1e-9)
	assert.InDelta(t, 0.09969, sol.Variance["z"][0], 1e-4)
}

func TestKrigingDuplicates(t *testing.T) {
	data := newTestData(t, []float64{0, 0, 10}, []float64{0, 0, 0}, []float64{1, 3, 2})
	domain := newTestPoints(t, Coordinate{5, 0})
	k := krigingWith(t, KrigingParams{})

	sol := solveKriging(t, k, data, domain)
	require.Len(t, sol.Failures, 1)
	assert.True(t, sol.Failed("z", 0))
	assert.ErrorIs(t, sol.Failures[0], ErrSingularSystem)
	assert.True(t, math.IsNaN(sol.Mean["z"][0]))
	assert.True(t, math.IsNaN(sol.Variance["z"][0]))

	var le *LocationError
	require.True(t, errors.As(sol.Failures[0], &le))
	assert.Equal(t, "z", le.Variable)
	assert.Equal(t, 0, le.Index)

	dedup, err := data.Deduplicate()
	require.NoError(t, err)
	sol = solveKriging(t, k, dedup, domain)
	assert.Empty(t, sol.Failures)
	assert.False(t, sol.Failed("z", 0))
	assert.InDelta(t, 2, sol.Mean["z"][0], 1e-9)
}

func TestKrigingNoData(t *testing.T) {
	data := newTestData(t, nil, nil, nil)
	grid, err := NewRegularGrid([]int{2, 2}, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)

	sol := solveKriging(t, NewKriging(nil), data, grid)
	require.Len(t, sol.Failures, grid.Len())
	for i, f := range sol.Failures {
		assert.Equal(t, i, f.Index)
		assert.ErrorIs(t, f, ErrInsufficientData)
		assert.True(t, math.IsNaN(sol.Mean["z"][i]))
	}
}

func TestKrigingNeighborhoods(t *testing.T) {
	data := threePoints(t)
	domain := newTestPoints(t, Coordinate{1, 0}, Coordinate{40, 40}, Coordinate{9.5, 0.5})

	sol := solveKriging(t, krigingWith(t, KrigingParams{Neighborhood: Neighborhood{Kind: KNearest, K: 1}}), data, domain)
	assert.Equal(t, []float64{1, 1.5, 2}, sol.Mean["z"])
	assert.Equal(t, []float64{1, 1, 1}, sol.Variance["z"])

	sol = solveKriging(t, krigingWith(t, KrigingParams{Neighborhood: Neighborhood{Kind: Radius, Radius: 2}}), data, domain)
	assert.Equal(t, 1.0, sol.Mean["z"][0])
	assert.Equal(t, 2.0, sol.Mean["z"][2])
	assert.False(t, sol.Failed("z", 0))
	assert.True(t, sol.Failed("z", 1))
	require.Len(t, sol.Failures, 1)
	assert.ErrorIs(t, sol.Failures[0], ErrInsufficientData)

	// neighborhoods covering every point match the unlimited search
	full := solveKriging(t, krigingWith(t, KrigingParams{}), data, domain)
	wide := solveKriging(t, krigingWith(t, KrigingParams{Neighborhood: Neighborhood{Kind: KNearest, K: 3}}), data, domain)
	assert.Equal(t, full.Mean, wide.Mean)
}

func TestKrigingHullMask(t *testing.T) {
	data := newTestData(t, []float64{0, 10, 10, 0}, []float64{0, 0, 10, 10}, []float64{1, 2, 3, 4})
	domain := newTestPoints(t, Coordinate{5, 5}, Coordinate{20, 20}, Coordinate{10, 5})

	k := krigingWith(t, KrigingParams{})
	k.HullMask = true
	sol := solveKriging(t, k, data, domain)

	assert.False(t, sol.Failed("z", 0))
	assert.True(t, sol.Failed("z", 1))
	assert.False(t, sol.Failed("z", 2))
	require.Len(t, sol.Failures, 1)
	assert.ErrorIs(t, sol.Failures[0], ErrOutsideHull)
	assert.InDelta(t, 2.5, sol.Mean["z"][0], 1e-9)
}

func TestKrigingHullMaskNeeds2D(t *testing.T) {
	table, err := NewTable(
		FloatColumn("x", []float64{0, 1}),
		FloatColumn("y", []float64{0, 1}),
		FloatColumn("h", []float64{0, 1}),
		FloatColumn("z", []float64{1, 2}))
	require.NoError(t, err)
	data, err := NewGeospatialData(table, "x", "y", "h")
	require.NoError(t, err)
	problem, err := NewEstimationProblem(data, newTestPoints(t, Coordinate{0, 0, 0}), "z")
	require.NoError(t, err)

	k := NewKriging(nil)
	k.HullMask = true
	_, err = k.Solve(context.Background(), problem)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestKrigingMetricDimension(t *testing.T) {
	m, err := NewEllipsoidal([]float64{3, 2, 1}, []float64{0, 0, 0})
	require.NoError(t, err)
	v, err := NewSphericalVariogram(WithMetric(m))
	require.NoError(t, err)

	problem, err := NewEstimationProblem(threePoints(t), newTestPoints(t, Coordinate{1, 1}), "z")
	require.NoError(t, err)
	_, err = krigingWith(t, KrigingParams{Variogram: v}).Solve(context.Background(), problem)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestKrigingUnknownKind(t *testing.T) {
	problem, err := NewEstimationProblem(threePoints(t), newTestPoints(t, Coordinate{1, 1}), "z")
	require.NoError(t, err)
	_, err = krigingWith(t, KrigingParams{Kind: "universal"}).Solve(context.Background(), problem)
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestKrigingCanceled(t *testing.T) {
	grid, err := NewRegularGrid([]int{20, 20}, []float64{0, 0}, []float64{0.5, 0.5})
	require.NoError(t, err)
	problem, err := NewEstimationProblem(threePoints(t), grid, "z")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewKriging(nil).Solve(ctx, problem)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKrigingParallelMatchesSerial(t *testing.T) {
	data := newTestData(t,
		[]float64{0, 10, 5, 2, 8, 7},
		[]float64{0, 0, 5, 8, 9, 2},
		[]float64{1, 2, 1.5, 0.5, 3, 2.2})
	grid, err := NewRegularGridFromBounds([]int{15, 15}, Coordinate{-1, -1}, Coordinate{11, 11})
	require.NoError(t, err)

	serial := krigingWith(t, KrigingParams{})
	serial.Workers = 1
	parallel := krigingWith(t, KrigingParams{})
	parallel.Workers = 4

	a := solveKriging(t, serial, data, grid)
	b := solveKriging(t, parallel, data, grid)
	assert.Equal(t, a.Mean, b.Mean)
	assert.Equal(t, a.Variance, b.Variance)
	assert.Empty(t, b.Failures)
}

func TestEstimator(t *testing.T) {
	v, err := NewGaussianVariogram(WithRange(5))
	require.NoError(t, err)

	_, err = NewEstimator([]Coordinate{{0, 0}}, []float64{1, 2}, KrigingParams{Variogram: v})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = NewEstimator(nil, nil, KrigingParams{})
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = NewEstimator(nil, nil, KrigingParams{Variogram: v, Neighborhood: Neighborhood{Kind: Radius}})
	assert.ErrorIs(t, err, ErrConstruction)

	e, err := NewEstimator([]Coordinate{{0, 0}, {10, 0}}, []float64{1, 2}, KrigingParams{Variogram: v})
	require.NoError(t, err)
	assert.Equal(t, Ordinary, e.Kind())

	mean, variance, err := e.Predict(Coordinate{5, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, mean, 1e-9)
	assert.Greater(t, variance, 0.0)
}
