package geostats

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// KrigingParams configure the estimation of one variable. Mean is the known
// mean for simple kriging; nil means the data mean.
type KrigingParams struct {
	Variogram    Variogram
	Kind         KrigingKind
	Mean         *float64
	Neighborhood Neighborhood
}

// Estimator solves kriging systems for a single variable at arbitrary
// locations. It is safe for concurrent use.
type Estimator struct {
	variogram Variogram
	kind      KrigingKind
	mean      float64
	pos       []Coordinate
	values    []float64
	search    *neighborSearcher
}

func NewEstimator(pos []Coordinate, values []float64, params KrigingParams) (*Estimator, error) {
	if len(pos) != len(values) {
		return nil, eris.Wrapf(ErrDimensionMismatch, "estimator: %d locations for %d values", len(pos), len(values))
	}
	if params.Variogram == nil {
		return nil, eris.Wrap(ErrConstruction, "estimator: nil variogram")
	}
	kind := params.Kind
	if kind == "" {
		kind = Ordinary
	}
	if kind != Ordinary && kind != Simple {
		return nil, eris.Wrapf(ErrConstruction, "estimator: unknown kriging kind %q", kind)
	}
	search, err := newNeighborSearcher(pos, params.Neighborhood)
	if err != nil {
		return nil, err
	}

	e := &Estimator{
		variogram: params.Variogram,
		kind:      kind,
		pos:       pos,
		values:    values,
		search:    search,
	}
	if kind == Simple {
		switch {
		case params.Mean != nil:
			e.mean = *params.Mean
		case len(values) > 0:
			e.mean = floats.Sum(values) / float64(len(values))
		}
	}
	return e, nil
}

func (e *Estimator) Kind() KrigingKind {
	return e.kind
}

// Predict returns the kriging mean and variance at u0.
func (e *Estimator) Predict(u0 Coordinate) (float64, float64, error) {
	idx := e.search.Search(u0)
	if len(idx) == 0 {
		return 0, 0, eris.Wrap(ErrInsufficientData, "no conditioning points")
	}
	if len(idx) == 1 {
		return e.values[idx[0]], e.variogram.Params().TotalSill(), nil
	}
	if e.kind == Simple {
		return e.simple(u0, idx)
	}
	return e.ordinary(u0, idx)
}

func (e *Estimator) ordinary(u0 Coordinate, idx []int) (float64, float64, error) {
	n := len(idx)
	m := n + 1
	K := make([]float64, m*m)
	k := make([]float64, m)
	for i := 0; i < n; i++ {
		pi := e.pos[idx[i]]
		for j := 0; j < i; j++ {
			K[i*m+j] = e.variogram.EvaluatePoints(pi, e.pos[idx[j]])
			K[j*m+i] = K[i*m+j]
		}
		K[i*m+i] = e.variogram.EvaluatePoints(pi, pi)
		K[i*m+n] = 1
		K[n*m+i] = 1
		k[i] = e.variogram.EvaluatePoints(pi, u0)
	}
	k[n] = 1

	x, err := solveSystem(K, append([]float64(nil), k...), m)
	if err != nil {
		return 0, 0, err
	}

	var mean, variance float64
	for i := 0; i < n; i++ {
		mean += x[i] * e.values[idx[i]]
		variance += x[i] * k[i]
	}
	variance += x[n]
	return mean, nonNegative(variance), nil
}

// simple solves in covariance form C = sill+nugget − γ. As in the ordinary
// system the diagonal holds γ(0) = nugget, so both kinds add the nugget to
// the variance at every location.
func (e *Estimator) simple(u0 Coordinate, idx []int) (float64, float64, error) {
	total := e.variogram.Params().TotalSill()
	n := len(idx)
	C := make([]float64, n*n)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		pi := e.pos[idx[i]]
		for j := 0; j < i; j++ {
			C[i*n+j] = total - e.variogram.EvaluatePoints(pi, e.pos[idx[j]])
			C[j*n+i] = C[i*n+j]
		}
		C[i*n+i] = total - e.variogram.EvaluatePoints(pi, pi)
		c[i] = total - e.variogram.EvaluatePoints(pi, u0)
	}

	x, err := solveSystem(C, append([]float64(nil), c...), n)
	if err != nil {
		return 0, 0, err
	}

	mean := e.mean
	variance := total
	for i := 0; i < n; i++ {
		mean += x[i] * (e.values[idx[i]] - e.mean)
		variance -= x[i] * c[i]
	}
	return mean, nonNegative(variance), nil
}

// nonNegative drops the rounding residue left when u0 is a data point.
func nonNegative(v float64) float64 {
	if v < 0 && v > -1e-9 {
		return 0
	}
	return v
}

// Kriging estimates every target variable of a problem at every domain
// location. Variables missing from Params use ordinary kriging with a
// default Gaussian variogram.
type Kriging struct {
	Params   map[string]KrigingParams
	Workers  int
	HullMask bool
}

func NewKriging(params map[string]KrigingParams) *Kriging {
	return &Kriging{Params: params}
}

func (k *Kriging) paramsFor(variable string) (KrigingParams, error) {
	if p, ok := k.Params[variable]; ok {
		return p, nil
	}
	v, err := NewGaussianVariogram()
	if err != nil {
		return KrigingParams{}, err
	}
	return KrigingParams{Variogram: v, Kind: Ordinary}, nil
}

func (k *Kriging) workers() int {
	if k.Workers > 0 {
		return k.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Solve runs the estimation. Locations that fail for a variable are
// reported in the solution's Failures and do not stop the solve. A
// canceled context stops scheduling new locations and returns its error.
func (k *Kriging) Solve(ctx context.Context, problem *EstimationProblem) (*EstimationSolution, error) {
	domain := problem.Domain()
	data := problem.Data()
	vars := problem.TargetVars()

	estimators := make(map[string]*Estimator, len(vars))
	for _, v := range vars {
		params, err := k.paramsFor(v)
		if err != nil {
			return nil, err
		}
		if params.Variogram == nil {
			return nil, eris.Wrapf(ErrConstruction, "kriging: nil variogram for %q", v)
		}
		if d, ok := metricDim(params.Variogram.Metric()); ok && d != domain.Dim() {
			return nil, eris.Wrapf(ErrDimensionMismatch, "kriging: %q metric is %d-dimensional, domain is %d-dimensional", v, d, domain.Dim())
		}
		values, err := data.values(v)
		if err != nil {
			return nil, err
		}
		est, err := NewEstimator(data.points, values, params)
		if err != nil {
			return nil, eris.Wrapf(err, "kriging: %q", v)
		}
		estimators[v] = est
	}

	var hull *Convex
	if k.HullMask && data.NPoints() > 0 {
		if domain.Dim() != 2 {
			return nil, eris.Wrapf(ErrDimensionMismatch, "kriging: hull mask needs a 2-D domain, got %d", domain.Dim())
		}
		var err error
		if hull, err = NewConvex(data.points); err != nil {
			return nil, err
		}
		// fill the lazy hull caches before workers share it
		hull.Rect()
		hull.Edges()
	}

	logger := zap.L().With(zap.String("solver", "kriging"))
	logger.Debug("kriging: start",
		zap.Int("locations", domain.Len()),
		zap.Int("points", data.NPoints()),
		zap.Strings("variables", vars),
		zap.Int("workers", k.workers()))

	sol := newEstimationSolution(domain, vars)
	var (
		mu       sync.Mutex
		failures []*LocationError
	)
	fail := func(v string, i int, err error) {
		sol.Mean[v][i] = math.NaN()
		sol.Variance[v][i] = math.NaN()
		mu.Lock()
		failures = append(failures, &LocationError{Variable: v, Index: i, Err: err})
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(k.workers())
	for i := 0; i < domain.Len(); i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u0 := domain.Location(i)
			inside := hull == nil || hull.Contains(vec2(u0))
			for _, v := range vars {
				if !inside {
					fail(v, i, eris.Wrap(ErrOutsideHull, "hull mask"))
					continue
				}
				mean, variance, err := estimators[v].Predict(u0)
				if err != nil {
					fail(v, i, err)
					continue
				}
				sol.Mean[v][i] = mean
				sol.Variance[v][i] = variance
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "kriging: solve interrupted")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "kriging: solve interrupted")
	}

	for _, f := range failures {
		logger.Debug("kriging: location failed", zap.String("variable", f.Variable), zap.Int("index", f.Index), zap.Error(f.Err))
	}
	if len(failures) > 0 {
		logger.Warn("kriging: some locations failed", zap.Int("failures", len(failures)))
	}
	sol.addFailures(failures)

	logger.Info("kriging: done", zap.Int("locations", domain.Len()), zap.Int("failures", len(failures)))
	return sol, nil
}
