package geostats

import (
	"context"
	"math/rand/v2"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// SimParams configure the simulation of one variable. Mean nil means the
// data mean, or zero without data.
type SimParams struct {
	Variogram Variogram
	Mean      *float64
}

// LUGaussSim draws Gaussian realizations from the Cholesky factor of the
// covariance between domain locations, conditioned on the data when
// present. Realization r is drawn from a PCG stream keyed by (Seed, r), so
// results do not depend on Workers or scheduling.
type LUGaussSim struct {
	Params  map[string]SimParams
	Seed    uint64
	Workers int
}

func NewLUGaussSim(params map[string]SimParams, seed uint64) *LUGaussSim {
	return &LUGaussSim{Params: params, Seed: seed}
}

// luFactor is the read-only state shared by every realization of a variable.
type luFactor struct {
	free  []int // domain indices that are simulated
	fixed map[int]float64
	base  []float64 // conditional mean at free locations
	l22   *mat.TriDense
}

func (s *LUGaussSim) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (s *LUGaussSim) paramsFor(variable string) (SimParams, error) {
	if p, ok := s.Params[variable]; ok {
		return p, nil
	}
	v, err := NewExponentialVariogram()
	if err != nil {
		return SimParams{}, err
	}
	return SimParams{Variogram: v}, nil
}

func (s *LUGaussSim) factorize(problem *SimulationProblem, variable string) (*luFactor, error) {
	params, err := s.paramsFor(variable)
	if err != nil {
		return nil, err
	}
	vg := params.Variogram
	if vg == nil {
		return nil, eris.Wrapf(ErrConstruction, "lu simulation: nil variogram for %q", variable)
	}
	domain := problem.Domain()
	if d, ok := metricDim(vg.Metric()); ok && d != domain.Dim() {
		return nil, eris.Wrapf(ErrDimensionMismatch, "lu simulation: %q metric is %d-dimensional, domain is %d-dimensional", variable, d, domain.Dim())
	}

	data := problem.Data()
	z, err := data.values(variable)
	if err != nil {
		return nil, err
	}
	n := len(z)

	mean := 0.0
	switch {
	case params.Mean != nil:
		mean = *params.Mean
	case n > 0:
		if mean, err = data.Mean(variable); err != nil {
			return nil, err
		}
	}

	byCoord := make(map[string]int, n)
	for i, p := range data.points {
		byCoord[coordKey(p)] = i
	}
	f := &luFactor{fixed: make(map[int]float64)}
	var locs []Coordinate
	for i := 0; i < domain.Len(); i++ {
		u := domain.Location(i)
		if j, ok := byCoord[coordKey(u)]; ok {
			f.fixed[i] = z[j]
			continue
		}
		f.free = append(f.free, i)
		locs = append(locs, u)
	}
	m := len(f.free)
	if m == 0 {
		return f, nil
	}

	c22 := mat.NewSymDense(m, nil)
	for a := 0; a < m; a++ {
		for b := a; b < m; b++ {
			c22.SetSym(a, b, covariance(vg, locs[a], locs[b]))
		}
	}

	f.base = make([]float64, m)
	for a := range f.base {
		f.base[a] = mean
	}

	schur := c22
	if n > 0 {
		c11 := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				c11.SetSym(i, j, covariance(vg, data.points[i], data.points[j]))
			}
		}
		c12 := mat.NewDense(n, m, nil)
		for i := 0; i < n; i++ {
			for b := 0; b < m; b++ {
				c12.Set(i, b, covariance(vg, data.points[i], locs[b]))
			}
		}

		l11, err := choleskyLower(c11)
		if err != nil {
			return nil, eris.Wrapf(err, "lu simulation: %q data covariance", variable)
		}
		var a mat.Dense
		if err := a.Solve(l11, c12); err != nil {
			return nil, eris.Wrapf(ErrSingularSystem, "lu simulation: %q: %v", variable, err)
		}

		zc := make([]float64, n)
		for i := range zc {
			zc[i] = z[i] - mean
		}
		var d mat.VecDense
		if err := d.SolveVec(l11, mat.NewVecDense(n, zc)); err != nil {
			return nil, eris.Wrapf(ErrSingularSystem, "lu simulation: %q: %v", variable, err)
		}
		var shift mat.VecDense
		shift.MulVec(a.T(), &d)
		for b := range f.base {
			f.base[b] += shift.AtVec(b)
		}

		schur = mat.NewSymDense(m, nil)
		schur.SymRankK(c22, -1, a.T())
	}

	if f.l22, err = choleskyLower(schur); err != nil {
		return nil, eris.Wrapf(err, "lu simulation: %q conditional covariance", variable)
	}
	return f, nil
}

func (f *luFactor) draw(rng *rand.Rand, out []float64) {
	for i, v := range f.fixed {
		out[i] = v
	}
	m := len(f.free)
	if m == 0 {
		return
	}
	w := make([]float64, m)
	for i := range w {
		w[i] = rng.NormFloat64()
	}
	var y mat.VecDense
	y.MulVec(f.l22, mat.NewVecDense(m, w))
	for a, i := range f.free {
		out[i] = f.base[a] + y.AtVec(a)
	}
}

// Solve draws problem.NReals() realizations of every target variable.
func (s *LUGaussSim) Solve(ctx context.Context, problem *SimulationProblem) (*SimulationSolution, error) {
	vars := problem.TargetVars()
	domain := problem.Domain()
	nreals := problem.NReals()

	logger := zap.L().With(zap.String("solver", "lugs"))
	logger.Debug("lu simulation: factorizing",
		zap.Int("locations", domain.Len()),
		zap.Int("points", problem.Data().NPoints()),
		zap.Bool("conditional", problem.HasData()),
		zap.Strings("variables", vars))

	factors := make([]*luFactor, len(vars))
	reals := make(map[string][][]float64, len(vars))
	for k, v := range vars {
		f, err := s.factorize(problem, v)
		if err != nil {
			return nil, err
		}
		factors[k] = f
		reals[v] = make([][]float64, nreals)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for r := 0; r < nreals; r++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(s.Seed, uint64(r)))
			for k, v := range vars {
				out := make([]float64, domain.Len())
				factors[k].draw(rng, out)
				reals[v][r] = out
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "lu simulation: interrupted")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "lu simulation: interrupted")
	}

	logger.Info("lu simulation: done", zap.Int("realizations", nreals), zap.Int("locations", domain.Len()))
	return NewSimulationSolution(domain, reals)
}
