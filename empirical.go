package geostats

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
)

const (
	fitAlpha      = 100.0
	fitCandidates = 50
)

// EmpiricalVariogram is the binned semivariance of a variable. Only
// non-empty bins are kept, in order of increasing lag.
type EmpiricalVariogram struct {
	Lags          []float64
	Semivariances []float64
	Counts        []int
}

// NewEmpiricalVariogram bins the pairs of rows of data that are at most
// maxlag apart into nlags equal bins. A non-positive maxlag means half the
// largest pair distance.
func NewEmpiricalVariogram(data *GeospatialData, variable string, nlags int, maxlag float64) (*EmpiricalVariogram, error) {
	if nlags <= 0 {
		return nil, eris.Wrapf(ErrConstruction, "empirical variogram: nlags=%d must be positive", nlags)
	}
	z, err := data.values(variable)
	if err != nil {
		return nil, err
	}

	n := len(z)
	if n < 2 {
		return nil, eris.Wrapf(ErrInsufficientData, "empirical variogram: %d points", n)
	}
	pairs := make(DistanceList, 0, (n*n-n)/2)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			pairs = append(pairs, [2]float64{
				euclidean(data.points[i], data.points[j]),
				0.5 * pow2(z[i]-z[j]),
			})
		}
	}
	sort.Sort(pairs)

	if maxlag <= 0 {
		maxlag = pairs[len(pairs)-1][0] / 2
	}
	if !(maxlag > 0) || math.IsInf(maxlag, 0) {
		return nil, eris.Wrapf(ErrInsufficientData, "empirical variogram: no lag span (maxlag=%v)", maxlag)
	}

	width := maxlag / float64(nlags)
	lag := make([]float64, nlags)
	semi := make([]float64, nlags)
	count := make([]int, nlags)
	for _, p := range pairs {
		if p[0] > maxlag {
			break
		}
		b := int(p[0] / width)
		if b >= nlags {
			b = nlags - 1
		}
		lag[b] += p[0]
		semi[b] += p[1]
		count[b]++
	}

	ev := &EmpiricalVariogram{}
	for b := range count {
		if count[b] == 0 {
			continue
		}
		ev.Lags = append(ev.Lags, lag[b]/float64(count[b]))
		ev.Semivariances = append(ev.Semivariances, semi[b]/float64(count[b]))
		ev.Counts = append(ev.Counts, count[b])
	}
	if len(ev.Lags) < 2 {
		return nil, eris.Wrapf(ErrInsufficientData, "empirical variogram: %d non-empty lags", len(ev.Lags))
	}
	return ev, nil
}

// FitVariogram fits a model to ev. For each candidate range it solves the
// ridge regression of the semivariances on (1, shape(h/range)) weighted by
// pair counts, and keeps the range with the smallest weighted error.
func FitVariogram(model ModelType, ev *EmpiricalVariogram) (Variogram, error) {
	if _, ok := shapeOf(model); !ok {
		return nil, eris.Wrapf(ErrConstruction, "fit: unknown variogram model %q", model)
	}
	if ev == nil || len(ev.Lags) < 2 {
		return nil, eris.Wrap(ErrInsufficientData, "fit: fewer than 2 lags")
	}
	if len(ev.Semivariances) != len(ev.Lags) || len(ev.Counts) != len(ev.Lags) {
		return nil, eris.Wrap(ErrDimensionMismatch, "fit: lags, semivariances and counts differ in length")
	}

	shape, _ := shapeOf(model)
	span := ev.Lags[len(ev.Lags)-1]
	best := VariogramParams{Sill: 1, Range: span}
	bestErr := math.Inf(1)
	for k := 1; k <= fitCandidates; k++ {
		r := 2 * span * float64(k) / fitCandidates
		p, sse := fitSillNugget(shape, ev, r)
		if sse < bestErr {
			best, bestErr = p, sse
		}
	}
	return NewVariogram(model, WithParams(best))
}

func fitSillNugget(shape func(float64) float64, ev *EmpiricalVariogram, r float64) (VariogramParams, float64) {
	m := len(ev.Lags)
	x := mat.NewDense(m, 2, nil)
	y := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		w := math.Sqrt(float64(ev.Counts[i]))
		x.Set(i, 0, w)
		x.Set(i, 1, w*shape(ev.Lags[i]/r))
		y.SetVec(i, w*ev.Semivariances[i])
	}

	var z mat.Dense
	z.Mul(x.T(), x)
	z.Set(0, 0, z.At(0, 0)+1/fitAlpha)
	z.Set(1, 1, z.At(1, 1)+1/fitAlpha)
	var rhs mat.VecDense
	rhs.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&z, &rhs); err != nil {
		return VariogramParams{}, math.Inf(1)
	}
	p := VariogramParams{
		Nugget: math.Max(beta.AtVec(0), 0),
		Sill:   math.Max(beta.AtVec(1), 0),
		Range:  r,
	}

	var sse float64
	for i := 0; i < m; i++ {
		d := p.Nugget + p.Sill*shape(ev.Lags[i]/r) - ev.Semivariances[i]
		sse += float64(ev.Counts[i]) * d * d
	}
	return p, sse
}
