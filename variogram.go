package geostats

import (
	"math"

	"github.com/rotisserie/eris"
)

// VariogramParams are the parameters shared by every variogram model. Sill
// is the structured part: γ tends to Sill+Nugget at large lags.
type VariogramParams struct {
	Sill   float64 `json:"sill"`
	Range  float64 `json:"range"`
	Nugget float64 `json:"nugget"`
}

func (p VariogramParams) TotalSill() float64 {
	return p.Sill + p.Nugget
}

// Variogram is a semivariance model. EvaluatePoints is always Evaluate
// composed with Metric.
type Variogram interface {
	Evaluate(h float64) float64
	EvaluatePoints(a, b Coordinate) float64
	Metric() Metric
	Params() VariogramParams
	Model() ModelType
}

type VariogramOption func(*variogram)

func WithSill(sill float64) VariogramOption {
	return func(v *variogram) { v.params.Sill = sill }
}

func WithRange(r float64) VariogramOption {
	return func(v *variogram) { v.params.Range = r }
}

func WithNugget(nugget float64) VariogramOption {
	return func(v *variogram) { v.params.Nugget = nugget }
}

func WithMetric(m Metric) VariogramOption {
	return func(v *variogram) { v.metric = m }
}

func WithParams(p VariogramParams) VariogramOption {
	return func(v *variogram) { v.params = p }
}

type variogram struct {
	params VariogramParams
	metric Metric
	model  ModelType
	shape  func(x float64) float64
}

func newVariogram(model ModelType, shape func(float64) float64, opts []VariogramOption) (variogram, error) {
	v := variogram{
		params: VariogramParams{Sill: 1, Range: 1, Nugget: 0},
		metric: Euclidean{},
		model:  model,
		shape:  shape,
	}
	for _, opt := range opts {
		opt(&v)
	}

	p := v.params
	for _, x := range []float64{p.Sill, p.Range, p.Nugget} {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return v, eris.Wrapf(ErrConstruction, "%s variogram: sill=%v range=%v nugget=%v must be finite and non-negative", model, p.Sill, p.Range, p.Nugget)
		}
	}
	if v.metric == nil {
		return v, eris.Wrapf(ErrConstruction, "%s variogram: nil metric", model)
	}
	return v, nil
}

func (v *variogram) Evaluate(h float64) float64 {
	p := v.params
	if h <= 0 {
		return p.Nugget
	}
	if p.Range == 0 {
		return p.Nugget + p.Sill
	}
	return p.Nugget + p.Sill*v.shape(h/p.Range)
}

func (v *variogram) EvaluatePoints(a, b Coordinate) float64 {
	return v.Evaluate(v.metric.Evaluate(a, b))
}

func (v *variogram) Metric() Metric {
	return v.metric
}

func (v *variogram) Params() VariogramParams {
	return v.params
}

func (v *variogram) Model() ModelType {
	return v.model
}

func gaussianShape(x float64) float64 {
	return 1.0 - exp(-pow2(x))
}

func exponentialShape(x float64) float64 {
	return 1.0 - exp(-x)
}

func sphericalShape(x float64) float64 {
	if x >= 1 {
		return 1
	}
	return 1.5*x - 0.5*pow3(x)
}

func shapeOf(model ModelType) (func(float64) float64, bool) {
	switch model {
	case Gaussian:
		return gaussianShape, true
	case Exponential:
		return exponentialShape, true
	case Spherical:
		return sphericalShape, true
	}
	return nil, false
}

type GaussianVariogram struct {
	variogram
}

// NewGaussianVariogram returns γ(h) = nugget + sill·(1 − exp(−(h/range)²)).
func NewGaussianVariogram(opts ...VariogramOption) (*GaussianVariogram, error) {
	v, err := newVariogram(Gaussian, gaussianShape, opts)
	if err != nil {
		return nil, err
	}
	return &GaussianVariogram{v}, nil
}

type ExponentialVariogram struct {
	variogram
}

// NewExponentialVariogram returns γ(h) = nugget + sill·(1 − exp(−h/range)).
func NewExponentialVariogram(opts ...VariogramOption) (*ExponentialVariogram, error) {
	v, err := newVariogram(Exponential, exponentialShape, opts)
	if err != nil {
		return nil, err
	}
	return &ExponentialVariogram{v}, nil
}

type SphericalVariogram struct {
	variogram
}

func NewSphericalVariogram(opts ...VariogramOption) (*SphericalVariogram, error) {
	v, err := newVariogram(Spherical, sphericalShape, opts)
	if err != nil {
		return nil, err
	}
	return &SphericalVariogram{v}, nil
}

// NewVariogram builds a variogram of the named model.
func NewVariogram(model ModelType, opts ...VariogramOption) (Variogram, error) {
	shape, ok := shapeOf(model)
	if !ok {
		return nil, eris.Wrapf(ErrConstruction, "unknown variogram model %q", model)
	}
	v, err := newVariogram(model, shape, opts)
	if err != nil {
		return nil, err
	}
	switch model {
	case Gaussian:
		return &GaussianVariogram{v}, nil
	case Exponential:
		return &ExponentialVariogram{v}, nil
	default:
		return &SphericalVariogram{v}, nil
	}
}

// covariance is the stationary covariance implied by v. The diagonal
// carries the full sill so the nugget shows up as point variance.
func covariance(v Variogram, a, b Coordinate) float64 {
	total := v.Params().TotalSill()
	h := v.Metric().Evaluate(a, b)
	if h == 0 {
		return total
	}
	return total - v.Evaluate(h)
}
