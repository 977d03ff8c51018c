package geostats

import (
	"sort"

	"github.com/rotisserie/eris"
)

// EstimationSolution holds per-location mean and variance for each
// variable. Locations listed in Failures hold NaN.
type EstimationSolution struct {
	Domain   Domain
	Mean     map[string][]float64
	Variance map[string][]float64
	Failures []*LocationError

	failed map[string]map[int]bool
}

func newEstimationSolution(domain Domain, vars []string) *EstimationSolution {
	s := &EstimationSolution{
		Domain:   domain,
		Mean:     make(map[string][]float64, len(vars)),
		Variance: make(map[string][]float64, len(vars)),
		failed:   make(map[string]map[int]bool, len(vars)),
	}
	for _, v := range vars {
		s.Mean[v] = make([]float64, domain.Len())
		s.Variance[v] = make([]float64, domain.Len())
	}
	return s
}

func (s *EstimationSolution) addFailures(errs []*LocationError) {
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Variable == errs[j].Variable {
			return errs[i].Index < errs[j].Index
		}
		return errs[i].Variable < errs[j].Variable
	})
	for _, e := range errs {
		if s.failed[e.Variable] == nil {
			s.failed[e.Variable] = make(map[int]bool)
		}
		s.failed[e.Variable][e.Index] = true
	}
	s.Failures = append(s.Failures, errs...)
}

// Failed reports whether variable could not be estimated at location i.
func (s *EstimationSolution) Failed(variable string, i int) bool {
	return s.failed[variable][i]
}

// SimulationSolution maps each variable to its realizations; realization
// values follow the domain's location order.
type SimulationSolution struct {
	Domain       Domain
	Realizations map[string][][]float64
}

func NewSimulationSolution(domain Domain, realizations map[string][][]float64) (*SimulationSolution, error) {
	if domain == nil {
		return nil, eris.Wrap(ErrConstruction, "simulation solution: nil domain")
	}
	for v, reals := range realizations {
		for r, values := range reals {
			if len(values) != domain.Len() {
				return nil, eris.Wrapf(ErrDimensionMismatch, "simulation solution: %s realization %d has %d values for %d locations", v, r, len(values), domain.Len())
			}
		}
	}
	return &SimulationSolution{Domain: domain, Realizations: realizations}, nil
}

func (s *SimulationSolution) NReals(variable string) int {
	return len(s.Realizations[variable])
}
