package geostats

import (
	"github.com/rotisserie/eris"
)

// EstimationProblem asks for the mean and variance of each target variable
// at every location of a domain, given conditioning data.
type EstimationProblem struct {
	data    *GeospatialData
	domain  Domain
	targets []string
}

func NewEstimationProblem(data *GeospatialData, domain Domain, targets ...string) (*EstimationProblem, error) {
	if err := validateProblem(data, domain, targets); err != nil {
		return nil, eris.Wrap(err, "estimation problem")
	}
	return &EstimationProblem{
		data:    data,
		domain:  domain,
		targets: append([]string(nil), targets...),
	}, nil
}

func (p *EstimationProblem) Data() *GeospatialData { return p.data }
func (p *EstimationProblem) Domain() Domain        { return p.domain }
func (p *EstimationProblem) TargetVars() []string  { return append([]string(nil), p.targets...) }

// SimulationProblem asks for nreals realizations of each target variable
// over a domain. The data set is always present and may have no rows.
type SimulationProblem struct {
	data    *GeospatialData
	domain  Domain
	targets []string
	nreals  int
}

func NewSimulationProblem(data *GeospatialData, domain Domain, nreals int, targets ...string) (*SimulationProblem, error) {
	if err := validateProblem(data, domain, targets); err != nil {
		return nil, eris.Wrap(err, "simulation problem")
	}
	if nreals <= 0 {
		return nil, eris.Wrapf(ErrConstruction, "simulation problem: %d realizations requested", nreals)
	}
	return &SimulationProblem{
		data:    data,
		domain:  domain,
		targets: append([]string(nil), targets...),
		nreals:  nreals,
	}, nil
}

// NewUnconditionalSimulationProblem pairs domain with an empty data set
// whose columns are x1..xD followed by the target variables.
func NewUnconditionalSimulationProblem(domain Domain, nreals int, targets ...string) (*SimulationProblem, error) {
	if domain == nil {
		return nil, eris.Wrap(ErrConstruction, "simulation problem: nil domain")
	}
	for _, t := range targets {
		for i := 0; i < domain.Dim(); i++ {
			if t == axisName(i) {
				return nil, eris.Wrapf(ErrConstruction, "simulation problem: target variable %q is a coordinate", t)
			}
		}
	}
	if err := checkTargets(targets); err != nil {
		return nil, eris.Wrap(err, "simulation problem")
	}
	data, err := emptyData(domain.Dim(), targets)
	if err != nil {
		return nil, err
	}
	return NewSimulationProblem(data, domain, nreals, targets...)
}

func (p *SimulationProblem) Data() *GeospatialData { return p.data }
func (p *SimulationProblem) Domain() Domain        { return p.domain }
func (p *SimulationProblem) TargetVars() []string  { return append([]string(nil), p.targets...) }
func (p *SimulationProblem) NReals() int           { return p.nreals }

func (p *SimulationProblem) HasData() bool {
	return p.data.NPoints() > 0
}

func checkTargets(targets []string) error {
	if len(targets) == 0 {
		return eris.Wrap(ErrConstruction, "no target variables")
	}
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if seen[t] {
			return eris.Wrapf(ErrConstruction, "target variable %q listed twice", t)
		}
		seen[t] = true
	}
	return nil
}

func validateProblem(data *GeospatialData, domain Domain, targets []string) error {
	if data == nil {
		return eris.Wrap(ErrConstruction, "nil data")
	}
	if domain == nil {
		return eris.Wrap(ErrConstruction, "nil domain")
	}
	if err := checkTargets(targets); err != nil {
		return err
	}
	if domain.Dim() != data.Dim() {
		return eris.Wrapf(ErrConstruction, "domain dimension %d does not match %d coordinate columns", domain.Dim(), data.Dim())
	}
	for _, t := range targets {
		if data.IsCoordinate(t) {
			return eris.Wrapf(ErrConstruction, "target variable %q is a coordinate", t)
		}
		c, ok := data.Table().Column(t)
		if !ok {
			return eris.Wrapf(ErrConstruction, "target variable %q not in data", t)
		}
		if !c.IsNumeric() {
			return eris.Wrapf(ErrConstruction, "target variable %q is not numeric", t)
		}
	}
	return nil
}
