package geostats

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrConstruction is returned when a problem or model is built from
	// inconsistent inputs.
	ErrConstruction = eris.New("geostats: invalid construction")

	// ErrSchema is returned when a requested column is absent or has the
	// wrong kind.
	ErrSchema = eris.New("geostats: schema error")

	// ErrDimensionMismatch is returned when metric parameters or coordinates
	// disagree with the spatial dimension.
	ErrDimensionMismatch = eris.New("geostats: dimension mismatch")

	// ErrInsufficientData is returned when an estimate has no conditioning
	// points.
	ErrInsufficientData = eris.New("geostats: insufficient data")

	// ErrSingularSystem is returned when a kriging or covariance system
	// cannot be solved.
	ErrSingularSystem = eris.New("geostats: singular system")

	// ErrOutsideHull marks a location masked out by the convex hull of the
	// conditioning data.
	ErrOutsideHull = eris.New("geostats: location outside data hull")
)

// LocationError reports a failure for one variable at one domain location.
type LocationError struct {
	Variable string
	Index    int
	Err      error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s at location %d: %v", e.Variable, e.Index, e.Err)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}
