package geostats

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
)

// conditionLimit is the largest LU condition number accepted for a kriging
// system.
const conditionLimit = 1e14

// solveSystem solves the row-major n×n system a·x = b.
func solveSystem(a, b []float64, n int) ([]float64, error) {
	var lu mat.LU
	lu.Factorize(mat.NewDense(n, n, a))

	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, mat.NewVecDense(n, b)); err != nil {
		return nil, eris.Wrapf(ErrSingularSystem, "%d×%d system: %v", n, n, err)
	}
	if c := lu.Cond(); math.IsNaN(c) || c > conditionLimit {
		return nil, eris.Wrapf(ErrSingularSystem, "%d×%d system: condition number %g", n, n, c)
	}
	return x.RawVector().Data, nil
}

// choleskyLower factorizes the symmetric matrix a and returns L with a = L·Lᵀ.
func choleskyLower(a *mat.SymDense) (*mat.TriDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, eris.Wrapf(ErrSingularSystem, "%d×%d covariance is not positive definite", a.SymmetricDim(), a.SymmetricDim())
	}
	var l mat.TriDense
	chol.LTo(&l)
	return &l, nil
}
