package estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tracktum/go-attitude/internal/linalg"
)

// toDense3 converts a fixed-size Mat3 into a general gonum matrix, for
// the handful of operations (inverse, linear solve) the fixed-size
// kernel does not implement itself.
func toDense3(m Mat3) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m.At(i, j))
		}
	}
	return d
}

// fromDense3 converts a 3x3 gonum matrix back into a fixed-size Mat3.
func fromDense3(d mat.Matrix) Mat3 {
	return linalg.NewMat3(
		d.At(0, 0), d.At(0, 1), d.At(0, 2),
		d.At(1, 0), d.At(1, 1), d.At(1, 2),
		d.At(2, 0), d.At(2, 1), d.At(2, 2),
	)
}

// invert3 returns the inverse of a 3x3 matrix via gonum's general
// Dense.Inverse, and whether the matrix was non-singular.
func invert3(m Mat3) (Mat3, bool) {
	d := toDense3(m)
	var inv mat.Dense
	if err := inv.Inverse(d); err != nil {
		return Mat3{}, false
	}
	return fromDense3(&inv), true
}
