package linalg

import "math"

// Mat3 is a dense 3x3 matrix stored row-major: rows[row][col].
type Mat3 struct {
	rows [3][3]float64
}

// NewMat3 builds a Mat3 from row-major entries.
func NewMat3(
	m00, m01, m02,
	m10, m11, m12,
	m20, m21, m22 float64,
) Mat3 {
	return Mat3{rows: [3][3]float64{
		{m00, m01, m02},
		{m10, m11, m12},
		{m20, m21, m22},
	}}
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return NewMat3(
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	)
}

// At returns the (row, col) entry, zero-based.
func (m Mat3) At(row, col int) float64 {
	return m.rows[row][col]
}

// Set returns a copy of m with (row, col) set to v.
func (m Mat3) Set(row, col int, v float64) Mat3 {
	m.rows[row][col] = v
	return m
}

// Add returns m + n.
func (m Mat3) Add(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.rows[i][j] = m.rows[i][j] + n.rows[i][j]
		}
	}
	return r
}

// Sub returns m - n.
func (m Mat3) Sub(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.rows[i][j] = m.rows[i][j] - n.rows[i][j]
		}
	}
	return r
}

// Scale returns m scaled by s.
func (m Mat3) Scale(s float64) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.rows[i][j] = m.rows[i][j] * s
		}
	}
	return r
}

// Mul returns the matrix product m @ n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m.rows[i][k] * n.rows[k][j]
			}
			r.rows[i][j] = sum
		}
	}
	return r
}

// MulVec returns m @ v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	a := v.Array()
	return Vec3{
		X: m.rows[0][0]*a[0] + m.rows[0][1]*a[1] + m.rows[0][2]*a[2],
		Y: m.rows[1][0]*a[0] + m.rows[1][1]*a[1] + m.rows[1][2]*a[2],
		Z: m.rows[2][0]*a[0] + m.rows[2][1]*a[1] + m.rows[2][2]*a[2],
	}
}

// Transpose returns m^T.
func (m Mat3) Transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.rows[j][i] = m.rows[i][j]
		}
	}
	return r
}

// Trace returns the sum of the diagonal entries of m.
func (m Mat3) Trace() float64 {
	return m.rows[0][0] + m.rows[1][1] + m.rows[2][2]
}

// Finite reports whether every entry of m is finite.
func (m Mat3) Finite() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !isFinite(m.rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// SymmetryDefect returns the Frobenius norm of m - m^T, a measure of
// how far m is from being symmetric.
func (m Mat3) SymmetryDefect() float64 {
	d := m.Sub(m.Transpose())
	var sum float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum += d.rows[i][j] * d.rows[i][j]
		}
	}
	return sqrtf(sum)
}

// Mat4 is a dense 4x4 matrix, used as a homogeneous embedding of a
// rotation matrix for renderer consumption (mat3to4 in the original).
type Mat4 struct {
	rows [4][4]float64
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		m.rows[i][i] = 1
	}
	return m
}

// At returns the (row, col) entry, zero-based.
func (m Mat4) At(row, col int) float64 {
	return m.rows[row][col]
}

// Array returns m flattened row-major.
func (m Mat4) Array() [16]float64 {
	var a [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a[i*4+j] = m.rows[i][j]
		}
	}
	return a
}

// EmbedRotation returns the 4x4 homogeneous embedding of a 3x3 rotation
// matrix: the rotation in the top-left block, identity elsewhere
// (mat3to4 in the reference implementation).
func EmbedRotation(r Mat3) Mat4 {
	m := Identity4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.rows[i][j] = r.At(i, j)
		}
	}
	return m
}

// RotationBlock extracts the top-left 3x3 rotation block of a 4x4
// homogeneous matrix.
func (m Mat4) RotationBlock() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.rows[i][j] = m.rows[i][j]
		}
	}
	return r
}

func sqrtf(x float64) float64 {
	if x < 0 {
		return 0
	}
	return math.Sqrt(x)
}
