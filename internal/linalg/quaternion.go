package linalg

import "math"

// Skew returns the 3x3 cross-product matrix of v, such that
// Skew(v).MulVec(w) == v cross w.
func Skew(v Vec3) Mat3 {
	return NewMat3(
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	)
}

// QMatL returns the 4x4 left quaternion-product matrix of q, such that
// for any quaternion p, QMatL(q).MulVec4(p) equals the Hamilton product
// q (x) p.
func QMatL(q Vec4) Mat4 {
	qv := q.Vector()
	x := Skew(qv)
	var m Mat4
	m.rows[0] = [4]float64{q.W, -qv.X, -qv.Y, -qv.Z}
	m.rows[1] = [4]float64{qv.X, q.W + x.At(0, 0), x.At(0, 1), x.At(0, 2)}
	m.rows[2] = [4]float64{qv.Y, x.At(1, 0), q.W + x.At(1, 1), x.At(1, 2)}
	m.rows[3] = [4]float64{qv.Z, x.At(2, 0), x.At(2, 1), q.W + x.At(2, 2)}
	return m
}

// QMatR returns the 4x4 right quaternion-product matrix of q, such
// that for any quaternion p, QMatR(q).MulVec4(p) equals p (x) q.
func QMatR(q Vec4) Mat4 {
	qv := q.Vector()
	x := Skew(qv)
	var m Mat4
	m.rows[0] = [4]float64{q.W, -qv.X, -qv.Y, -qv.Z}
	m.rows[1] = [4]float64{qv.X, q.W - x.At(0, 0), -x.At(0, 1), -x.At(0, 2)}
	m.rows[2] = [4]float64{qv.Y, -x.At(1, 0), q.W - x.At(1, 1), -x.At(1, 2)}
	m.rows[3] = [4]float64{qv.Z, -x.At(2, 0), -x.At(2, 1), q.W - x.At(2, 2)}
	return m
}

// MulVec4 applies the 4x4 matrix m to the 4-vector q.
func (m Mat4) MulVec4(q Vec4) Vec4 {
	a := [4]float64{q.W, q.X, q.Y, q.Z}
	var r [4]float64
	for i := 0; i < 4; i++ {
		var sum float64
		for j := 0; j < 4; j++ {
			sum += m.rows[i][j] * a[j]
		}
		r[i] = sum
	}
	return Vec4{r[0], r[1], r[2], r[3]}
}

// QMul returns the Hamilton product p (x) q.
func QMul(p, q Vec4) Vec4 {
	return QMatL(p).MulVec4(q)
}

// QConj returns the conjugate of q: (w, -v).
func QConj(q Vec4) Vec4 {
	return Vec4{q.W, -q.X, -q.Y, -q.Z}
}

// QInv returns the inverse of q: conj(q) / (q . q).
func QInv(q Vec4) Vec4 {
	n2 := q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z
	c := QConj(q)
	return Vec4{c.W / n2, c.X / n2, c.Y / n2, c.Z / n2}
}

// Identity4Q is the identity quaternion (1, 0, 0, 0).
var Identity4Q = Vec4{W: 1}

// QRotV converts a rotation vector to a quaternion via the exponential
// map. For a rotation vector v of magnitude d, this returns
// (cos(d/2), sin(d/2) v/d); for d below the degenerate-norm threshold
// it returns the identity quaternion, keeping the map continuous and
// NaN-free at d == 0.
func QRotV(v Vec3) Vec4 {
	d := v.Norm()
	if d < degenerateNorm {
		return Identity4Q
	}
	s := math.Sin(d/2) / d
	return Vec4{
		W: math.Cos(d / 2),
		X: v.X * s,
		Y: v.Y * s,
		Z: v.Z * s,
	}
}

// RMat3Q converts a unit quaternion to its equivalent 3x3 rotation
// matrix: qv qv^T + q0^2 I + 2 q0 skew(qv) + skew(qv)^2.
func RMat3Q(q Vec4) Mat3 {
	qv := q.Vector()
	x := Skew(qv)
	outer := NewMat3(
		qv.X*qv.X, qv.X*qv.Y, qv.X*qv.Z,
		qv.Y*qv.X, qv.Y*qv.Y, qv.Y*qv.Z,
		qv.Z*qv.X, qv.Z*qv.Y, qv.Z*qv.Z,
	)
	return outer.
		Add(Identity3().Scale(q.W * q.W)).
		Add(x.Scale(2 * q.W)).
		Add(x.Mul(x))
}

// RMat4Q converts a unit quaternion to its homogeneous 4x4 rotation
// matrix (rmat4q in the reference implementation).
func RMat4Q(q Vec4) Mat4 {
	return EmbedRotation(RMat3Q(q))
}

// Expm3 returns the matrix exponential of a 3x3 skew-symmetric matrix
// k = -dt * Skew(omega), via the closed-form Rodrigues expansion
//
//	exp(K) = I + sin(theta)/theta * K + (1-cos(theta))/theta^2 * K^2
//
// where theta is the rotation angle encoded by k (||omega|| * dt). For
// theta below the degenerate-norm threshold the Taylor-limit
// coefficients (1 and 1/2) are used in place of the 0/0 forms.
func Expm3(k Mat3, theta float64) Mat3 {
	var a, b float64
	if theta < degenerateNorm {
		a, b = 1, 0.5
	} else {
		a = math.Sin(theta) / theta
		b = (1 - math.Cos(theta)) / (theta * theta)
	}
	return Identity3().Add(k.Scale(a)).Add(k.Mul(k).Scale(b))
}

// ExpmSkew returns exp(-dt * Skew(omega)), the state-transition matrix
// used by the Q-ESKF and VEKF covariance prediction steps.
func ExpmSkew(omega Vec3, dt float64) Mat3 {
	theta := omega.Norm() * math.Abs(dt)
	k := Skew(omega).Scale(-dt)
	return Expm3(k, theta)
}
