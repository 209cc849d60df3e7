// Package linalg provides the fixed-size vector, matrix and quaternion
// primitives the estimator core is built on. Every type here has a
// known size at compile time: a 3-vector is not a slice, a rotation
// matrix is not a *mat.Dense. Where the core needs a general solve
// (Kalman gain over a 6x6 innovation covariance) it converts to
// gonum.org/v1/gonum/mat at the point of use instead of growing this
// package into a second matrix library.
package linalg

import "math"

// degenerateNorm is the norm threshold below which a rotation vector
// is treated as zero by the rotation-vector exponential map (QRotV) and
// the Rodrigues matrix exponential (Expm3).
const degenerateNorm = 1e-8

// Vec3 is a column 3-vector [x, y, z]^T.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 builds a Vec3 from components.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns v . w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Array returns v as a [3]float64 in (x, y, z) order.
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Vec3FromArray builds a Vec3 from a [3]float64 in (x, y, z) order.
func Vec3FromArray(a [3]float64) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// Finite reports whether every component of v is finite.
func (v Vec3) Finite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Vec4 is a column 4-vector. In quaternion use, W is the scalar part
// and (X, Y, Z) the vector part.
type Vec4 struct {
	W, X, Y, Z float64
}

// NewVec4 builds a Vec4 from components, scalar part first.
func NewVec4(w, x, y, z float64) Vec4 {
	return Vec4{W: w, X: x, Y: y, Z: z}
}

// Vector returns the (X, Y, Z) vector part as a Vec3.
func (q Vec4) Vector() Vec3 {
	return Vec3{q.X, q.Y, q.Z}
}

// Norm returns the Euclidean length of q.
func (q Vec4) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Finite reports whether every component of q is finite.
func (q Vec4) Finite() bool {
	return isFinite(q.W) && isFinite(q.X) && isFinite(q.Y) && isFinite(q.Z)
}
