// Package calib applies the per-sensor bias/scale/axis-remap
// corrections that turn raw 16-bit sensor counts into normalized
// physical measurements, per spec section 4.2. A Profile is built once
// from configuration and is immutable afterward.
package calib

import (
	"math"

	"github.com/tracktum/go-attitude/internal/linalg"
)

// countsToRadPerSec converts the gyroscope's raw count scale
// (+-1000 deg/s full range over a signed 16-bit count) to rad/s.
const countsToRadPerSec = (1000.0 / 32768.0) * (math.Pi / 180.0)

// Profile holds the immutable bias, gain and axis-remap constants for
// one IMU: accelerometer, magnetometer and gyroscope.
type Profile struct {
	AccBias linalg.Vec3
	AccGain linalg.Vec3

	MagBias linalg.Vec3
	MagGain linalg.Vec3
	MagRot  linalg.Mat3

	RotBias linalg.Vec3
}

// Raw is one sample's nine raw sensor counts, prior to calibration.
type Raw struct {
	Acc linalg.Vec3
	Mag linalg.Vec3
	Rot linalg.Vec3
}

// Calibrated is the normalized, physical-unit output of Apply: an
// accelerometer and magnetometer reading of unit magnitude in steady
// state, and an angular rate in rad/s.
type Calibrated struct {
	Acc linalg.Vec3
	Mag linalg.Vec3
	Rot linalg.Vec3
}

// Apply converts a raw sample into calibrated physical measurements.
//
//	acc = (raw_acc - acc_bias) / acc_gain                  (componentwise)
//	mag = mag_rot . ((raw_mag - mag_bias) / mag_gain)       (componentwise division, then rotate)
//	rot = (raw_rot - rot_bias) * (1000 deg/s / 32768) * (pi/180)
//
// Out-of-range raw counts are not treated specially: calibration is a
// pure affine transform and passes them through.
func (p Profile) Apply(raw Raw) Calibrated {
	return Calibrated{
		Acc: divide(raw.Acc.Sub(p.AccBias), p.AccGain),
		Mag: p.MagRot.MulVec(divide(raw.Mag.Sub(p.MagBias), p.MagGain)),
		Rot: raw.Rot.Sub(p.RotBias).Scale(countsToRadPerSec),
	}
}

// divide performs componentwise division a / b.
func divide(a, b linalg.Vec3) linalg.Vec3 {
	return linalg.NewVec3(a.X/b.X, a.Y/b.Y, a.Z/b.Z)
}
