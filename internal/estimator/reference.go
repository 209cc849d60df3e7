// Package estimator implements the three orientation estimators the
// system runs side by side: a pure-gyro quaternion integrator (QInt),
// a pair of scalar-variance vector EKFs (VEKF) tracking the calibrated
// accelerometer and magnetometer directions, and the central
// quaternion error-state Kalman filter (QESKF) that fuses all three
// sensors. All three share the same step contract: given a sample
// period dt and calibrated sensor readings, mutate in place and expose
// a read-only output (a rotation for QInt and QESKF, the tracked
// vector for VEKF).
package estimator

import "math"

// dipAngleDeg is the angle between the local magnetic field direction
// and the downward vertical (-z): NavMagnetic lies 90-17 = 73 degrees
// below the horizontal plane.
const dipAngleDeg = 17.0

// NavGravity is the navigation-frame gravity direction, unit
// magnitude, z pointing up so gravity points along -z.
var NavGravity = Vec3{X: 0, Y: 0, Z: -1}

// NavMagnetic is the navigation-frame local magnetic field direction,
// unit magnitude, at the system's configured dip angle.
var NavMagnetic = Vec3{
	X: 0,
	Y: math.Sin(dipAngleDeg * math.Pi / 180),
	Z: -math.Cos(dipAngleDeg * math.Pi / 180),
}
