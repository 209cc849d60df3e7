package estimator

import "github.com/tracktum/go-attitude/internal/linalg"

// rotationProcessVar is the fixed process-noise variance rrot applied
// to the VEKF's orthogonal-to-x uncertainty term.
const rotationProcessVar = 0.01

// VEKF tracks a single body-frame direction (either the accelerometer
// or the magnetometer reading) as it is rotated by the gyro, with a
// fixed scalar measurement variance. Two independent instances are
// run per fusion cycle, one per sensor.
type VEKF struct {
	r float64 // measurement variance
	x Vec3    // tracked direction
	p Mat3    // covariance
}

// NewVEKF creates a VEKF with measurement variance r, initialized to
// the body-frame x-axis.
func NewVEKF(r float64) *VEKF {
	return &VEKF{
		r: r,
		x: linalg.NewVec3(1, 0, 0),
		p: linalg.Identity3(),
	}
}

// Vector returns the current tracked direction.
func (f *VEKF) Vector() Vec3 {
	return f.x
}

// Covariance returns the current 3x3 covariance.
func (f *VEKF) Covariance() Mat3 {
	return f.p
}

// Reset overwrites the tracked direction and resets covariance to
// identity, e.g. to a known navigation-frame reference on a driver
// reset command.
func (f *VEKF) Reset(x Vec3) {
	f.x = x
	f.p = linalg.Identity3()
}

// ErrNonFinite indicates a step produced a non-finite state or
// covariance and was refused; the filter is left unmodified.
type ErrNonFinite struct {
	Filter string
}

func (e *ErrNonFinite) Error() string {
	return "estimator: " + e.Filter + ": non-finite state after step"
}

// Step advances the filter by dt given a direct measurement vec of
// the tracked direction and the calibrated gyro rate rot.
//
// Predict: F = exp(-dt skew(rot)); xp = F x; Pp = F P F^T -
// rrot*dt*skew(x)^2 (the subtracted term is positive semi-definite
// since skew(x)^2 is negative semi-definite, and adds uncertainty
// orthogonal to x without inflating it along x -- this is
// intentional, not a sign error, see the design notes).
//
// Update: R = r I; K = Pp (Pp+R)^-1; x <- xp + K(y - xp);
// P <- Pp - K Pp.
//
// If the update solve is singular the step is a no-op and an error is
// returned; the filter's prior state is unchanged.
func (f *VEKF) Step(dt float64, vec, rot Vec3) error {
	fMat := linalg.ExpmSkew(rot, dt)
	xp := fMat.MulVec(f.x)

	skewX := linalg.Skew(f.x)
	pp := fMat.Mul(f.p).Mul(fMat.Transpose()).
		Sub(skewX.Mul(skewX).Scale(rotationProcessVar * dt))

	r := linalg.Identity3().Scale(f.r)
	innovationCov := pp.Add(r)

	inv, ok := invert3(innovationCov)
	if !ok {
		return &ErrNonFinite{Filter: "vekf"}
	}
	gain := pp.Mul(inv)

	residual := vec.Sub(xp)
	x := xp.Add(gain.MulVec(residual))
	p := pp.Sub(gain.Mul(pp))

	if !x.Finite() || !p.Finite() {
		return &ErrNonFinite{Filter: "vekf"}
	}

	f.x = x
	f.p = p
	return nil
}
