package estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tracktum/go-attitude/internal/linalg"
)

// processNoiseDensity is the Q-ESKF's process noise spectral density
// (Q = processNoiseDensity * dt * I3).
const processNoiseDensity = 0.01

// QESKF is the central filter: a unit quaternion nominal state with a
// 3-dimensional error-state covariance, predicted with the gyro and
// updated against stacked accelerometer+magnetometer residuals of
// known navigation-frame references.
type QESKF struct {
	gn, mn Vec3 // navigation-frame references

	q Vec4 // nominal orientation
	p Mat3 // error-state covariance

	// AccVar is the adaptively-tuned accelerometer measurement
	// variance: updated every Step as an IIR that raises variance
	// when the accelerometer deviates from 1g (linear acceleration
	// contaminating the gravity reading).
	AccVar float64

	// MagVar is the magnetometer measurement variance. The reference
	// implementation overwrites this to 1.0 on every step rather than
	// adapting it -- a placeholder left for a future adaptive
	// magnetometer variance. Preserved here as an exported hook:
	// callers may set it between steps, but Step resets it to 1.0
	// before using it, matching that placeholder behavior exactly.
	MagVar float64
}

// NewQESKF creates a Q-ESKF with the given navigation-frame gravity
// and magnetic-field references, at identity orientation with unit
// covariance.
func NewQESKF(gn, mn Vec3) *QESKF {
	return &QESKF{
		gn:     gn,
		mn:     mn,
		q:      linalg.Identity4Q,
		p:      linalg.Identity3(),
		MagVar: 1.0,
	}
}

// Quaternion returns the current nominal orientation quaternion.
func (f *QESKF) Quaternion() Vec4 {
	return f.q
}

// Matrix returns the current orientation as a 4x4 homogeneous rotation
// matrix.
func (f *QESKF) Matrix() Mat4 {
	return linalg.RMat4Q(f.q)
}

// Covariance returns the current 3x3 error-state covariance.
func (f *QESKF) Covariance() Mat3 {
	return f.p
}

// SeedCovariance overwrites the error-state covariance directly. It
// exists for tests and offline replay seeding (e.g. starting a
// convergence scenario from a deliberately wide prior); the driver's
// own reset command never calls it, see Reset.
func (f *QESKF) SeedCovariance(p Mat3) {
	f.p = p
}

// Reset sets the nominal orientation back to identity, the driver's
// reset key command. Covariance is left as-is: the reference
// implementation resets only the quaternion on this command (see
// main.py's K_r handler), and so does this one.
func (f *QESKF) Reset() {
	f.q = linalg.Identity4Q
}

// Step advances the filter by dt given calibrated accelerometer,
// magnetometer and gyro readings, all in the body frame.
//
// See qeskf.py and spec section 4.5 for the full derivation; this is a
// direct transcription with fixed-size types for the 3-vectors/3x3
// blocks and gonum for the 6x6 innovation solve.
//
// If the innovation covariance S is singular the step aborts without
// mutating any state, and ErrNonFinite is returned.
func (f *QESKF) Step(dt float64, acc, mag, rot Vec3) error {
	q := processNoiseCov(dt)

	accVar := 0.9*f.AccVar + 0.1*(0.1+4.0*pow2(1.0-acc.Dot(acc)))
	magVar := 1.0
	r := measurementNoiseCov(accVar, magVar)

	qp := linalg.QMul(f.q, linalg.QRotV(rot.Scale(dt)))

	fx := linalg.ExpmSkew(rot, dt)
	pp := fx.Mul(f.p).Mul(fx.Transpose()).Add(q)

	rp := linalg.RMat3Q(qp).Transpose()
	rpGn := rp.MulVec(f.gn)
	rpMn := rp.MulVec(f.mn)
	yp := stack6(rpGn.Neg(), rpMn)
	y := stack6(acc, mag)

	h := stackJacobian(linalg.Skew(rpGn).Scale(-1), linalg.Skew(rpMn))

	ppDense := toDense3(pp)
	hPpT := new(mat.Dense)
	hPpT.Mul(h, ppDense)
	hPpHt := new(mat.Dense)
	hPpHt.Mul(hPpT, h.T())

	s := new(mat.Dense)
	s.Add(hPpHt, r)

	var sInv mat.Dense
	if err := sInv.Inverse(s); err != nil {
		return &ErrNonFinite{Filter: "qeskf"}
	}

	innovation := subVec6(y, yp)

	pht := new(mat.Dense)
	pht.Mul(ppDense, h.T())
	gain := new(mat.Dense)
	gain.Mul(pht, &sInv)

	dxDense := new(mat.Dense)
	dxDense.Mul(gain, innovation)
	dx := linalg.NewVec3(dxDense.At(0, 0), dxDense.At(1, 0), dxDense.At(2, 0))

	khp := new(mat.Dense)
	khp.Mul(gain, h)
	khpDense := new(mat.Dense)
	khpDense.Mul(khp, ppDense)
	pt := pp.Sub(fromDense3(khpDense))

	newQ := linalg.QMul(qp, linalg.QRotV(dx))
	j := linalg.Identity3().Sub(linalg.Skew(dx).Scale(0.5))
	newP := j.Mul(pt).Mul(j.Transpose())

	if !newQ.Finite() || !newP.Finite() || !dx.Finite() {
		return &ErrNonFinite{Filter: "qeskf"}
	}

	f.AccVar = accVar
	f.MagVar = magVar
	f.q = newQ
	f.p = newP
	return nil
}

func pow2(x float64) float64 {
	return x * x
}

func processNoiseCov(dt float64) Mat3 {
	return linalg.Identity3().Scale(processNoiseDensity * dt)
}

func measurementNoiseCov(accVar, magVar float64) *mat.Dense {
	r := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		r.Set(i, i, accVar)
		r.Set(3+i, 3+i, magVar)
	}
	return r
}

// stack6 stacks two Vec3 into a 6x1 column vector [a; b].
func stack6(a, b Vec3) *mat.Dense {
	v := mat.NewDense(6, 1, nil)
	aa, bb := a.Array(), b.Array()
	for i := 0; i < 3; i++ {
		v.Set(i, 0, aa[i])
		v.Set(3+i, 0, bb[i])
	}
	return v
}

func subVec6(a, b *mat.Dense) *mat.Dense {
	out := new(mat.Dense)
	out.Sub(a, b)
	return out
}

// stackJacobian stacks two 3x3 blocks vertically into a 6x3 matrix
// [top; bottom], the measurement Jacobian H of spec section 4.5.
func stackJacobian(top, bottom Mat3) *mat.Dense {
	h := mat.NewDense(6, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h.Set(i, j, top.At(i, j))
			h.Set(3+i, j, bottom.At(i, j))
		}
	}
	return h
}
