package estimator

import "github.com/tracktum/go-attitude/internal/linalg"

// QInt is the reference pure-gyro quaternion integrator: dead-reckons
// orientation from angular rate alone, with no measurement update and
// no covariance. It exists as a drift baseline the other estimators
// are compared against.
type QInt struct {
	q Vec4
}

// NewQInt creates a QInt at identity orientation.
func NewQInt() *QInt {
	return &QInt{q: linalg.Identity4Q}
}

// Step integrates the gyro rate rot over dt: q <- q (x) qrotv(dt * rot).
func (i *QInt) Step(dt float64, rot Vec3) {
	i.q = linalg.QMul(i.q, linalg.QRotV(rot.Scale(dt)))
}

// Matrix returns the current orientation as a 4x4 homogeneous rotation
// matrix, suitable for the renderer.
func (i *QInt) Matrix() Mat4 {
	return linalg.RMat4Q(i.q)
}

// Quaternion returns the current orientation quaternion.
func (i *QInt) Quaternion() Vec4 {
	return i.q
}

// SetQuaternion overwrites the integrator's state from an external
// quaternion (the driver's "copy QESKF into QInt" key command).
func (i *QInt) SetQuaternion(q Vec4) {
	i.q = q
}
