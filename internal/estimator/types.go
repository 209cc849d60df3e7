package estimator

import "github.com/tracktum/go-attitude/internal/linalg"

// Type aliases keep the estimator package's public surface in terms of
// the fixed-size linalg types without forcing every call site to
// spell out the import.
type (
	Vec3 = linalg.Vec3
	Vec4 = linalg.Vec4
	Mat3 = linalg.Mat3
	Mat4 = linalg.Mat4
)
