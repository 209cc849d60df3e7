package estimator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tracktum/go-attitude/internal/estimator"
)

func TestQIntFullRevolutionReturnsToIdentity(t *testing.T) {
	qi := estimator.NewQInt()
	rot := estimator.Vec3{X: math.Pi}
	dt := 0.01

	for i := 0; i < 200; i++ {
		qi.Step(dt, rot)
	}

	q := qi.Quaternion()
	require.InDelta(t, 1.0, math.Abs(q.W), 1e-6)
	require.InDelta(t, 0.0, q.X, 1e-6)
	require.InDelta(t, 0.0, q.Y, 1e-6)
	require.InDelta(t, 0.0, q.Z, 1e-6)
}

func TestQIntSetQuaternionCopiesExternalState(t *testing.T) {
	qi := estimator.NewQInt()
	qeskf := estimator.NewQESKF(estimator.NavGravity, estimator.NavMagnetic)
	require.NoError(t, qeskf.Step(0.01, estimator.NavGravity.Neg(), estimator.NavMagnetic, estimator.Vec3{}))

	qi.SetQuaternion(qeskf.Quaternion())
	require.Equal(t, qeskf.Quaternion(), qi.Quaternion())
}
