package calib_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tracktum/go-attitude/internal/calib"
	"github.com/tracktum/go-attitude/internal/linalg"
)

func identityProfile() calib.Profile {
	return calib.Profile{
		AccGain: linalg.NewVec3(1, 1, 1),
		MagGain: linalg.NewVec3(1, 1, 1),
		MagRot:  linalg.Identity3(),
	}
}

func TestApplyIsIdentityWithZeroBiasUnitGain(t *testing.T) {
	p := identityProfile()
	raw := calib.Raw{
		Acc: linalg.NewVec3(100, -200, 16384),
		Mag: linalg.NewVec3(10, 20, 30),
		Rot: linalg.NewVec3(0, 0, 0),
	}

	got := p.Apply(raw)
	require.Equal(t, raw.Acc, got.Acc)
	require.Equal(t, raw.Mag, got.Mag)
	require.Equal(t, linalg.Vec3{}, got.Rot)
}

func TestApplySubtractsBiasAndDividesByGain(t *testing.T) {
	p := calib.Profile{
		AccBias: linalg.NewVec3(100, 100, 100),
		AccGain: linalg.NewVec3(2, 4, 5),
		MagGain: linalg.NewVec3(1, 1, 1),
		MagRot:  linalg.Identity3(),
	}
	raw := calib.Raw{Acc: linalg.NewVec3(300, 500, 600)}

	got := p.Apply(raw)
	require.InDelta(t, 100.0, got.Acc.X, 1e-9)
	require.InDelta(t, 100.0, got.Acc.Y, 1e-9)
	require.InDelta(t, 100.0, got.Acc.Z, 1e-9)
}

func TestApplyRotatesMagnetometerAfterBiasAndGain(t *testing.T) {
	p := identityProfile()
	// swap X and Y via a 90 degree rotation about Z
	p.MagRot = linalg.NewMat3(
		0, -1, 0,
		1, 0, 0,
		0, 0, 1,
	)
	raw := calib.Raw{Mag: linalg.NewVec3(1, 0, 0)}

	got := p.Apply(raw)
	require.InDelta(t, 0.0, got.Mag.X, 1e-9)
	require.InDelta(t, 1.0, got.Mag.Y, 1e-9)
	require.InDelta(t, 0.0, got.Mag.Z, 1e-9)
}

func TestApplyConvertsGyroCountsToRadiansPerSecond(t *testing.T) {
	p := identityProfile()
	raw := calib.Raw{Rot: linalg.NewVec3(32768, 0, 0)}

	got := p.Apply(raw)
	// full-scale count maps to 1000 deg/s
	require.InDelta(t, 1000.0*3.14159265358979/180.0, got.Rot.X, 1e-6)
}

func TestApplySubtractsRotationBiasBeforeScaling(t *testing.T) {
	p := identityProfile()
	p.RotBias = linalg.NewVec3(50, 0, 0)
	raw := calib.Raw{Rot: linalg.NewVec3(50, 0, 0)}

	got := p.Apply(raw)
	require.Equal(t, linalg.Vec3{}, got.Rot)
}
