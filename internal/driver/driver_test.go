package driver_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tracktum/go-attitude/internal/calib"
	"github.com/tracktum/go-attitude/internal/driver"
	"github.com/tracktum/go-attitude/internal/linalg"
	"github.com/tracktum/go-attitude/internal/record"
)

func identityProfile() calib.Profile {
	return calib.Profile{
		AccGain: linalg.NewVec3(1, 1, 1),
		MagGain: linalg.NewVec3(1, 1, 1),
		MagRot:  linalg.Identity3(),
	}
}

func TestStepProducesAFrameAndFansItOutToSinks(t *testing.T) {
	d := driver.New(identityProfile())

	var received []record.Frame
	d.AddSink(driver.SinkFunc(func(f record.Frame) {
		received = append(received, f)
	}))

	raw := calib.Raw{
		Acc: linalg.NewVec3(0, 0, -1),
		Mag: linalg.NewVec3(0, 0.29237, -0.95630),
		Rot: linalg.NewVec3(0, 0, 0),
	}

	frame := d.Step(0.01, raw)
	require.Len(t, received, 1)
	require.Equal(t, frame, received[0])
	require.True(t, frame.QESKF.Finite())
	require.True(t, frame.GyroOnly.Finite())
	require.True(t, frame.AccMag.Finite())
	require.True(t, frame.VEKFPair.Finite())

	// acc = (0,0,-1) puts the triad's ez row at (0,0,-1); pins the row
	// (not column) convention against main.py's orthonormalize().
	require.InDelta(t, 0, frame.AccMag.At(2, 0), 1e-9)
	require.InDelta(t, 0, frame.AccMag.At(2, 1), 1e-9)
	require.InDelta(t, -1, frame.AccMag.At(2, 2), 1e-9)
}

func TestStepToleratesZeroDt(t *testing.T) {
	d := driver.New(identityProfile())
	raw := calib.Raw{
		Acc: linalg.NewVec3(0, 0, -1),
		Mag: linalg.NewVec3(0, 0.29237, -0.95630),
	}

	require.NotPanics(t, func() { d.Step(0, raw) })
}

func TestResetAndCopyToQIntDoNotPanic(t *testing.T) {
	d := driver.New(identityProfile())
	raw := calib.Raw{
		Acc: linalg.NewVec3(0, 0, -1),
		Mag: linalg.NewVec3(0, 0.29237, -0.95630),
	}
	d.Step(0.01, raw)

	require.NotPanics(t, d.Reset)
	require.NotPanics(t, d.CopyToQInt)
}
