// Package driver implements the fusion driver: each cycle it takes one
// calibrated sample, steps all four estimators with a shared dt, and
// fans the resulting frame out to whichever sinks are attached. See
// spec section 2 item 6 and main.py's loop() for the reference step
// order.
package driver

import (
	"time"

	"github.com/tracktum/go-attitude/internal/calib"
	"github.com/tracktum/go-attitude/internal/estimator"
	"github.com/tracktum/go-attitude/internal/linalg"
	"github.com/tracktum/go-attitude/internal/logging"
	"github.com/tracktum/go-attitude/internal/metrics"
	"github.com/tracktum/go-attitude/internal/record"
)

// Sink receives a completed Frame after every cycle.
type Sink interface {
	Handle(record.Frame)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(record.Frame)

// Handle calls f.
func (f SinkFunc) Handle(fr record.Frame) { f(fr) }

// Driver owns the four estimators and orchestrates one step per
// cycle: Q-ESKF, then the accelerometer and magnetometer vector EKFs,
// then the gyro-only integrator, and last the accelerometer/
// magnetometer-only and VEKF-pair triads that complete the frame.
type Driver struct {
	profile calib.Profile

	qeskf   *estimator.QESKF
	qint    *estimator.QInt
	accVekf *estimator.VEKF
	magVekf *estimator.VEKF

	sinks []Sink
}

// New creates a Driver with a fresh set of estimators seeded from the
// package-level navigation references, and the given calibration
// profile.
func New(profile calib.Profile) *Driver {
	return &Driver{
		profile: profile,
		qeskf:   estimator.NewQESKF(estimator.NavGravity, estimator.NavMagnetic),
		qint:    estimator.NewQInt(),
		accVekf: estimator.NewVEKF(1.0),
		magVekf: estimator.NewVEKF(1.0),
	}
}

// AddSink registers a sink to receive every future Frame.
func (d *Driver) AddSink(s Sink) {
	d.sinks = append(d.sinks, s)
}

// Step calibrates one raw sample and advances all four estimators by
// dt, then fans the resulting Frame out to every registered sink.
//
// A non-finite step in either the Q-ESKF or a VEKF is logged and
// skipped for that estimator only; the other three estimators and the
// frame as a whole continue to be produced, matching the spec's policy
// of surfacing but not propagating a single filter's divergence.
func (d *Driver) Step(dt float64, raw calib.Raw) record.Frame {
	c := d.profile.Apply(raw)
	m := metrics.GetMetrics()

	start := time.Now()
	if err := d.qeskf.Step(dt, c.Acc, c.Mag, c.Rot); err != nil {
		logging.Log.Warn().Err(err).Msg("driver: qeskf step aborted")
		m.FilterErrors.WithLabelValues("qeskf").Inc()
	}
	m.StepDuration.WithLabelValues("qeskf").Observe(time.Since(start).Seconds())

	start = time.Now()
	if err := d.accVekf.Step(dt, c.Acc, c.Rot); err != nil {
		logging.Log.Warn().Err(err).Msg("driver: acc vekf step aborted")
		m.FilterErrors.WithLabelValues("acc_vekf").Inc()
	}
	m.StepDuration.WithLabelValues("acc_vekf").Observe(time.Since(start).Seconds())

	start = time.Now()
	if err := d.magVekf.Step(dt, c.Mag, c.Rot); err != nil {
		logging.Log.Warn().Err(err).Msg("driver: mag vekf step aborted")
		m.FilterErrors.WithLabelValues("mag_vekf").Inc()
	}
	m.StepDuration.WithLabelValues("mag_vekf").Observe(time.Since(start).Seconds())

	start = time.Now()
	d.qint.Step(dt, c.Rot)
	m.StepDuration.WithLabelValues("qint").Observe(time.Since(start).Seconds())

	frame := record.Frame{
		AccMag:   triad(c.Acc.Neg(), c.Mag),
		GyroOnly: d.qint.Matrix().RotationBlock(),
		QESKF:    d.qeskf.Matrix().RotationBlock(),
		VEKFPair: triad(d.accVekf.Vector().Neg(), d.magVekf.Vector()),
	}

	m.SamplesTotal.Inc()
	m.AccVariance.Set(d.qeskf.AccVar)
	m.CovarianceTrace.WithLabelValues("qeskf").Set(d.qeskf.Covariance().Trace())
	m.CovarianceTrace.WithLabelValues("acc_vekf").Set(d.accVekf.Covariance().Trace())
	m.CovarianceTrace.WithLabelValues("mag_vekf").Set(d.magVekf.Covariance().Trace())

	for _, s := range d.sinks {
		s.Handle(frame)
	}
	return frame
}

// Reset snaps the Q-ESKF back to identity and both vector EKFs back to
// their navigation-frame references, matching main.py's K_r handler.
// VEKF.Reset also reinitializes P to identity; main.py's K_r only
// resets x, leaving P untouched. Benign (P reconverges within a few
// steps) but worth flagging as a divergence from the reference.
func (d *Driver) Reset() {
	d.qeskf.Reset()
	d.accVekf.Reset(estimator.NavGravity.Neg())
	d.magVekf.Reset(estimator.NavMagnetic)
}

// CopyToQInt re-seeds the gyro-only integrator from the Q-ESKF's
// current orientation, matching main.py's K_g handler.
func (d *Driver) CopyToQInt() {
	d.qint.SetQuaternion(d.qeskf.Quaternion())
}

// triad builds a right-handed orthonormal frame from a gravity-like
// direction g and a magnetic-like direction m, the construction
// main.py's orthonormalize() uses for the accelerometer/magnetometer
// only and vector-EKF-pair estimates (neither of which involves the
// Q-ESKF's filtered state). main.py returns block([[ex, ey, ez]]).T,
// i.e. ex/ey/ez as rows, not columns.
func triad(g, m linalg.Vec3) linalg.Mat3 {
	ez := g.Neg().Scale(1.0 / g.Norm())
	ex := linalg.Skew(m).MulVec(ez)
	ex = ex.Scale(1.0 / ex.Norm())
	ey := linalg.Skew(ez).MulVec(ex)

	return linalg.NewMat3(
		ex.X, ex.Y, ex.Z,
		ey.X, ey.Y, ey.Z,
		ez.X, ez.Y, ez.Z,
	)
}
