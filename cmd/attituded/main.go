// Command attituded streams IMU samples from a serial port through
// the calibration and fusion pipeline, mirroring results to the
// record, telemetry and viewport sinks.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tracktum/go-attitude/internal/calib"
	"github.com/tracktum/go-attitude/internal/config"
	"github.com/tracktum/go-attitude/internal/control"
	"github.com/tracktum/go-attitude/internal/driver"
	"github.com/tracktum/go-attitude/internal/logging"
	"github.com/tracktum/go-attitude/internal/metrics"
	"github.com/tracktum/go-attitude/internal/record"
	"github.com/tracktum/go-attitude/internal/sample"
	"github.com/tracktum/go-attitude/internal/serialport"
	"github.com/tracktum/go-attitude/internal/telemetry"
	"github.com/tracktum/go-attitude/internal/viewport"
)

func main() {
	configPath := flag.String("config", "./attitude_config.txt", "path to configuration file")
	flag.Parse()

	logging.Log.Info().Msg("starting attitude estimation daemon")

	if err := config.InitGlobal(*configPath); err != nil {
		logging.Log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg := config.Get()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	hub := viewport.NewHub()
	if cfg.ViewportAddr != "" {
		go serveViewport(cfg.ViewportAddr, hub)
	}

	var mirror *telemetry.Publisher
	if cfg.MQTTBroker != "" {
		var err error
		mirror, err = telemetry.Dial(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			logging.Log.Error().Err(err).Msg("telemetry: mqtt dial failed, continuing without it")
			mirror = nil
		} else {
			defer mirror.Close()
		}
	}

	port, err := serialport.Open(cfg.SerialPort, cfg.SerialBaudRate)
	if err != nil {
		logging.Log.Fatal().Err(err).Msg("failed to open serial port")
	}
	defer port.Close()

	reader := sample.NewReader(port)

	recordSink := record.NewSink(cfg.RecordDir)
	defer recordSink.Stop()

	d := driver.New(calib.FromConfig(cfg))
	d.AddSink(driver.SinkFunc(func(f record.Frame) {
		if err := recordSink.Write(f); err != nil {
			logging.Log.Warn().Err(err).Msg("record sink write failed")
		}
	}))
	d.AddSink(driver.SinkFunc(hub.Broadcast))
	if mirror != nil {
		d.AddSink(driver.SinkFunc(func(f record.Frame) {
			if err := mirror.Publish(f); err != nil {
				logging.Log.Warn().Err(err).Msg("telemetry publish failed")
			}
		}))
	}

	commands := control.NewReader(os.Stdin)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	run(d, reader, recordSink, commands.Commands(), sig)
	logging.Log.Info().Msg("attitude estimation daemon stopped")
}

// run is the cycle loop: apply any pending operator commands, block on
// the next sample, then step the driver. It returns when the
// process receives a termination signal or the sample stream ends.
func run(d *driver.Driver, reader *sample.Reader, recordSink *record.Sink, commands <-chan control.Command, sig <-chan os.Signal) {
	lastStep := time.Time{}

	for {
		select {
		case <-sig:
			return
		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			applyCommand(d, recordSink, cmd)
			if cmd == control.Quit {
				return
			}
			continue
		default:
		}

		raw, err := reader.Next()
		if err != nil {
			logging.Log.Warn().Err(err).Msg("sample stream ended")
			return
		}

		now := time.Now()
		dt := 0.0
		if !lastStep.IsZero() {
			dt = now.Sub(lastStep).Seconds()
		}
		lastStep = now

		d.Step(dt, raw)
	}
}

func applyCommand(d *driver.Driver, recordSink *record.Sink, cmd control.Command) {
	switch cmd {
	case control.CopyToQInt:
		d.CopyToQInt()
	case control.Reset:
		d.Reset()
	case control.StartRecording:
		path, err := recordSink.Start()
		if err != nil {
			logging.Log.Error().Err(err).Msg("failed to start recording")
			return
		}
		metrics.GetMetrics().RecordingActive.Set(1)
		logging.Log.Info().Str("path", path).Msg("started recording")
	case control.StopRecording:
		if err := recordSink.Stop(); err != nil {
			logging.Log.Error().Err(err).Msg("failed to stop recording")
		}
		metrics.GetMetrics().RecordingActive.Set(0)
	case control.Quit:
		logging.Log.Info().Msg("quit requested")
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Log.Error().Err(err).Msg("metrics server stopped")
	}
}

func serveViewport(addr string, hub *viewport.Hub) {
	mux := http.NewServeMux()
	mux.HandleFunc("/viewport", hub.ServeHTTP)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Log.Error().Err(err).Msg("viewport server stopped")
	}
}
