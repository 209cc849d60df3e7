// Package record writes processed frames to the outbound log file
// sink: one line per sample, the row-major 3x3 rotation matrices of
// the four estimators, in the order accmag, gyro_only, qeskf,
// vekf_pair.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tracktum/go-attitude/internal/linalg"
)

// Frame is one sample's worth of estimator output, ready to be
// written to the log file or mirrored to other sinks.
type Frame struct {
	AccMag   linalg.Mat3
	GyroOnly linalg.Mat3
	QESKF    linalg.Mat3
	VEKFPair linalg.Mat3
}

// Sink writes Frames to a numbered log file, matching the legacy
// naming scheme output/data<N>.txt for the smallest N not already on
// disk.
type Sink struct {
	dir  string
	file *os.File
}

// NewSink creates a Sink rooted at dir. No file is opened until Start
// is called.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Active reports whether a recording file is currently open.
func (s *Sink) Active() bool {
	return s.file != nil
}

// Start closes any currently-open file and opens output/data<N>.txt
// for the smallest positive N that does not already exist, returning
// the path opened.
func (s *Sink) Start() (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("record: create directory: %w", err)
	}

	for i := 1; i < 10000; i++ {
		path := filepath.Join(s.dir, "data"+strconv.Itoa(i)+".txt")
		if _, err := os.Stat(path); err == nil {
			continue
		}

		if s.file != nil {
			s.file.Close()
		}

		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("record: create %s: %w", path, err)
		}
		s.file = f
		return path, nil
	}

	return "", fmt.Errorf("record: no free file slot under %s", s.dir)
}

// Stop closes the currently-open file, if any.
func (s *Sink) Stop() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Write appends one Frame as 36 whitespace-separated decimal floats.
// It is a no-op if no file is open.
func (s *Sink) Write(f Frame) error {
	if s.file == nil {
		return nil
	}

	var b strings.Builder
	for _, m := range [4]linalg.Mat3{f.AccMag, f.GyroOnly, f.QESKF, f.VEKFPair} {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				fmt.Fprintf(&b, "%g ", m.At(i, j))
			}
		}
	}
	line := strings.TrimRight(b.String(), " ") + "\n"

	_, err := s.file.WriteString(line)
	return err
}
