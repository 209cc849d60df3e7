// Package sample decodes the serial wire format: ASCII lines of nine
// whitespace-separated decimal integers.
package sample

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/tracktum/go-attitude/internal/calib"
	"github.com/tracktum/go-attitude/internal/linalg"
	"github.com/tracktum/go-attitude/internal/metrics"
)

// ErrMalformed is returned by Decode for a line whose field count is
// not 9. Callers discard the line and keep reading; see spec section 6.
var ErrMalformed = errors.New("sample: malformed line")

// Decode parses one wire line into its nine raw counts.
func Decode(line string) (calib.Raw, error) {
	fields := strings.Fields(line)
	if len(fields) != 9 {
		return calib.Raw{}, ErrMalformed
	}

	var v [9]float64
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return calib.Raw{}, ErrMalformed
		}
		v[i] = float64(n)
	}

	return calib.Raw{
		Acc: linalg.NewVec3(v[0], v[1], v[2]),
		Mag: linalg.NewVec3(v[3], v[4], v[5]),
		Rot: linalg.NewVec3(v[6], v[7], v[8]),
	}, nil
}

// Reader decodes a stream of wire lines, silently skipping malformed
// ones and continuing to the next.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r as a line-oriented sample source.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next well-formed sample, skipping any malformed
// lines in between. It returns io.EOF once the underlying reader is
// exhausted.
func (d *Reader) Next() (calib.Raw, error) {
	for d.scanner.Scan() {
		raw, err := Decode(d.scanner.Text())
		if err != nil {
			metrics.GetMetrics().SamplesDropped.WithLabelValues("malformed").Inc()
			continue
		}
		return raw, nil
	}
	if err := d.scanner.Err(); err != nil {
		return calib.Raw{}, err
	}
	return calib.Raw{}, io.EOF
}
