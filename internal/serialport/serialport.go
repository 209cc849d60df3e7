// Package serialport opens the physical link the IMU streams samples
// over.
package serialport

import (
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

// readTimeoutDeciseconds bounds each read to 2 seconds. The driver
// loop in cmd/attituded does not retry after a timed-out read: it stops
// as soon as sample.Reader reports an error or the end of the stream.
const readTimeoutDeciseconds = 20

// Open opens the serial port at the given path and baud rate, 8-N-1,
// with a 2 second read timeout.
func Open(port string, baudRate int) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: readTimeoutDeciseconds * 100,
		ParityMode:            serial.PARITY_NONE,
	}

	p, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", port, err)
	}
	return p, nil
}
