// Package control turns operator keyboard commands into a channel of
// Commands for the driver loop to apply between samples. The original
// collaborator is a GUI's raw keystroke handler (spec section 1's "the
// keyboard event handling" external collaborator); no raw-keystroke
// terminal library appears anywhere in the retrieved corpus, so this
// reads line-buffered commands from stdin instead -- one command word
// per line.
package control

import (
	"bufio"
	"io"
	"strings"

	"github.com/tracktum/go-attitude/internal/logging"
)

// Command is one operator action, matching the reference
// implementation's keyboard bindings (K_g, K_r, K_q, K_w, K_ESCAPE).
type Command int

const (
	// CopyToQInt re-seeds the pure-gyro integrator from the Q-ESKF's
	// current orientation (K_g).
	CopyToQInt Command = iota
	// Reset snaps the Q-ESKF back to identity and both vector EKFs
	// back to their navigation-frame references (K_r).
	Reset
	// StartRecording opens a new numbered record sink file (K_q).
	StartRecording
	// StopRecording closes the current record sink file (K_w).
	StopRecording
	// Quit ends the driver loop (K_ESCAPE).
	Quit
)

var wordToCommand = map[string]Command{
	"g":    CopyToQInt,
	"r":    Reset,
	"q":    StartRecording,
	"w":    StopRecording,
	"quit": Quit,
	"exit": Quit,
}

// Reader turns stdin lines into a Command channel.
type Reader struct {
	commands chan Command
}

// NewReader starts a goroutine reading commands from r until it
// closes or an unrecoverable read error occurs.
func NewReader(r io.Reader) *Reader {
	cr := &Reader{commands: make(chan Command, 8)}
	go cr.run(r)
	return cr
}

// Commands returns the channel of decoded commands. It is closed when
// the underlying reader is exhausted.
func (cr *Reader) Commands() <-chan Command {
	return cr.commands
}

func (cr *Reader) run(r io.Reader) {
	defer close(cr.commands)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		cmd, ok := wordToCommand[word]
		if !ok {
			logging.Log.Warn().Str("word", word).Msg("control: unrecognized command")
			continue
		}
		cr.commands <- cmd
	}
}
