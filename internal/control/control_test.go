package control_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tracktum/go-attitude/internal/control"
)

func drain(t *testing.T, ch <-chan control.Command, n int) []control.Command {
	t.Helper()
	var got []control.Command
	for i := 0; i < n; i++ {
		select {
		case cmd, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, cmd)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for command")
		}
	}
	return got
}

func TestReaderDecodesAllFiveCommands(t *testing.T) {
	r := control.NewReader(strings.NewReader("g\nr\nq\nw\nquit\n"))

	got := drain(t, r.Commands(), 5)
	require.Equal(t, []control.Command{
		control.CopyToQInt,
		control.Reset,
		control.StartRecording,
		control.StopRecording,
		control.Quit,
	}, got)
}

func TestReaderAcceptsExitAsAliasForQuit(t *testing.T) {
	r := control.NewReader(strings.NewReader("exit\n"))

	got := drain(t, r.Commands(), 1)
	require.Equal(t, []control.Command{control.Quit}, got)
}

func TestReaderIsCaseInsensitiveAndTrimsWhitespace(t *testing.T) {
	r := control.NewReader(strings.NewReader("  G  \nR\n"))

	got := drain(t, r.Commands(), 2)
	require.Equal(t, []control.Command{control.CopyToQInt, control.Reset}, got)
}

func TestReaderSkipsBlankLinesAndUnrecognizedWords(t *testing.T) {
	r := control.NewReader(strings.NewReader("\nbogus\ng\n"))

	got := drain(t, r.Commands(), 1)
	require.Equal(t, []control.Command{control.CopyToQInt}, got)
}

func TestReaderClosesChannelWhenInputExhausted(t *testing.T) {
	r := control.NewReader(strings.NewReader("g\n"))

	drain(t, r.Commands(), 1)

	select {
	case _, ok := <-r.Commands():
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
