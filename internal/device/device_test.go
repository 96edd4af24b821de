package device_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/vm16/internal/device"
)

func TestTerminalFlush(t *testing.T) {
	var out bytes.Buffer

	term := device.NewTerminal(&out)

	msg := "hi"
	for i, c := range msg {
		term.Write(i, byte(c))
	}

	term.Write(0x102, device.TermCmdFlush)

	if got := out.String(); !strings.Contains(got, msg) {
		t.Fatalf("flush output = %q, want it to contain %q", got, msg)
	}

	if got := term.Read(0); got != 0 {
		t.Fatalf("buffer byte 0 after flush = %d, want 0 (cleared)", got)
	}
}

func TestTerminalClear(t *testing.T) {
	var out bytes.Buffer

	term := device.NewTerminal(&out)
	term.Write(0, 'x')
	term.Write(0x102, device.TermCmdClear)

	if got := term.Read(0); got != 0 {
		t.Fatalf("buffer byte 0 after clear = %d, want 0", got)
	}

	if out.Len() == 0 {
		t.Fatalf("clear should write an escape sequence")
	}
}

func TestKeyboardQueue(t *testing.T) {
	kbd := device.NewKeyboard()

	if got := kbd.Read(0); got != 0 {
		t.Fatalf("status on empty queue = %d, want 0", got)
	}

	kbd.Push('a')
	kbd.Push('b')

	if got := kbd.Read(0); got != 1 {
		t.Fatalf("status with queued keys = %d, want 1", got)
	}

	if got := kbd.Read(1); got != 'a' {
		t.Fatalf("first dequeue = %q, want 'a'", got)
	}

	if got := kbd.Read(1); got != 'b' {
		t.Fatalf("second dequeue = %q, want 'b'", got)
	}

	if got := kbd.Read(0); got != 0 {
		t.Fatalf("status after draining queue = %d, want 0", got)
	}
}
