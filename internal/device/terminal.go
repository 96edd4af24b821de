// Package device implements the machine's memory-mapped peripherals: a
// text terminal and a keyboard, both driven through the vm.Device
// byte-read/byte-write protocol.
package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/mna/vm16/internal/vm"
)

// Terminal layout, as offsets from the device's base address.
const (
	termBufferStart = 0x000
	termBufferSize  = 256
	termBufferEnd   = termBufferStart + termBufferSize - 1

	termCursorX = 0x100
	termCursorY = 0x101
	termCommand = 0x102
	termFlags   = 0x103

	// TerminalSize is the number of bytes the terminal device occupies.
	TerminalSize = termFlags + 1
)

// Terminal commands, written to the command register.
const (
	TermCmdClear       vm.Byte = 0b01
	TermCmdFlush       vm.Byte = 0b10
	TermCmdResetCursor vm.Byte = 0b11
	TermCmdMoveCursor  vm.Byte = 0b100
)

// Terminal status flags.
const (
	TermFlagReady vm.Byte = 0b01
	TermFlagError vm.Byte = 0b10
)

// Terminal is a 256-byte text buffer with a movable cursor, flushed to an
// io.Writer (ordinarily the console) on command. It is addressed a byte at
// a time by the CPU through the device bus; the buffer holds whatever
// bytes were written to it, up to 256, until the next flush or clear.
type Terminal struct {
	mut sync.Mutex

	buffer [termBufferSize]vm.Byte
	curX   vm.Byte
	curY   vm.Byte
	flags  vm.Byte

	out io.Writer
}

// NewTerminal creates a terminal that flushes its buffer to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{flags: TermFlagReady, out: out}
}

// Read returns the byte at offset within the device's range.
func (t *Terminal) Read(offset int) vm.Byte {
	t.mut.Lock()
	defer t.mut.Unlock()

	switch {
	case offset >= termBufferStart && offset <= termBufferEnd:
		return t.buffer[offset-termBufferStart]
	case offset == termCursorX:
		return t.curX
	case offset == termCursorY:
		return t.curY
	case offset == termFlags:
		return t.flags
	default:
		return 0
	}
}

// Write stores value at offset within the device's range. Writing the
// command register triggers the named action immediately.
func (t *Terminal) Write(offset int, value vm.Byte) {
	t.mut.Lock()
	defer t.mut.Unlock()

	switch {
	case offset >= termBufferStart && offset <= termBufferEnd:
		t.buffer[offset-termBufferStart] = value
	case offset == termCursorX:
		t.curX = value
	case offset == termCursorY:
		t.curY = value
	case offset == termCommand:
		t.execute(value)
	case offset == termFlags:
		t.flags = value
	}
}

// execute runs a command written to the command register. Callers hold
// mut.
func (t *Terminal) execute(cmd vm.Byte) {
	switch cmd {
	case TermCmdClear:
		fmt.Fprint(t.out, "\x1b[2J\x1b[H")
		t.buffer = [termBufferSize]vm.Byte{}
		t.curX, t.curY = 0, 0
	case TermCmdFlush:
		t.flush()
	case TermCmdResetCursor:
		t.curX, t.curY = 0, 0
		t.moveCursor()
	case TermCmdMoveCursor:
		t.moveCursor()
	default:
		t.flags |= TermFlagError
	}
}

// flush writes the buffer up to its first NUL (or ETX, 0x03, matching the
// machine's string terminator) at the current cursor position, then
// clears the buffer.
func (t *Terminal) flush() {
	end := termBufferSize

	for i, b := range t.buffer {
		if b == 0 || b == 0x03 {
			end = i
			break
		}
	}

	t.moveCursor()
	fmt.Fprint(t.out, string(t.buffer[:end]))
	t.buffer = [termBufferSize]vm.Byte{}
}

func (t *Terminal) moveCursor() {
	fmt.Fprintf(t.out, "\x1b[%d;%dH", int(t.curY)+1, int(t.curX)+1)
}

var _ vm.Device = (*Terminal)(nil)
