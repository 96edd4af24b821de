// Package console adapts the machine's terminal and keyboard devices to a
// real Unix terminal: keys typed at the console are pushed onto the
// keyboard device's queue, and the terminal device writes through to the
// console's output.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/mna/vm16/internal/device"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned if standard input is not a terminal, in which case
// the console cannot support asynchronous keyboard input.
var ErrNoTTY = errors.New("console: not a TTY")

// Console binds a Keyboard and Terminal device to the process's standard
// streams.
type Console struct {
	in    *os.File
	fd    int
	state *term.State
}

// Bind puts stdin into raw mode and starts a goroutine that copies
// keypresses into kbd until ctx is cancelled. It returns a restore func
// that must be called to return the terminal to its original state.
func Bind(ctx context.Context, kbd *device.Keyboard) (restore func(), err error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	c := &Console{in: os.Stdin, fd: fd, state: saved}

	if err := c.setTerminalParams(1, 0); err != nil {
		_ = term.Restore(fd, saved)
		return nil, err
	}

	go c.readInto(ctx, kbd)

	return c.restore, nil
}

// Writer returns the process's standard output, the sink a Terminal
// device should be constructed with.
func Writer() io.Writer { return os.Stdout }

func (c *Console) restore() {
	_ = c.in.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = c.in.SetReadDeadline(time.Time{})

	return nil
}

// readInto reads bytes from the console and pushes each onto kbd until
// ctx is cancelled or the read fails.
func (c *Console) readInto(ctx context.Context, kbd *device.Keyboard) {
	buf := bufio.NewReader(c.in)

	_ = syscall.SetNonblock(c.fd, false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := buf.ReadByte()
		if err != nil {
			return
		}

		kbd.Push(b)
	}
}
