//go:build !windows

package ptyspawn

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// Terminal is the pty collaborator contract. The controlling side stays
// with the parent for the child's lifetime; the subordinate side is
// consumed during spawn setup and never read by the parent.
type Terminal interface {
	// Controlling returns the controlling (master) side of the pty.
	Controlling() *os.File
	// Tty hands over the subordinate (slave) side. Ownership of the
	// returned file passes to the caller; it is handed out at most once.
	Tty() (*os.File, error)
	// Resize changes the window size of the pty.
	Resize(size Size) error
	// Close releases the controlling side and, if never handed out, the
	// subordinate side.
	Close() error
}

type devTerminal struct {
	master *os.File
	tty    *os.File
}

// NewTerminal opens a fresh pty pair and applies the initial size if one
// is given. Both descriptors are marked close-on-exec: the child receives
// dedicated duplicates for its stdio, so neither original may survive
// into an exec'd image.
func NewTerminal(size *Size) (Terminal, error) {
	master, tty, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPtyCreate, err)
	}
	unix.CloseOnExec(int(master.Fd()))
	unix.CloseOnExec(int(tty.Fd()))

	t := &devTerminal{master: master, tty: tty}
	if size != nil {
		if err := t.Resize(*size); err != nil {
			_ = t.Close()
			return nil, err
		}
	}
	return t, nil
}

func (t *devTerminal) Controlling() *os.File { return t.master }

func (t *devTerminal) Tty() (*os.File, error) {
	if t.tty == nil {
		return nil, os.ErrClosed
	}
	tty := t.tty
	t.tty = nil
	return tty, nil
}

func (t *devTerminal) Resize(size Size) error {
	if t.master == nil {
		return fmt.Errorf("%w: %w", ErrResize, os.ErrClosed)
	}
	if err := pty.Setsize(t.master, size.winsize()); err != nil {
		return fmt.Errorf("%w: %w", ErrResize, err)
	}
	return nil
}

func (t *devTerminal) Close() error {
	var first error
	if t.tty != nil {
		first = t.tty.Close()
		t.tty = nil
	}
	if t.master != nil {
		if err := t.master.Close(); err != nil && first == nil {
			first = err
		}
		t.master = nil
	}
	return first
}
