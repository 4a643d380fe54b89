//go:build !windows

package ptyspawn

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// openTerminal is swapped out in tests to simulate pty exhaustion.
var openTerminal = NewTerminal

var stdioNames = [3]string{"stdin", "stdout", "stderr"}

// setupTerminal creates the pty pair, applies the initial size, and
// duplicates the subordinate side into three independently owned
// descriptors destined for the child's stdio slots. On any failure every
// descriptor created so far is released before the error is returned.
func setupTerminal(size *Size) (Terminal, *os.File, [3]*os.File, error) {
	var stdio [3]*os.File

	term, err := openTerminal(size)
	if err != nil {
		return nil, nil, stdio, err
	}
	tty, err := term.Tty()
	if err != nil {
		_ = term.Close()
		return nil, nil, stdio, err
	}

	for i := range stdio {
		// F_DUPFD_CLOEXEC keeps the originals out of the exec'd image;
		// the runtime hands the child plain copies on fds 0..2. The
		// floor of 3 keeps the dup itself clear of the std slots.
		fd, err := unix.FcntlInt(tty.Fd(), unix.F_DUPFD_CLOEXEC, 3)
		if err != nil {
			for _, f := range stdio[:i] {
				_ = f.Close()
			}
			_ = tty.Close()
			_ = term.Close()
			return nil, nil, stdio, fmt.Errorf("%w: dup for %s: %w", ErrDup, stdioNames[i], err)
		}
		stdio[i] = os.NewFile(uintptr(fd), tty.Name())
	}
	return term, tty, stdio, nil
}
