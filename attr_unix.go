//go:build !windows

package ptyspawn

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// ChildAttr describes the preparation a builder must apply in the forked
// child before it executes the target program: become a session leader
// and take the subordinate pty as controlling terminal. It carries only
// plain descriptor numbers captured by value; the preparation itself
// runs inside the Go runtime's fork/exec stub, the one context where a
// child of a multi-threaded parent may do anything at all (raw syscalls
// only; no allocation, no locks).
type ChildAttr struct {
	controllingFD int
	ttyFD         int
	stdioFD       [3]int
}

func newChildAttr(term Terminal, tty *os.File, stdio [3]*os.File) ChildAttr {
	attr := ChildAttr{
		controllingFD: int(term.Controlling().Fd()),
		ttyFD:         int(tty.Fd()),
	}
	for i, f := range stdio {
		attr.stdioFD[i] = int(f.Fd())
	}
	return attr
}

// enforceCloseOnExec re-asserts the close-on-exec flag on every retained
// descriptor. The runtime clears the flag only on the copies it moves
// onto the child's fds 0..2, so after exec the target program sees the
// stdio triple and nothing else of the pty plumbing.
func (a ChildAttr) enforceCloseOnExec() {
	unix.CloseOnExec(a.controllingFD)
	unix.CloseOnExec(a.ttyFD)
	for _, fd := range a.stdioFD {
		unix.CloseOnExec(fd)
	}
}

// SysProcAttr renders the preparation as fork/exec attributes. Setsid
// detaches the child into a new session; Setctty issues TIOCSCTTY on
// Ctty, which points at fd 0 because by then the runtime has already
// repointed the child's descriptor table at the stdio triple. A failure
// of either step aborts the pending exec and surfaces through the
// primitive's error return.
func (a ChildAttr) SysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0,
	}
}
