//go:build !windows

package ptyspawn

import (
	"fmt"
	"os"
)

// ProcessBuilder is the minimal capability a process-spawning backend
// must expose for pty attachment. The spawn algorithm is implemented once
// against this interface; each backend supplies an adapter.
type ProcessBuilder interface {
	// SetStdio assigns the files that will become the child's
	// descriptors 0, 1 and 2.
	SetStdio(stdin, stdout, stderr *os.File)
	// SetChildAttr registers the in-child preparation. Implementations
	// must guarantee it is applied after the fork and before the exec of
	// the target program.
	SetChildAttr(attr ChildAttr)
	// Spawn invokes the underlying process-creation primitive.
	Spawn() (ProcessHandle, error)
}

// ProcessHandle is the backend's view of a running child process.
type ProcessHandle interface {
	Pid() int
	Wait() (*os.ProcessState, error)
	Signal(sig os.Signal) error
	Kill() error
}

// Spawn creates a new pty, wires the builder's stdin/stdout/stderr to the
// subordinate side, and spawns the child with the pty as its controlling
// terminal. Any stdio previously configured on the builder is overridden.
// The returned Child owns the process handle and the controlling side of
// the pty; everything else allocated here is closed before Spawn returns,
// whether it succeeds or not.
func Spawn(b ProcessBuilder, size *Size) (*Child, error) {
	term, tty, stdio, err := setupTerminal(size)
	if err != nil {
		return nil, err
	}

	b.SetStdio(stdio[0], stdio[1], stdio[2])
	b.SetChildAttr(newChildAttr(term, tty, stdio))

	handle, err := b.Spawn()

	// The child holds its own copies on fds 0..2 by now (or was never
	// created); the parent's tty and stdio duplicates are done either way.
	_ = tty.Close()
	for _, f := range stdio {
		_ = f.Close()
	}

	if err != nil {
		_ = term.Close()
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	return &Child{handle: handle, term: term}, nil
}
