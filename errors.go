package ptyspawn

import "errors"

// Error kinds wrapped into every failure returned by Spawn. Match them
// with errors.Is; the underlying OS error (including the syscall.Errno
// where one exists) remains in the chain for errors.As.
var (
	// ErrPtyCreate reports that the pty device could not be created.
	ErrPtyCreate = errors.New("pty creation failed")
	// ErrResize reports that the pty rejected the requested size.
	ErrResize = errors.New("pty resize failed")
	// ErrDup reports a failed duplication of the subordinate descriptor.
	ErrDup = errors.New("descriptor duplication failed")
	// ErrSpawn wraps a failure of the underlying process-creation
	// primitive, including failures of the in-child preparation (session
	// leadership, controlling-terminal assignment) that the runtime
	// reports back through its fork/exec error pipe.
	ErrSpawn = errors.New("spawn failed")
)
