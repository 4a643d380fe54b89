//go:build !windows

package ptyspawn

import "os"

// Child jointly owns a spawned process and the pty it is attached to.
// Process operations are forwarded to the underlying handle; pty access
// goes through the controlling side kept open for the Child's lifetime.
type Child struct {
	handle ProcessHandle
	term   Terminal
}

// Terminal returns the pty owned by this handle.
func (c *Child) Terminal() Terminal { return c.term }

// Controlling returns the controlling side of the pty for direct use with
// io helpers.
func (c *Child) Controlling() *os.File { return c.term.Controlling() }

// Read reads child output from the controlling side of the pty.
func (c *Child) Read(p []byte) (int, error) {
	return c.term.Controlling().Read(p)
}

// Write sends input to the child through the controlling side of the pty.
func (c *Child) Write(p []byte) (int, error) {
	return c.term.Controlling().Write(p)
}

// Resize changes the pty window size. The kernel delivers SIGWINCH to the
// foreground process group of the controlling terminal as a side effect.
func (c *Child) Resize(size Size) error {
	return c.term.Resize(size)
}

// Pid returns the process id of the child.
func (c *Child) Pid() int { return c.handle.Pid() }

// Wait waits for the child to exit and returns its final state.
func (c *Child) Wait() (*os.ProcessState, error) { return c.handle.Wait() }

// Signal sends sig to the child process.
func (c *Child) Signal(sig os.Signal) error { return c.handle.Signal(sig) }

// Kill terminates the child process.
func (c *Child) Kill() error { return c.handle.Kill() }

// Handle exposes the backend process handle for operations not covered by
// the forwarders above.
func (c *Child) Handle() ProcessHandle { return c.handle }

// Close releases the controlling side of the pty. It does not terminate
// or reap the child process.
func (c *Child) Close() error { return c.term.Close() }
