//go:build !windows

package ptyspawn

import (
	"os"
	"os/exec"
	"syscall"
)

// ExecCommand adapts an os/exec command to the ProcessBuilder contract.
// The command's own configuration (arguments, environment, working
// directory) is left untouched.
type ExecCommand struct {
	*exec.Cmd
}

// Exec wraps cmd for pty spawning.
func Exec(cmd *exec.Cmd) *ExecCommand {
	return &ExecCommand{Cmd: cmd}
}

// Start spawns cmd attached to a fresh pty and returns the Child handle.
// It is shorthand for Spawn(Exec(cmd), size).
func Start(cmd *exec.Cmd, size *Size) (*Child, error) {
	return Spawn(Exec(cmd), size)
}

func (c *ExecCommand) SetStdio(stdin, stdout, stderr *os.File) {
	c.Stdin = stdin
	c.Stdout = stdout
	c.Stderr = stderr
}

func (c *ExecCommand) SetChildAttr(attr ChildAttr) {
	attr.enforceCloseOnExec()
	if c.SysProcAttr == nil {
		c.SysProcAttr = &syscall.SysProcAttr{}
	}
	sys := attr.SysProcAttr()
	c.SysProcAttr.Setsid = sys.Setsid
	c.SysProcAttr.Setctty = sys.Setctty
	c.SysProcAttr.Ctty = sys.Ctty
}

func (c *ExecCommand) Spawn() (ProcessHandle, error) {
	if err := c.Cmd.Start(); err != nil {
		return nil, err
	}
	return &execHandle{cmd: c.Cmd}, nil
}

type execHandle struct {
	cmd *exec.Cmd
}

func (h *execHandle) Pid() int {
	return h.cmd.Process.Pid
}

// Wait reaps the child. A non-zero exit reports the *exec.ExitError from
// os/exec alongside the final process state.
func (h *execHandle) Wait() (*os.ProcessState, error) {
	err := h.cmd.Wait()
	return h.cmd.ProcessState, err
}

func (h *execHandle) Signal(sig os.Signal) error {
	return h.cmd.Process.Signal(sig)
}

func (h *execHandle) Kill() error {
	return h.cmd.Process.Kill()
}
