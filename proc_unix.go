//go:build !windows

package ptyspawn

import (
	"os"
	"syscall"
)

// ProcBuilder spawns through os.StartProcess for callers that do not want
// the os/exec layer. Path is executed as given; no PATH lookup is
// performed. Args should include the program name as Args[0].
type ProcBuilder struct {
	Path string
	Args []string
	Env  []string
	Dir  string

	stdio [3]*os.File
	sys   *syscall.SysProcAttr
}

func (p *ProcBuilder) SetStdio(stdin, stdout, stderr *os.File) {
	p.stdio = [3]*os.File{stdin, stdout, stderr}
}

func (p *ProcBuilder) SetChildAttr(attr ChildAttr) {
	attr.enforceCloseOnExec()
	p.sys = attr.SysProcAttr()
}

func (p *ProcBuilder) Spawn() (ProcessHandle, error) {
	args := p.Args
	if len(args) == 0 {
		args = []string{p.Path}
	}
	env := p.Env
	if env == nil {
		env = os.Environ()
	}
	proc, err := os.StartProcess(p.Path, args, &os.ProcAttr{
		Dir:   p.Dir,
		Env:   env,
		Files: []*os.File{p.stdio[0], p.stdio[1], p.stdio[2]},
		Sys:   p.sys,
	})
	if err != nil {
		return nil, err
	}
	return &procHandle{proc: proc}, nil
}

type procHandle struct {
	proc *os.Process
}

func (h *procHandle) Pid() int {
	return h.proc.Pid
}

func (h *procHandle) Wait() (*os.ProcessState, error) {
	return h.proc.Wait()
}

func (h *procHandle) Signal(sig os.Signal) error {
	return h.proc.Signal(sig)
}

func (h *procHandle) Kill() error {
	return h.proc.Kill()
}
