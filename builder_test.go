//go:build !windows

package ptyspawn

import (
	"errors"
	"os"
	"testing"
)

type fakeHandle struct{}

func (fakeHandle) Pid() int                        { return 1234 }
func (fakeHandle) Wait() (*os.ProcessState, error) { return nil, nil }
func (fakeHandle) Signal(os.Signal) error          { return nil }
func (fakeHandle) Kill() error                     { return nil }

type fakeBuilder struct {
	stdio    [3]*os.File
	fds      [3]uintptr // captured at SetStdio time, before the parent closes them
	stdioSet bool
	attr     ChildAttr
	attrSet  bool
	spawnErr error
	spawned  bool
}

func (b *fakeBuilder) SetStdio(stdin, stdout, stderr *os.File) {
	b.stdio = [3]*os.File{stdin, stdout, stderr}
	for i, f := range b.stdio {
		if f != nil {
			b.fds[i] = f.Fd()
		}
	}
	b.stdioSet = true
}

func (b *fakeBuilder) SetChildAttr(attr ChildAttr) {
	b.attr = attr
	b.attrSet = true
}

func (b *fakeBuilder) Spawn() (ProcessHandle, error) {
	b.spawned = true
	if b.spawnErr != nil {
		return nil, b.spawnErr
	}
	return fakeHandle{}, nil
}

func TestSpawnWiresBuilder(t *testing.T) {
	b := &fakeBuilder{}
	child, err := Spawn(b, &Size{Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	t.Cleanup(func() {
		_ = child.Close()
	})

	if !b.stdioSet || !b.attrSet {
		t.Fatalf("builder not fully wired: stdio=%v attr=%v", b.stdioSet, b.attrSet)
	}
	if !b.spawned {
		t.Fatalf("underlying spawn primitive never invoked")
	}
	seen := map[uintptr]bool{}
	for i, f := range b.stdio {
		if f == nil {
			t.Fatalf("stdio slot %d is nil", i)
		}
		if seen[b.fds[i]] {
			t.Fatalf("stdio slot %d shares a descriptor with another slot", i)
		}
		seen[b.fds[i]] = true
	}
	sys := b.attr.SysProcAttr()
	if !sys.Setsid || !sys.Setctty || sys.Ctty != 0 {
		t.Fatalf("child preparation attrs = %+v", sys)
	}
	if child.Pid() != 1234 {
		t.Fatalf("Pid not forwarded, got %d", child.Pid())
	}
}

func TestSpawnWrapsBuilderFailure(t *testing.T) {
	cause := errors.New("boom")
	b := &fakeBuilder{spawnErr: cause}

	if _, err := Spawn(b, nil); !errors.Is(err, ErrSpawn) || !errors.Is(err, cause) {
		t.Fatalf("Spawn error = %v, want ErrSpawn wrapping cause", err)
	}
	// The failed spawn must not leave stdio duplicates open.
	for i, f := range b.stdio {
		if f == nil {
			continue
		}
		if _, err := f.Stat(); err == nil {
			t.Fatalf("stdio slot %d still open after failed spawn", i)
		}
	}
}

func TestSpawnPropagatesPtyCreation(t *testing.T) {
	orig := openTerminal
	openTerminal = func(*Size) (Terminal, error) {
		return nil, ErrPtyCreate
	}
	t.Cleanup(func() {
		openTerminal = orig
	})

	b := &fakeBuilder{}
	if _, err := Spawn(b, nil); !errors.Is(err, ErrPtyCreate) {
		t.Fatalf("Spawn error = %v, want ErrPtyCreate", err)
	}
	if b.spawned || b.stdioSet {
		t.Fatalf("builder touched after pty creation failure")
	}
}
