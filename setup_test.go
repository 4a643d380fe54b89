//go:build !windows

package ptyspawn

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestSetupTerminalDuplicatesExactlyThree(t *testing.T) {
	term, tty, stdio, err := setupTerminal(&Size{Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("setupTerminal: %v", err)
	}
	t.Cleanup(func() {
		for _, f := range stdio {
			_ = f.Close()
		}
		_ = tty.Close()
		_ = term.Close()
	})

	var ttyStat unix.Stat_t
	if err := unix.Fstat(int(tty.Fd()), &ttyStat); err != nil {
		t.Fatalf("fstat tty: %v", err)
	}
	seen := map[int]bool{int(tty.Fd()): true, int(term.Controlling().Fd()): true}
	for i, f := range stdio {
		fd := int(f.Fd())
		if seen[fd] {
			t.Fatalf("stdio slot %d is not an independent descriptor", i)
		}
		seen[fd] = true

		var st unix.Stat_t
		if err := unix.Fstat(fd, &st); err != nil {
			t.Fatalf("fstat stdio %d: %v", i, err)
		}
		if st.Rdev != ttyStat.Rdev {
			t.Fatalf("stdio slot %d refers to a different device", i)
		}
		flags, err := unix.FcntlInt(f.Fd(), unix.F_GETFD, 0)
		if err != nil {
			t.Fatalf("F_GETFD stdio %d: %v", i, err)
		}
		if flags&unix.FD_CLOEXEC == 0 {
			t.Fatalf("stdio slot %d missing close-on-exec", i)
		}
	}
}

func TestTerminalTtyHandedOutOnce(t *testing.T) {
	term, err := NewTerminal(nil)
	if err != nil {
		t.Fatalf("NewTerminal: %v", err)
	}
	t.Cleanup(func() {
		_ = term.Close()
	})

	tty, err := term.Tty()
	if err != nil {
		t.Fatalf("Tty: %v", err)
	}
	t.Cleanup(func() {
		_ = tty.Close()
	})
	if _, err := term.Tty(); err == nil {
		t.Fatalf("second Tty call should fail")
	}
}

func TestResizeAfterCloseReturnsResizeError(t *testing.T) {
	term, err := NewTerminal(nil)
	if err != nil {
		t.Fatalf("NewTerminal: %v", err)
	}
	if err := term.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := term.Resize(Size{Rows: 10, Cols: 10}); !errors.Is(err, ErrResize) {
		t.Fatalf("Resize on closed terminal = %v, want ErrResize", err)
	}
}
