// Package session runs a local interactive pty session: it spawns the
// requested command attached to a fresh pty, mirrors the caller's
// terminal size into it, and pumps bytes between the local terminal and
// the child until one side goes away.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"os/signal"
	"os/user"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"pkt.systems/pslog"
	"pkt.systems/ptyspawn"
	"pkt.systems/ptyspawn/internal/config"
)

// Options configures a local interactive session.
type Options struct {
	Command    []string // argv to run; empty means the login shell
	Shell      string   // overrides login-shell detection
	Term       string   // TERM for the child environment
	Cols       int
	Rows       int
	Stdin      *os.File
	Stdout     *os.File
	DisableRaw bool
	Logger     pslog.Logger
}

// Runner executes a local interactive session.
type Runner struct {
	opts   Options
	logger pslog.Logger

	child   *ptyspawn.Child
	writeMu sync.Mutex
}

// New constructs a Runner.
func New(opts Options) *Runner {
	return &Runner{opts: opts}
}

// ExitError reports a child that terminated with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("child exited with status %d", e.Code)
}

// Run starts the session and blocks until the child exits or the context
// is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.Logger == nil {
		r.opts.Logger = pslog.LoggerFromEnv()
	}
	r.logger = r.opts.Logger

	if r.opts.Cols <= 0 || r.opts.Rows <= 0 {
		cols, rows := termSizeAny(r.stdout(), r.stdin())
		if cols > 0 && rows > 0 {
			r.opts.Cols, r.opts.Rows = cols, rows
		}
	}
	if r.opts.Cols <= 0 || r.opts.Cols > math.MaxUint16 {
		r.opts.Cols = config.DefaultTerminalCols
	}
	if r.opts.Rows <= 0 || r.opts.Rows > math.MaxUint16 {
		r.opts.Rows = config.DefaultTerminalRows
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	child, err := r.start()
	if err != nil {
		return err
	}
	r.child = child
	defer func() {
		_ = child.Kill()
		_ = child.Close()
	}()

	ptyFile := child.Controlling()
	_ = setNonblock(ptyFile, true)
	defer func() {
		_ = setNonblock(ptyFile, false)
	}()

	stdin := r.stdin()
	stdout := r.stdout()
	if !r.opts.DisableRaw {
		state, err := term.MakeRaw(int(stdin.Fd()))
		if err != nil {
			return fmt.Errorf("stdin is not a terminal: %w", err)
		}
		defer func() {
			_ = term.Restore(int(stdin.Fd()), state)
		}()
	}
	_ = setNonblock(stdin, true)
	defer func() {
		_ = setNonblock(stdin, false)
	}()

	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	sigwinch := make(chan os.Signal, 1)
	signal.Notify(sigwinch, syscall.SIGWINCH)
	defer signal.Stop(sigwinch)

	go func() {
		<-sigCtx.Done()
		_ = child.Kill()
		_ = ptyFile.Close()
	}()

	var wg sync.WaitGroup
	localErr := make(chan error, 1)
	reportErr := func(err error) {
		if err == nil {
			return
		}
		select {
		case localErr <- err:
		default:
		}
	}

	// Local input -> pty.
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, 4096)
		for {
			select {
			case <-sigCtx.Done():
				return
			default:
			}
			n, err := stdin.Read(buf)
			if err != nil {
				if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
					time.Sleep(10 * time.Millisecond)
					continue
				}
				if !errors.Is(err, io.EOF) {
					r.logger.Debug("stdin read error", "err", err)
				}
				return
			}
			if _, err := r.writePTY(buf[:n]); err != nil {
				r.logger.Debug("pty write error", "err", err)
				return
			}
		}
	}()

	// Pty -> local output.
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, 4096)
		for {
			select {
			case <-sigCtx.Done():
				return
			default:
			}
			n, err := readPTY(sigCtx, ptyFile, buf)
			if err != nil {
				if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
					time.Sleep(10 * time.Millisecond)
					continue
				}
				if !errors.Is(err, io.EOF) && !errors.Is(err, syscall.EIO) {
					r.logger.Debug("pty read error", "err", err)
					reportErr(err)
				}
				return
			}
			if err := writeAll(sigCtx, stdout, buf[:n]); err != nil {
				r.logger.Debug("stdout write error", "err", err)
				reportErr(err)
				return
			}
		}
	}()

	// Local window size changes -> pty.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-sigCtx.Done():
				return
			case <-sigwinch:
				cols, rows := termSizeAny(stdout, stdin)
				if cols <= 0 || rows <= 0 || cols > math.MaxUint16 || rows > math.MaxUint16 {
					continue
				}
				if err := child.Resize(ptyspawn.Size{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
					r.logger.Debug("pty resize error", "err", err)
				}
			}
		}
	}()

	var state *os.ProcessState
	waitDone := make(chan struct{})
	go func() {
		state, _ = child.Wait()
		close(waitDone)
	}()

	var runErr error
	select {
	case <-sigCtx.Done():
	case <-waitDone:
		if state != nil && !state.Success() {
			runErr = &ExitError{Code: state.ExitCode()}
		}
	case err := <-localErr:
		runErr = err
	}

	cancel()
	wg.Wait()
	return runErr
}

func (r *Runner) start() (*ptyspawn.Child, error) {
	argv := r.opts.Command
	if len(argv) == 0 {
		argv = []string{r.shellPath()}
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if r.opts.Term != "" {
		cmd.Env = append(os.Environ(), "TERM="+r.opts.Term)
	}
	size := &ptyspawn.Size{Rows: uint16(r.opts.Rows), Cols: uint16(r.opts.Cols)}
	child, err := ptyspawn.Start(cmd, size)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("session started", "pid", child.Pid(), "argv0", argv[0],
		"cols", r.opts.Cols, "rows", r.opts.Rows)
	return child, nil
}

func (r *Runner) shellPath() string {
	if r.opts.Shell != "" {
		return r.opts.Shell
	}
	if u, err := user.Current(); err == nil && u != nil && u.Uid != "" {
		if shell, err := shellFromPasswd(u.Uid); err == nil && shell != "" {
			return shell
		}
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

func (r *Runner) writePTY(data []byte) (int, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if r.child == nil {
		return 0, fmt.Errorf("session not started")
	}
	return r.child.Write(data)
}

func (r *Runner) stdin() *os.File {
	if r.opts.Stdin != nil {
		return r.opts.Stdin
	}
	return os.Stdin
}

func (r *Runner) stdout() *os.File {
	if r.opts.Stdout != nil {
		return r.opts.Stdout
	}
	return os.Stdout
}

func termSize(file *os.File) (int, int) {
	if file == nil {
		return 0, 0
	}
	cols, rows, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return 0, 0
	}
	return cols, rows
}

func termSizeAny(files ...*os.File) (int, int) {
	for _, file := range files {
		if file == nil {
			continue
		}
		if cols, rows := termSize(file); cols > 0 && rows > 0 {
			return cols, rows
		}
	}
	if tty, err := os.Open("/dev/tty"); err == nil {
		defer func() {
			_ = tty.Close()
		}()
		if cols, rows := termSize(tty); cols > 0 && rows > 0 {
			return cols, rows
		}
	}
	return 0, 0
}

func setNonblock(file *os.File, on bool) error {
	if file == nil {
		return nil
	}
	return syscall.SetNonblock(int(file.Fd()), on)
}

func writeAll(ctx context.Context, w io.Writer, data []byte) error {
	for len(data) > 0 {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := w.Write(data)
		if n > 0 {
			data = data[n:]
		}
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			return err
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
	return nil
}
