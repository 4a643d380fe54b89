package server

import (
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"
	"sync"
	"time"

	"pkt.systems/ptyspawn"
	"pkt.systems/ptyspawn/internal/config"
)

// Session is one served pty child. Writes and resizes are serialized;
// reads happen from the single pump goroutine owned by the ws handler.
type Session struct {
	ID        string
	Command   []string
	StartedAt time.Time

	child *ptyspawn.Child

	mu       sync.Mutex
	done     chan struct{}
	exitCode int
}

// SpawnSpec describes the child to create for a session.
type SpawnSpec struct {
	Command []string
	Term    string
	Cols    int
	Rows    int
}

func newSession(id string, spec SpawnSpec) (*Session, error) {
	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	term := spec.Term
	if term == "" {
		term = config.DefaultTerminalTerm
	}
	cmd.Env = append(cmd.Environ(), "TERM="+term)
	if spec.Cols <= 0 || spec.Cols > math.MaxUint16 {
		spec.Cols = config.DefaultTerminalCols
	}
	if spec.Rows <= 0 || spec.Rows > math.MaxUint16 {
		spec.Rows = config.DefaultTerminalRows
	}
	size := &ptyspawn.Size{Rows: uint16(spec.Rows), Cols: uint16(spec.Cols)}
	child, err := ptyspawn.Start(cmd, size)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        id,
		Command:   spec.Command,
		StartedAt: time.Now().UTC(),
		child:     child,
		done:      make(chan struct{}),
	}
	go func() {
		state, _ := child.Wait()
		s.mu.Lock()
		if state != nil {
			s.exitCode = state.ExitCode()
		}
		s.mu.Unlock()
		close(s.done)
	}()
	return s, nil
}

// Pid returns the child's process id.
func (s *Session) Pid() int { return s.child.Pid() }

// Write sends input to the session's pty.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return 0, io.ErrClosedPipe
	}
	return s.child.Write(data)
}

// Read reads session output from the controlling side of the pty.
func (s *Session) Read(p []byte) (int, error) {
	return s.child.Read(p)
}

// Resize changes the session's pty size. Dimensions come straight from
// the client, so anything outside the uint16 window size range is
// rejected rather than silently wrapped.
func (s *Session) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 || cols > math.MaxUint16 || rows > math.MaxUint16 {
		return fmt.Errorf("invalid resize %dx%d", cols, rows)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return io.ErrClosedPipe
	}
	return s.child.Resize(ptyspawn.Size{Rows: uint16(rows), Cols: uint16(cols)})
}

// Done is closed once the child has been reaped.
func (s *Session) Done() <-chan struct{} { return s.done }

// ExitCode is valid after Done is closed.
func (s *Session) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

// Running reports whether the child is still alive.
func (s *Session) Running() bool { return !s.closed() }

// Kill terminates the child; the reaper goroutine records its exit.
func (s *Session) Kill() {
	_ = s.child.Kill()
}

// Close kills the child if needed and releases the pty.
func (s *Session) Close() error {
	if !s.closed() {
		_ = s.child.Kill()
	}
	<-s.done
	return s.child.Close()
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Info is the external view of a session for listings.
type Info struct {
	ID        string    `json:"id"`
	Pid       int       `json:"pid"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`
	Status    string    `json:"status"`
}

func (s *Session) info() Info {
	status := "running"
	if s.closed() {
		status = "exited"
	}
	return Info{
		ID:        s.ID,
		Pid:       s.Pid(),
		Command:   strings.Join(s.Command, " "),
		StartedAt: s.StartedAt,
		Status:    status,
	}
}
