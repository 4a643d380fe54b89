// Package ptyspawn spawns processes attached to a freshly created
// pseudo-terminal, so the child behaves as if launched interactively:
// line discipline, job control and window-resize signaling all work the
// way they do on a real terminal.
//
// The spawn algorithm is written once against the ProcessBuilder
// contract; adapters for os/exec (Exec) and os.StartProcess (ProcBuilder)
// are included, and any other process-creation backend can participate by
// satisfying the same interface. A successful spawn returns a Child that
// jointly owns the process handle and the controlling side of the pty.
package ptyspawn
