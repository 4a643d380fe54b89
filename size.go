package ptyspawn

import "github.com/creack/pty"

// Size describes pty window dimensions. X and Y are pixel counts and are
// usually left zero.
type Size struct {
	Rows uint16
	Cols uint16
	X    uint16
	Y    uint16
}

func (s Size) winsize() *pty.Winsize {
	return &pty.Winsize{Rows: s.Rows, Cols: s.Cols, X: s.X, Y: s.Y}
}
