package qpas

import (
	"fmt"
	"io"
)

// Logger gates and writes the per-iteration log. The zero value discards
// everything; callers that want the spec's "Iter Sing fk..." table set
// Level to LogIter and Out to a writer.
type Logger struct {
	Level LogLevel
	Out   io.Writer
}

// LogLevel controls how much of the iteration trace is emitted.
type LogLevel int

const (
	// LogNoop suppresses all output.
	LogNoop LogLevel = iota
	// LogHeader prints only the banner shown at the start of each Solve.
	LogHeader
	// LogIter prints the per-iteration table.
	LogIter
)

func (l *Logger) enabled(level LogLevel) bool {
	return l != nil && l.Out != nil && l.Level >= level
}

func (l *Logger) banner(nx, na int) {
	if !l.enabled(LogHeader) {
		return
	}
	fmt.Fprintln(l.Out, "-------------------------------------------")
	fmt.Fprintln(l.Out, "This is qpas.Solver (active-set QP core).")
	fmt.Fprintf(l.Out, "Number of variables:   %9d\n", nx)
	fmt.Fprintf(l.Out, "Number of constraints: %9d\n", na)
}

func (l *Logger) header() {
	if !l.enabled(LogIter) {
		return
	}
	fmt.Fprintf(l.Out, "%5s %5s %9s %9s %5s %9s %5s %9s %5s %9s %40s\n",
		"Iter", "Sing", "fk", "|pr|", "con", "|du|", "var", "min_R", "con", "last_tau", "Note")
}

func (l *Logger) row(iter, sing int, f, pr float64, ipr int, du float64, idu int,
	minR float64, imina int, tau float64, note string) {
	if !l.enabled(LogIter) {
		return
	}
	fmt.Fprintf(l.Out, "%5d %5d %9.2g %9.2g %5d %9.2g %5d %9.2g %5d %9.2g %40s\n",
		iter, sing, f, pr, ipr, du, idu, minR, imina, tau, note)
}
