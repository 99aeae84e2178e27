// Package ui writes human-facing progress lines to stderr and renders
// palace tables for terminal display. Machine output goes to stdout
// elsewhere; nothing here is meant to be parsed.
package ui

import (
	"fmt"
	"os"
	"time"
)

// ANSI color codes.
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	yellow  = "\033[33m"
	green   = "\033[32m"
	red     = "\033[31m"
	cyan    = "\033[36m"
	magenta = "\033[35m"
)

// Printer writes progress lines to stderr. It satisfies report.Progress.
type Printer struct{}

// New returns a Printer.
func New() *Printer {
	return &Printer{}
}

// RunStart prints the run header.
func (p *Printer) RunStart(runID, baseDate string, futureCount int) {
	fmt.Fprintf(os.Stderr, bold+magenta+"── report %s ──"+reset+"\n", runID)
	fmt.Fprintf(os.Stderr, dim+"base date %s, %d future date(s)"+reset+"\n", baseDate, futureCount)
}

// ChartLoaded reports the natal chart.
func (p *Printer) ChartLoaded(palaces int) {
	fmt.Fprintf(os.Stderr, cyan+"◆ chart"+reset+dim+" %d palace(s)"+reset+"\n", palaces)
}

// SnapshotDone marks one date as assembled.
func (p *Printer) SnapshotDone(date string) {
	fmt.Fprintf(os.Stderr, green+"✓ %s"+reset+"\n", date)
}

// SnapshotFailed marks one date as failed.
func (p *Printer) SnapshotFailed(date string, err error) {
	fmt.Fprintf(os.Stderr, red+"✗ %s"+reset+" — %v\n", date, err)
}

// RunDone summarizes a finished run. Isolated failures are shown in yellow.
func (p *Printer) RunDone(elapsed time.Duration, failures int) {
	if failures > 0 {
		fmt.Fprintf(os.Stderr, yellow+bold+"⚠ done with %d failed date(s)"+reset+dim+" (%.1fs)"+reset+"\n", failures, elapsed.Seconds())
		return
	}
	fmt.Fprintf(os.Stderr, green+bold+"✓ done"+reset+dim+" (%.1fs)"+reset+"\n", elapsed.Seconds())
}

// Saved reports a document written to history.
func (p *Printer) Saved(id, path string) {
	fmt.Fprintf(os.Stderr, cyan+"◆ saved"+reset+" %s "+dim+"(%s)"+reset+"\n", id, path)
}

// Watching announces watch mode.
func (p *Printer) Watching(path string) {
	fmt.Fprintf(os.Stderr, bold+cyan+"watching %s"+reset+dim+" (ctrl-c to stop)"+reset+"\n", path)
}

// InputChanged announces a rerun after the input file changed.
func (p *Printer) InputChanged(path string) {
	fmt.Fprintf(os.Stderr, "\n"+yellow+"↻ %s changed"+reset+"\n", path)
}

// Error prints a non-fatal error.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(os.Stderr, red+bold+"error: "+reset+"%s\n", msg)
}

// Info prints a dim informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintf(os.Stderr, dim+"%s"+reset+"\n", msg)
}

// ValidateResult prints the outcome of checking one prerequisite.
func (p *Printer) ValidateResult(name string, err error) {
	if err == nil {
		fmt.Fprintf(os.Stderr, green+bold+"✓ %s"+reset+"\n", name)
		return
	}
	fmt.Fprintf(os.Stderr, red+bold+"✗ %s"+reset+" — %v\n", name, err)
}
