// Package report aggregates per-fixture outcomes into the run log and the
// final exit status.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/zinc-sig/fixgen/internal/discover"
	"github.com/zinc-sig/fixgen/internal/output"
	"github.com/zinc-sig/fixgen/internal/runner"
)

// State tracks the run through its lifecycle. BuildFailed and Completed are
// terminal.
type State string

const (
	StateNotStarted  State = "not_started"
	StateBuildFailed State = "build_failed"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
)

const bannerWidth = 50

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// Aggregator consumes outcomes in discovery order and produces the run log
// and summary. Lines are written as outcomes arrive so the log is diffable
// across runs over an unchanged tree.
type Aggregator struct {
	w        io.Writer
	colorize bool
	state    State
	success  int
	failed   int
	files    []output.FileResult
	start    time.Time
}

// New creates an Aggregator writing to w. Status glyphs are colored only when
// w is a terminal.
func New(w io.Writer) *Aggregator {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Aggregator{
		w:        w,
		colorize: colorize,
		state:    StateNotStarted,
		start:    time.Now(),
	}
}

// State returns the aggregator's current lifecycle state.
func (a *Aggregator) State() State { return a.state }

func (a *Aggregator) paint(c *color.Color, s string) string {
	if !a.colorize {
		return s
	}
	return c.Sprint(s)
}

// Banner prints the framed run header.
func (a *Aggregator) Banner(title string) {
	line := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(a.w, line)
	fmt.Fprintln(a.w, title)
	fmt.Fprintln(a.w, line)
	fmt.Fprintln(a.w)
}

// BuildStarted announces the build step.
func (a *Aggregator) BuildStarted() {
	fmt.Fprintln(a.w, "Step 1: Building parser...")
}

// BuildSucceeded reports a successful build.
func (a *Aggregator) BuildSucceeded() {
	fmt.Fprintf(a.w, "%s Build complete\n\n", a.paint(green, "✓"))
}

// BuildFailed reports a failed build and moves the run into its terminal
// BuildFailed state. No fixtures are processed after this.
func (a *Aggregator) BuildFailed(err error) {
	a.state = StateBuildFailed
	fmt.Fprintf(a.w, "%s Build failed: %v\n", a.paint(red, "✗"), err)
}

// Discovered reports the number of test files found and starts the run.
func (a *Aggregator) Discovered(n int) {
	a.state = StateRunning
	fmt.Fprintf(a.w, "Step 2: Found %d test files\n\n", n)
}

// Record consumes the outcome for one pair, printing the per-file status
// lines and updating the counts. Outcomes must arrive in discovery order.
func (a *Aggregator) Record(pair discover.Pair, outcome runner.Outcome) {
	fmt.Fprintf(a.w, "Processing: %s\n", pair.Input)

	result := output.FileResult{
		Input:         pair.Input,
		ExecutionTime: outcome.ExecutionTime,
	}
	if outcome.Failed() {
		a.failed++
		result.Status = output.FileFailure
		result.Error = outcome.Message
		fmt.Fprintf(a.w, "  %s Failed to parse\n", a.paint(red, "✗"))
		if outcome.Message != "" {
			fmt.Fprintf(a.w, "    Error: %s\n", outcome.Message)
		}
	} else {
		a.success++
		result.Status = output.FileSuccess
		result.Artifact = pair.Output
		fmt.Fprintf(a.w, "  %s Generated: %s\n", a.paint(green, "✓"), pair.Output)
	}
	fmt.Fprintln(a.w)

	a.files = append(a.files, result)
}

// UploadError reports a failed artifact upload. Uploads are a side channel
// and never change the exit status.
func (a *Aggregator) UploadError(artifact string, err error) {
	fmt.Fprintf(a.w, "[UPLOAD] Error uploading %s: %v\n", artifact, err)
}

// Finish prints the summary block, completes the run, and returns the final
// summary.
func (a *Aggregator) Finish() *output.Summary {
	if a.state == StateRunning {
		a.state = StateCompleted
		line := strings.Repeat("=", bannerWidth)
		fmt.Fprintln(a.w, line)
		fmt.Fprintln(a.w, "Summary:")
		fmt.Fprintf(a.w, "  Success: %d\n", a.success)
		fmt.Fprintf(a.w, "  Failed:  %d\n", a.failed)
		fmt.Fprintln(a.w, line)
		if a.failed == 0 {
			fmt.Fprintf(a.w, "\nAll fixtures regenerated successfully! %s\n", a.paint(green, "✓"))
		}
	}
	return a.Summary()
}

// Summary snapshots the run result. Valid in any state; the status reflects
// whether the run completed or died in the build step.
func (a *Aggregator) Summary() *output.Summary {
	status := output.StatusCompleted
	if a.state == StateBuildFailed {
		status = output.StatusBuildFailed
	}
	return &output.Summary{
		Status:        status,
		Success:       a.success,
		Failed:        a.failed,
		Files:         a.files,
		ExecutionTime: time.Since(a.start).Milliseconds(),
	}
}
