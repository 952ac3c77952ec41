// Package runner parses a single fixture through the external parser in an
// isolated subprocess and writes its canonical artifact.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/zinc-sig/fixgen/internal/astjson"
	"github.com/zinc-sig/fixgen/internal/discover"
)

// Status is the terminal state of one parse invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Config describes the external parser command. The parser receives the
// fixture source on stdin and is expected to print the serialized AST on
// stdout and exit 0, or print a human-readable message on stderr and exit
// non-zero.
type Config struct {
	Command string
	Args    []string
	Timeout time.Duration // per-file; 0 disables the timeout
	Verbose bool          // stream parser stderr to Log as well as capturing it
	Log     io.Writer     // destination for verbose parser stderr
}

// Outcome is the immutable result of one parse invocation.
type Outcome struct {
	Status        Status
	Message       string // failure detail, empty on success
	ExecutionTime int64  // milliseconds
}

// Failed reports whether the invocation ended in failure.
func (o Outcome) Failed() bool { return o.Status == StatusFailure }

// Runner executes parse invocations with a shared parser configuration.
type Runner struct {
	config *Config
}

// New creates a Runner for the given parser configuration.
func New(config *Config) *Runner {
	return &Runner{config: config}
}

// Parse runs one fixture through a freshly launched parser process. Every
// failure mode is captured in the Outcome rather than returned, so a crash,
// hang, or malformed input affects only this file and the caller continues
// with the rest of the run. The artifact is written on success only; on any
// failure the previous artifact, if one exists, is left untouched.
func (r *Runner) Parse(ctx context.Context, pair discover.Pair) Outcome {
	start := time.Now()
	done := func(status Status, message string) Outcome {
		return Outcome{
			Status:        status,
			Message:       message,
			ExecutionTime: time.Since(start).Milliseconds(),
		}
	}

	input, err := os.Open(pair.Input)
	if err != nil {
		return done(StatusFailure, fmt.Sprintf("failed to open input: %v", err))
	}
	defer func() { _ = input.Close() }()

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.config.Command, r.config.Args...)
	cmd.Stdin = input
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.config.Verbose && r.config.Log != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.config.Log)
	}

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return done(StatusFailure, fmt.Sprintf("parser timed out after %s", r.config.Timeout))
		}
		if _, ok := err.(*exec.ExitError); ok {
			message := strings.TrimSpace(stderr.String())
			if message == "" {
				message = err.Error()
			}
			return done(StatusFailure, message)
		}
		return done(StatusFailure, fmt.Sprintf("failed to launch parser: %v", err))
	}

	artifact, err := astjson.Canonical(stdout.Bytes())
	if err != nil {
		return done(StatusFailure, err.Error())
	}
	if err := writeAtomic(pair.Output, artifact); err != nil {
		return done(StatusFailure, fmt.Sprintf("failed to write artifact: %v", err))
	}
	return done(StatusSuccess, "")
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it into place, so a partial write never replaces an existing
// artifact with a truncated one.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
