// Package builder runs the parser project's build step.
package builder

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Config describes the external build command.
type Config struct {
	Command string
	Args    []string
	Dir     string    // working directory, empty for the current one
	Verbose bool      // stream build output to Output instead of discarding it
	Output  io.Writer // destination for verbose build output
}

// Run executes the build command and reports a binary outcome. Build output
// is discarded unless verbose; only success or failure is observed. A failed
// build is an unrecoverable precondition, never retried.
func Run(ctx context.Context, config *Config) error {
	if config.Command == "" {
		return fmt.Errorf("build command not configured")
	}

	cmd := exec.CommandContext(ctx, config.Command, config.Args...)
	cmd.Dir = config.Dir
	if config.Verbose && config.Output != nil {
		cmd.Stdout = config.Output
		cmd.Stderr = config.Output
	}

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("build command %q failed: %w", config.Command, err)
		}
		return fmt.Errorf("failed to start build command %q: %w", config.Command, err)
	}
	return nil
}
