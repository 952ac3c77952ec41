package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/fixgen/internal/config"
	"github.com/zinc-sig/fixgen/internal/output"
	"github.com/zinc-sig/fixgen/internal/regen"
)

var (
	configPath string
	rootDir    string
	verbose    bool
	jsonOut    bool
	timeoutStr string
)

var rootCmd = &cobra.Command{
	Use:   "fixgen",
	Short: "Regenerate golden AST fixtures from test-definition files",
	Long: `Fixgen rebuilds the parser, finds every test-definition file under the
fixtures root, parses each one in an isolated subprocess, and writes the
canonical serialized AST next to it as a golden baseline.

A bare invocation runs the whole regeneration using fixgen.yaml (if present),
FIXGEN_* environment variables, and built-in defaults. The exit code is 0
only when the build succeeds and every discovered file parses.`,
	SilenceUsage: true,
	RunE:         run,
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	// Flag overrides beat file and environment.
	if rootDir != "" {
		cfg.Root = rootDir
	}
	if timeoutStr != "" {
		cfg.Parser.Timeout = timeoutStr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	summary, err := regen.Run(cmd.Context(), &regen.Options{
		Config:  cfg,
		Verbose: verbose,
		Log:     os.Stderr,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON summary: %w", err)
		}
		fmt.Println(string(data))
	}

	if summary.ExitCode() != 0 {
		if summary.Status == output.StatusBuildFailed {
			return fmt.Errorf("build failed")
		}
		return fmt.Errorf("%d of %d fixtures failed to parse",
			summary.Failed, summary.Success+summary.Failed)
	}
	return nil
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default fixgen.yaml if present)")
	rootCmd.Flags().StringVarP(&rootDir, "root", "r", "", "Fixtures root directory (overrides config)")
	rootCmd.Flags().StringVarP(&timeoutStr, "timeout", "t", "", "Per-file parser timeout (e.g. 30s, 2m)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Stream build and parser output to the terminal")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON on stdout")
}
