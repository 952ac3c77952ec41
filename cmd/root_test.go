package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir is t.Chdir from Go 1.24, reimplemented for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore wd: %v", err)
		}
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func resetFlags(t *testing.T) {
	t.Helper()
	configPath, rootDir, timeoutStr = "", "", ""
	verbose, jsonOut = false, false
}

func TestRootCommandSuccess(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fixtures", "x.td"), "node {}\n")
	writeFile(t, filepath.Join(dir, "fixgen.yaml"), `
root: `+filepath.Join(dir, "fixtures")+`
build:
  command: "true"
parser:
  command: sh
  args: ["-c", "cat > /dev/null; echo '{}'"]
`)

	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "fixgen.yaml")})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "fixtures", "x.ast.json")); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}

func TestRootCommandParseFailure(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fixtures", "x.td"), "node {}\n")
	writeFile(t, filepath.Join(dir, "fixgen.yaml"), `
root: `+filepath.Join(dir, "fixtures")+`
parser:
  command: sh
  args: ["-c", "echo nope >&2; exit 1"]
`)

	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "fixgen.yaml")})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error when a fixture fails to parse")
	}
}

func TestRootCommandMissingParserCommand(t *testing.T) {
	resetFlags(t)
	chdir(t, t.TempDir())

	rootCmd.SetArgs([]string{})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected validation error without a parser command")
	}
}
