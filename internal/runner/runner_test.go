package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zinc-sig/fixgen/internal/discover"
)

func createFixture(t *testing.T, dir, name, content string) discover.Pair {
	t.Helper()
	input := filepath.Join(dir, name)
	if err := os.WriteFile(input, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	return discover.Pair{Input: input, Output: discover.OutputPath(input)}
}

func readArtifact(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read artifact %s: %v", path, err)
	}
	return string(content)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name            string
		config          *Config
		wantStatus      Status
		messageContains string
		wantArtifact    string
	}{
		{
			name: "successful parse writes canonical artifact",
			config: &Config{
				Command: "sh",
				Args:    []string{"-c", `cat > /dev/null; echo '{"b":1,"a":2}'`},
			},
			wantStatus:   StatusSuccess,
			wantArtifact: "{\n  \"a\": 2,\n  \"b\": 1\n}\n",
		},
		{
			name: "parser error captured from stderr",
			config: &Config{
				Command: "sh",
				Args:    []string{"-c", `echo "Unexpected token at line 4" >&2; exit 1`},
			},
			wantStatus:      StatusFailure,
			messageContains: "Unexpected token at line 4",
		},
		{
			name: "parser failure with silent stderr",
			config: &Config{
				Command: "sh",
				Args:    []string{"-c", "exit 3"},
			},
			wantStatus:      StatusFailure,
			messageContains: "exit status 3",
		},
		{
			name: "launch failure",
			config: &Config{
				Command: "definitely-not-a-real-parser-xyz",
			},
			wantStatus:      StatusFailure,
			messageContains: "failed to launch parser",
		},
		{
			name: "non-JSON parser output",
			config: &Config{
				Command: "sh",
				Args:    []string{"-c", "cat > /dev/null; echo not json"},
			},
			wantStatus:      StatusFailure,
			messageContains: "invalid AST JSON",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair := createFixture(t, t.TempDir(), "input.td", "node {}\n")

			outcome := New(tt.config).Parse(context.Background(), pair)

			if outcome.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s (message: %q)", outcome.Status, tt.wantStatus, outcome.Message)
			}
			if tt.messageContains != "" && !strings.Contains(outcome.Message, tt.messageContains) {
				t.Errorf("message %q does not contain %q", outcome.Message, tt.messageContains)
			}

			_, statErr := os.Stat(pair.Output)
			if tt.wantStatus == StatusSuccess {
				if statErr != nil {
					t.Fatalf("artifact not written: %v", statErr)
				}
				if got := readArtifact(t, pair.Output); got != tt.wantArtifact {
					t.Errorf("artifact mismatch\ngot:  %q\nwant: %q", got, tt.wantArtifact)
				}
				if outcome.Message != "" {
					t.Errorf("success must carry no message, got %q", outcome.Message)
				}
			} else if statErr == nil {
				t.Error("artifact must not be written on failure")
			}
		})
	}
}

func TestParseMissingInput(t *testing.T) {
	pair := discover.Pair{
		Input:  filepath.Join(t.TempDir(), "missing.td"),
		Output: filepath.Join(t.TempDir(), "missing.ast.json"),
	}
	outcome := New(&Config{Command: "cat"}).Parse(context.Background(), pair)
	if !outcome.Failed() {
		t.Fatal("expected failure for missing input file")
	}
	if !strings.Contains(outcome.Message, "failed to open input") {
		t.Errorf("unexpected message: %q", outcome.Message)
	}
}

func TestParseTimeout(t *testing.T) {
	pair := createFixture(t, t.TempDir(), "input.td", "node {}\n")

	r := New(&Config{
		Command: "sleep",
		Args:    []string{"10"},
		Timeout: 100 * time.Millisecond,
	})

	start := time.Now()
	outcome := r.Parse(context.Background(), pair)
	elapsed := time.Since(start)

	if !outcome.Failed() {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(outcome.Message, "timed out") {
		t.Errorf("unexpected message: %q", outcome.Message)
	}
	if elapsed > 5*time.Second {
		t.Errorf("timeout did not interrupt the parser, took %v", elapsed)
	}
	if _, err := os.Stat(pair.Output); err == nil {
		t.Error("artifact must not be written on timeout")
	}
}

func TestParseFailurePreservesExistingArtifact(t *testing.T) {
	pair := createFixture(t, t.TempDir(), "input.td", "node {}\n")
	previous := "{\n  \"kind\": \"Baseline\"\n}\n"
	if err := os.WriteFile(pair.Output, []byte(previous), 0o644); err != nil {
		t.Fatalf("failed to seed artifact: %v", err)
	}

	r := New(&Config{
		Command: "sh",
		Args:    []string{"-c", `echo "boom" >&2; exit 1`},
	})
	if outcome := r.Parse(context.Background(), pair); !outcome.Failed() {
		t.Fatal("expected failure")
	}

	if got := readArtifact(t, pair.Output); got != previous {
		t.Errorf("failed parse must not touch the previous artifact\ngot:  %q\nwant: %q", got, previous)
	}
}

func TestParseLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	pair := createFixture(t, dir, "input.td", "node {}\n")

	r := New(&Config{
		Command: "sh",
		Args:    []string{"-c", `cat > /dev/null; echo '{"ok":true}'`},
	})
	if outcome := r.Parse(context.Background(), pair); outcome.Failed() {
		t.Fatalf("unexpected failure: %s", outcome.Message)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestParseVerboseStreamsStderr(t *testing.T) {
	pair := createFixture(t, t.TempDir(), "input.td", "node {}\n")

	var log bytes.Buffer
	r := New(&Config{
		Command: "sh",
		Args:    []string{"-c", `cat > /dev/null; echo "parsing 1 node" >&2; echo '{"ok":true}'`},
		Verbose: true,
		Log:     &log,
	})

	if outcome := r.Parse(context.Background(), pair); outcome.Failed() {
		t.Fatalf("unexpected failure: %s", outcome.Message)
	}
	if !strings.Contains(log.String(), "parsing 1 node") {
		t.Errorf("verbose run must stream parser stderr, log: %q", log.String())
	}
}

func TestParseQuietDropsStderr(t *testing.T) {
	pair := createFixture(t, t.TempDir(), "input.td", "node {}\n")

	var log bytes.Buffer
	r := New(&Config{
		Command: "sh",
		Args:    []string{"-c", `cat > /dev/null; echo "parsing 1 node" >&2; echo '{"ok":true}'`},
		Log:     &log,
	})

	if outcome := r.Parse(context.Background(), pair); outcome.Failed() {
		t.Fatalf("unexpected failure: %s", outcome.Message)
	}
	if log.Len() != 0 {
		t.Errorf("quiet run must not stream parser stderr, log: %q", log.String())
	}
}

func TestParseVerboseStillCapturesError(t *testing.T) {
	pair := createFixture(t, t.TempDir(), "input.td", "node {}\n")

	var log bytes.Buffer
	r := New(&Config{
		Command: "sh",
		Args:    []string{"-c", `echo "Unexpected token at line 4" >&2; exit 1`},
		Verbose: true,
		Log:     &log,
	})

	outcome := r.Parse(context.Background(), pair)
	if !outcome.Failed() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(outcome.Message, "Unexpected token at line 4") {
		t.Errorf("error capture must survive verbose streaming, got %q", outcome.Message)
	}
	if !strings.Contains(log.String(), "Unexpected token at line 4") {
		t.Errorf("verbose run must also stream the error, log: %q", log.String())
	}
}

func TestParseIdempotent(t *testing.T) {
	pair := createFixture(t, t.TempDir(), "input.td", "node {}\n")

	r := New(&Config{
		Command: "sh",
		Args:    []string{"-c", `cat > /dev/null; echo '{"b":[1,2],"a":"x"}'`},
	})

	if outcome := r.Parse(context.Background(), pair); outcome.Failed() {
		t.Fatalf("first run failed: %s", outcome.Message)
	}
	first := readArtifact(t, pair.Output)

	if outcome := r.Parse(context.Background(), pair); outcome.Failed() {
		t.Fatalf("second run failed: %s", outcome.Message)
	}
	if second := readArtifact(t, pair.Output); second != first {
		t.Errorf("repeated runs produced different artifacts\nfirst:  %q\nsecond: %q", first, second)
	}
}
