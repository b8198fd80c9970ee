package cmd

import (
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs fn and returns everything it printed to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	if err := w.Close(); err != nil {
		t.Fatalf("closing pipe: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured output: %v", err)
	}
	return string(out)
}

func TestHelpListsCommands(t *testing.T) {
	out := captureStdout(t, runHelp)

	for _, want := range []string{"cli", "ask", "serve", "mcp", "ingest"} {
		if !strings.Contains(out, "pravnik "+want) {
			t.Errorf("help output missing command %q", want)
		}
	}
}

func TestHelpNamesActualEnvVars(t *testing.T) {
	out := captureStdout(t, runHelp)

	// The config layer binds these exact names; the help text must match.
	for _, want := range []string{"GEMINI_API_KEY", "DATABASE_URL"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing env var %q", want)
		}
	}
	if strings.Contains(out, "PRAVNIK_DATABASE_URL") {
		t.Error("help output names PRAVNIK_DATABASE_URL, but config binds DATABASE_URL")
	}
}

func TestVersionOutput(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	out := captureStdout(t, runVersion)
	if !strings.Contains(out, "Pravnik "+Version) {
		t.Errorf("version output = %q", out)
	}
	if !strings.Contains(out, "not set") {
		t.Errorf("version output should note the missing API key, got %q", out)
	}
}
