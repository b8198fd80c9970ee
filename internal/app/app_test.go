package app

import (
	"context"
	"strings"
	"testing"

	"github.com/pravnik0/pravnik/internal/config"
	"github.com/pravnik0/pravnik/internal/testutil"
)

func TestSetupInMemory(t *testing.T) {
	cfg := config.Default()

	a, err := Setup(context.Background(), cfg, testutil.QuietLogger())
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer a.Close()

	if a.Genkit == nil {
		t.Error("Genkit not initialized")
	}
	if a.Pool != nil {
		t.Error("no database configured, pool should be nil")
	}
	if a.Index == nil || a.Store == nil || a.Pipeline == nil {
		t.Fatal("pipeline components not wired")
	}
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TopK = 0

	if _, err := Setup(context.Background(), cfg, testutil.QuietLogger()); err == nil {
		t.Error("Setup() should fail validation for top_k = 0")
	}
}

// Without an API key the model is unreachable; a full turn must still
// produce an answer through the fallback table.
func TestSetupDegradedTurn(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := config.Default()

	a, err := Setup(context.Background(), cfg, testutil.QuietLogger())
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer a.Close()

	resp, err := a.Pipeline.GenerateResponse(context.Background(),
		"", "How many days of annual leave am I entitled to?")
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if resp.Text == "" {
		t.Fatal("degraded turn must still answer")
	}
	if !strings.Contains(resp.Text, "20 working days") {
		t.Errorf("fallback table should cover annual leave, got %q", resp.Text)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("fallback answers carry no sources, got %v", resp.Sources)
	}
}

func TestCloseOnPartialApp(t *testing.T) {
	a := &App{}
	a.Close()
}
