package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pravnik0/pravnik/internal/testutil"
)

func TestRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"quota", errors.New("Quota Exceeded for project"), true},
		{"http 429", errors.New("googleapi: Error 429: too many requests"), true},
		{"http 500", errors.New("server error 500"), true},
		{"http 503", errors.New("503 Service Unavailable"), true},
		{"unavailable", errors.New("service temporarily unavailable"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"timeout", errors.New("context deadline exceeded (timeout)"), true},
		{"invalid argument", errors.New("invalid argument: bad prompt"), false},
		{"auth failure", errors.New("401 unauthorized"), false},
		{"empty response", ErrEmptyResponse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func testGenerator(t *testing.T, retry RetryConfig) *GenkitGenerator {
	t.Helper()
	return &GenkitGenerator{
		cfg:    Config{Retry: retry},
		logger: testutil.QuietLogger(),
	}
}

func TestExecuteWithRetryEventualSuccess(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})

	calls := 0
	got, err := g.executeWithRetry(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("503 service unavailable")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("executeWithRetry() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("text = %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestExecuteWithRetryNonRetryableStopsImmediately(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})

	calls := 0
	_, err := g.executeWithRetry(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", errors.New("invalid argument")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent errors)", calls)
	}
}

func TestExecuteWithRetryExhaustsBudget(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, RetryConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})

	calls := 0
	_, err := g.executeWithRetry(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", errors.New("429 rate limit")
	})
	if err == nil {
		t.Fatal("expected error after retry budget is spent")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should wrap the last failure, got %v", err)
	}
}

func TestExecuteWithRetryHonorsContextCancel(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, RetryConfig{
		MaxRetries:      5,
		InitialInterval: time.Hour,
		MaxInterval:     time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := g.executeWithRetry(ctx, func(context.Context) (string, error) {
			return "", errors.New("503 unavailable")
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected context cancellation error")
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want wrapped context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("executeWithRetry did not observe cancellation")
	}
}
