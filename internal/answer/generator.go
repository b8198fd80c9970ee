// Package answer wraps the external model call and its degradation policy.
//
// GenkitGenerator guards the call with a rate limiter, retry with
// exponential backoff, and a circuit breaker. Fallback supplies the
// two-tier degraded answer: a keyword-matched canned response when the
// query is recognized, a generic apology otherwise. The orchestrator
// decides when to fall back; this package never fabricates content on
// its own.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrEmptyResponse indicates the model returned no usable text.
var ErrEmptyResponse = errors.New("model returned empty response")

// Generator produces an answer for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config configures a GenkitGenerator.
type Config struct {
	// ModelName is the provider-qualified model, e.g. "googleai/gemini-2.5-flash".
	ModelName string

	// Temperature and MaxTokens are passed through to the model.
	Temperature float32
	MaxTokens   int

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration

	// Retry and Breaker tune the guard rails; zero values select defaults.
	Retry   RetryConfig
	Breaker CircuitBreakerConfig

	// RateLimit throttles outbound calls. Zero disables throttling.
	RateLimit rate.Limit
	RateBurst int
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Retry == (RetryConfig{}) {
		c.Retry = DefaultRetryConfig()
	}
	if c.Breaker == (CircuitBreakerConfig{}) {
		c.Breaker = DefaultCircuitBreakerConfig()
	}
}

// GenkitGenerator calls the configured model through Genkit.
type GenkitGenerator struct {
	g       *genkit.Genkit
	cfg     Config
	limiter *rate.Limiter
	breaker *CircuitBreaker
	logger  *slog.Logger
}

// NewGenkitGenerator creates a generator over an initialized Genkit
// instance.
func NewGenkitGenerator(g *genkit.Genkit, cfg Config, logger *slog.Logger) (*GenkitGenerator, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}

	return &GenkitGenerator{
		g:       g,
		cfg:     cfg,
		limiter: limiter,
		breaker: NewCircuitBreaker(cfg.Breaker),
		logger:  logger,
	}, nil
}

// Generate implements Generator. The call is bounded by the configured
// timeout; a timeout is reported like any other generation failure so the
// caller takes the fallback path.
func (g *GenkitGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.breaker.Allow(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.executeWithRetry(ctx, func(ctx context.Context) (string, error) {
		temp := g.cfg.Temperature
		genCfg := &genai.GenerateContentConfig{Temperature: &temp}
		if g.cfg.MaxTokens > 0 {
			genCfg.MaxOutputTokens = int32(g.cfg.MaxTokens) //nolint:gosec // validated small
		}

		resp, err := genkit.Generate(ctx, g.g,
			ai.WithModelName(g.cfg.ModelName),
			ai.WithPrompt(prompt),
			ai.WithConfig(genCfg),
		)
		if err != nil {
			return "", err
		}
		out := resp.Text()
		if out == "" {
			return "", ErrEmptyResponse
		}
		return out, nil
	})
	if err != nil {
		g.breaker.Failure()
		return "", err
	}

	g.breaker.Success()
	return text, nil
}

// BreakerState exposes the circuit state for health reporting.
func (g *GenkitGenerator) BreakerState() CircuitState {
	return g.breaker.State()
}
