// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.pravnik/config.yaml or ./config.yaml)
//  3. Default values
//
// Sensitive values (database password embedded in the URL) are masked in
// MarshalJSON. Validation is fail-fast: Load returns an error rather than
// letting a misconfigured process start.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidEmbedder indicates an unsupported embedder selection.
	ErrInvalidEmbedder = errors.New("invalid embedder")

	// ErrInvalidDimension indicates a non-positive embedding dimension.
	ErrInvalidDimension = errors.New("invalid embedding dimension")

	// ErrInvalidTopK indicates retrieval top_k is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top_k")

	// ErrInvalidHistoryLimit indicates the prompt history limit is out of range.
	ErrInvalidHistoryLimit = errors.New("invalid history limit")

	// ErrMissingApology indicates the generic fallback answer is empty.
	ErrMissingApology = errors.New("missing fallback apology text")

	// ErrInvalidServerPort indicates the HTTP port is out of range.
	ErrInvalidServerPort = errors.New("invalid server port")

	// ErrInvalidDatabaseURL indicates the database URL cannot be parsed.
	ErrInvalidDatabaseURL = errors.New("invalid database URL")
)

// Embedder selections for Config.Embedder.
const (
	EmbedderHash   = "hash"
	EmbedderGemini = "gemini"
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderGoogleAI = "googleai"
)

// DefaultEmbedderModel is the Gemini embedding model used in production.
// gemini-embedding-001 emits 3072 dimensions by default but supports
// truncation to 768 via OutputDimensionality; the vector schema and the
// hash embedder both use 768.
const DefaultEmbedderModel = "gemini-embedding-001"

// FallbackAnswer is one entry of the keyword fallback table. When the
// generator is unavailable and the query contains any of Keywords
// (case-insensitive), Answer is served instead of the generic apology.
type FallbackAnswer struct {
	Keywords []string `mapstructure:"keywords" json:"keywords"`
	Answer   string   `mapstructure:"answer" json:"answer"`
}

// Config stores application configuration.
type Config struct {
	// AI provider and model configuration
	Provider    string  `mapstructure:"provider" json:"provider"`
	ModelName   string  `mapstructure:"model_name" json:"model_name"`
	Temperature float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`

	// Embedding configuration. Embedder selects the implementation
	// ("hash" for the deterministic local embedder, "gemini" for the
	// hosted model); both emit Dimension-length vectors.
	Embedder      string `mapstructure:"embedder" json:"embedder"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`
	Dimension     int    `mapstructure:"dimension" json:"dimension"`

	// Retrieval configuration
	TopK         int `mapstructure:"top_k" json:"top_k"`
	SourceLimit  int `mapstructure:"source_limit" json:"source_limit"`
	HistoryLimit int `mapstructure:"history_limit" json:"history_limit"`

	// Generation bounds
	GenerateTimeoutSeconds int `mapstructure:"generate_timeout_seconds" json:"generate_timeout_seconds"`

	// Fallback configuration. The keyword table is configuration rather
	// than code so deployments can extend coverage without a rebuild.
	Apology         string           `mapstructure:"apology" json:"apology"`
	FallbackAnswers []FallbackAnswer `mapstructure:"fallback_answers" json:"fallback_answers"`

	// HTTP server configuration (serve mode only)
	ServerHost  string   `mapstructure:"server_host" json:"server_host"`
	ServerPort  int      `mapstructure:"server_port" json:"server_port"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`
	RatePerSec  float64  `mapstructure:"rate_per_sec" json:"rate_per_sec"`
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`

	// Optional Postgres persistence. Empty keeps the in-memory stores.
	// SENSITIVE: masked in MarshalJSON (may embed a password).
	DatabaseURL string `mapstructure:"database_url" json:"database_url"`

	// Ingest configuration (ingest mode only)
	IngestAllowedDomains []string `mapstructure:"ingest_allowed_domains" json:"ingest_allowed_domains"`
	IngestParallelism    int      `mapstructure:"ingest_parallelism" json:"ingest_parallelism"`
	IngestDelayMS        int      `mapstructure:"ingest_delay_ms" json:"ingest_delay_ms"`

	// Observability (disabled unless the endpoint is set)
	OTLPEndpoint string `mapstructure:"otlp_endpoint" json:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name" json:"service_name"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".pravnik")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a validated configuration built purely from defaults.
// Used by tests and by embedded callers that bypass the filesystem.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Hardcoded defaults cannot fail to unmarshal.
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("BUG: default config unmarshal: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	// AI defaults
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("temperature", 0.3)
	v.SetDefault("max_tokens", 2048)

	// Embedding defaults: deterministic local embedder unless a hosted
	// model is explicitly configured.
	v.SetDefault("embedder", EmbedderHash)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("dimension", 768)

	// Retrieval defaults
	v.SetDefault("top_k", 5)
	v.SetDefault("source_limit", 3)
	v.SetDefault("history_limit", 10)

	v.SetDefault("generate_timeout_seconds", 30)

	// Fallback defaults. The annual-leave entry mirrors the most common
	// question the assistant receives and carries its own citation.
	v.SetDefault("apology",
		"I apologize, the service is temporarily unavailable. Please try again in a few moments.")
	v.SetDefault("fallback_answers", []map[string]any{
		{
			"keywords": []string{"annual leave", "vacation days", "godisnji odmor"},
			"answer": "Under the Labor Law, every employee is entitled to annual leave " +
				"of at least 20 working days in each calendar year " +
				"(Labor Law, Article 68, https://www.paragraf.rs/propisi/zakon_o_radu.html#cl68).",
		},
	})

	// Server defaults
	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_port", 8080)
	v.SetDefault("cors_origins", []string{"http://localhost:4200"})
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_per_sec", 10.0)
	v.SetDefault("rate_burst", 30)

	// Ingest defaults
	v.SetDefault("ingest_allowed_domains", []string{"www.paragraf.rs"})
	v.SetDefault("ingest_parallelism", 2)
	v.SetDefault("ingest_delay_ms", 1000)

	// Observability defaults (disabled)
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("service_name", "pravnik")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds runtime override variables explicitly.
// GEMINI_API_KEY is read directly by Genkit, not via viper; its presence is
// checked at setup time when a hosted provider is selected.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "PRAVNIK_PROVIDER")
	mustBind("model_name", "PRAVNIK_MODEL_NAME")
	mustBind("embedder", "PRAVNIK_EMBEDDER")
	mustBind("database_url", "DATABASE_URL")
	mustBind("cors_origins", "PRAVNIK_CORS_ORIGINS")
	mustBind("trust_proxy", "PRAVNIK_TRUST_PROXY")
	mustBind("otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	mustBind("log_level", "PRAVNIK_LOG_LEVEL")
}

// Validate checks configuration invariants. Called by Load; callers that
// build a Config by hand should call it themselves before use.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	switch c.Provider {
	case ProviderGemini, ProviderGoogleAI:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProvider, c.Provider)
	}
	if strings.TrimSpace(c.ModelName) == "" {
		return ErrInvalidModelName
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v (want 0..2)", ErrInvalidTemperature, c.Temperature)
	}
	switch c.Embedder {
	case EmbedderHash, EmbedderGemini:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEmbedder, c.Embedder)
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, c.Dimension)
	}
	if c.TopK < 1 || c.TopK > 100 {
		return fmt.Errorf("%w: %d (want 1..100)", ErrInvalidTopK, c.TopK)
	}
	if c.HistoryLimit < 0 || c.HistoryLimit > 1000 {
		return fmt.Errorf("%w: %d (want 0..1000)", ErrInvalidHistoryLimit, c.HistoryLimit)
	}
	if strings.TrimSpace(c.Apology) == "" {
		return ErrMissingApology
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidServerPort, c.ServerPort)
	}
	if c.DatabaseURL != "" {
		u, err := url.Parse(c.DatabaseURL)
		if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			return fmt.Errorf("%w: %q", ErrInvalidDatabaseURL, redactURL(c.DatabaseURL))
		}
	}
	return nil
}

// FullModelName returns the provider-qualified model name for Genkit,
// e.g. "googleai/gemini-2.5-flash". Already-qualified names pass through.
func (c *Config) FullModelName() string {
	if strings.Contains(c.ModelName, "/") {
		return c.ModelName
	}
	return ProviderGoogleAI + "/" + c.ModelName
}

// maskedValue is the placeholder for masked sensitive data. Full-width
// blocks avoid accidental substring matches against real secret content.
const maskedValue = "████████"

// redactURL strips userinfo from a connection URL for error messages.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return maskedValue
	}
	if u.User != nil {
		u.User = url.User(maskedValue)
	}
	return u.String()
}

// MarshalJSON masks the database URL, which may embed credentials.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	if a.DatabaseURL != "" {
		a.DatabaseURL = redactURL(a.DatabaseURL)
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
