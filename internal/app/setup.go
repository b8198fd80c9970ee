package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravnik0/pravnik/db"
	"github.com/pravnik0/pravnik/internal/answer"
	"github.com/pravnik0/pravnik/internal/config"
	"github.com/pravnik0/pravnik/internal/document"
	"github.com/pravnik0/pravnik/internal/embed"
	"github.com/pravnik0/pravnik/internal/index"
	"github.com/pravnik0/pravnik/internal/log"
	"github.com/pravnik0/pravnik/internal/observability"
	"github.com/pravnik0/pravnik/internal/prompt"
	"github.com/pravnik0/pravnik/internal/rag"
	"github.com/pravnik0/pravnik/internal/session"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}

	// On error, release everything already initialized.
	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	pool, dbCleanup, err := provideDBPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.dbCleanup = dbCleanup
	a.Pool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder, err := provideEmbedder(g, cfg, logger)
	if err != nil {
		return nil, err
	}

	idx, err := provideIndex(ctx, pool, embedder, logger)
	if err != nil {
		return nil, err
	}
	a.Index = idx

	store, err := provideSessionStore(pool, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store

	generator, err := answer.NewGenkitGenerator(g, answer.Config{
		ModelName:   cfg.FullModelName(),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	pipeline, err := rag.New(rag.Config{
		Index:       idx,
		Store:       a.Store,
		Assembler:   prompt.NewAssembler(cfg.HistoryLimit),
		Generator:   generator,
		Fallback:    answer.NewFallback(cfg.Apology, cfg.FallbackAnswers),
		TopK:        cfg.TopK,
		SourceLimit: cfg.SourceLimit,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}
	a.Pipeline = pipeline

	return a, nil
}

// provideOtelShutdown sets up OTLP tracing before Genkit initialization
// so the TracerProvider is ready when flows register. Disabled unless an
// endpoint is configured.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	if cfg.OTLPEndpoint == "" {
		return func() {}
	}
	return observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
	}, logger)
}

// provideGenkit initializes Genkit. The GoogleAI plugin is only loaded
// when an API key is present; without one the app still starts and every
// generation takes the fallback path.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		logger.Warn("no Gemini API key set, answers will use the fallback table",
			"provider", cfg.Provider)
		g := genkit.Init(ctx)
		if g == nil {
			return nil, errors.New("initializing genkit")
		}
		return g, nil
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai plugin")
	}
	logger.Info("initialized Genkit", "provider", cfg.Provider, "model", cfg.ModelName)
	return g, nil
}

// provideEmbedder selects the embedding implementation. The hash
// embedder is deterministic and fully local; the gemini embedder calls
// the hosted model truncated to the configured dimension.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config, logger log.Logger) (embed.Embedder, error) {
	switch cfg.Embedder {
	case config.EmbedderGemini:
		e := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
		if e == nil {
			return nil, fmt.Errorf("embedder %q not registered (missing API key?)", cfg.EmbedderModel)
		}
		return embed.NewGeminiEmbedder(e, cfg.Dimension, logger)
	default:
		return embed.NewHashEmbedder(cfg.Dimension), nil
	}
}

// provideDBPool creates a Postgres connection pool and runs migrations.
// An empty database URL keeps the app on in-memory stores.
func provideDBPool(ctx context.Context, cfg *config.Config, logger log.Logger) (*pgxpool.Pool, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Debug("no database configured, using in-memory stores")
		return nil, nil, nil
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, pool.Close, nil
}

// provideIndex builds the vector index and seeds it with the bundled
// labor law corpus. With a pool the index lives in pgvector; seeding is
// an idempotent upsert. Without one the index is in-memory.
func provideIndex(ctx context.Context, pool *pgxpool.Pool, embedder embed.Embedder, logger log.Logger) (rag.Searcher, error) {
	if pool != nil {
		idx, err := index.NewPGIndex(pool, embedder, logger)
		if err != nil {
			return nil, fmt.Errorf("creating pgvector index: %w", err)
		}
		if err := idx.Add(ctx, document.Seed()); err != nil {
			return nil, fmt.Errorf("seeding pgvector index: %w", err)
		}
		return idx, nil
	}

	idx, err := index.New(embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	if err := idx.Add(ctx, document.Seed()); err != nil {
		return nil, fmt.Errorf("seeding index: %w", err)
	}
	return idx, nil
}

// provideSessionStore selects the conversation store implementation.
func provideSessionStore(pool *pgxpool.Pool, logger log.Logger) (session.Store, error) {
	if pool != nil {
		store, err := session.NewPGStore(pool, logger)
		if err != nil {
			return nil, fmt.Errorf("creating session store: %w", err)
		}
		return store, nil
	}
	return session.NewMemoryStore(), nil
}
