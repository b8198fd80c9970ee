// Package app assembles the application from its components.
//
// Setup builds the full dependency graph (tracing, optional Postgres,
// Genkit, embedder, index, session store, generator, pipeline) from a
// validated Config. App owns the resources and releases them in Close.
package app

import (
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravnik0/pravnik/internal/config"
	"github.com/pravnik0/pravnik/internal/log"
	"github.com/pravnik0/pravnik/internal/rag"
	"github.com/pravnik0/pravnik/internal/session"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit *genkit.Genkit

	// Pool is nil when no database is configured; the app then runs on
	// the in-memory index and session store.
	Pool *pgxpool.Pool

	Index    rag.Searcher
	Store    session.Store
	Pipeline *rag.Pipeline

	otelCleanup func()
	dbCleanup   func()
}

// Close releases all resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a.dbCleanup != nil {
		a.dbCleanup()
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	if a.Logger != nil {
		a.Logger.Debug("application shut down")
	}
}
