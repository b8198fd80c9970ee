package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/pravnik0/pravnik/internal/app"
	"github.com/pravnik0/pravnik/internal/session"
	"github.com/pravnik0/pravnik/internal/tui"
)

// runCLI initializes and starts the interactive chat with Bubble Tea TUI.
func runCLI() error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	sessionID, err := getOrCreateSessionID(ctx, a.Store)
	if err != nil {
		return fmt.Errorf("resolving session: %w", err)
	}

	if err := tui.Run(ctx, a.Pipeline, sessionID); err != nil {
		return fmt.Errorf("chat interface: %w", err)
	}
	return nil
}

// getOrCreateSessionID returns the persisted CLI session if it still
// exists in the store, otherwise starts a fresh one and persists it.
func getOrCreateSessionID(ctx context.Context, store session.Store) (string, error) {
	currentID, err := session.LoadCurrentSessionID()
	if err != nil {
		return "", err
	}

	if currentID != nil {
		if _, err := store.Get(ctx, currentID.String()); err == nil {
			return currentID.String(), nil
		} else if !errors.Is(err, session.ErrSessionNotFound) {
			return "", fmt.Errorf("validating session: %w", err)
		}
	}

	id := uuid.New()
	if err := session.SaveCurrentSessionID(id); err != nil {
		return "", fmt.Errorf("saving session state: %w", err)
	}
	return id.String(), nil
}
