package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"

	"github.com/pravnik0/pravnik/internal/app"
)

// runAsk answers a single question on stdout and exits. It reuses the
// persisted CLI session so follow-up questions keep their context.
func runAsk(args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("usage: pravnik ask <question>")
	}

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

	resp, err := a.Pipeline.GenerateResponse(ctx, sessionID, question)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Print(renderAnswer(resp.Text))
	if len(resp.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, s := range resp.Sources {
			fmt.Println("  " + s)
		}
	}
	return nil
}

// renderAnswer formats markdown for the terminal, falling back to the
// raw text when rendering is unavailable.
func renderAnswer(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text + "\n"
	}
	out, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}
