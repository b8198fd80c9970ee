// Package cmd provides CLI commands for Pravnik.
//
// Commands:
//   - cli: Interactive terminal chat with Bubble Tea TUI
//   - ask: One-shot question from the command line
//   - serve: HTTP API server
//   - mcp: Model Context Protocol server for IDE integration
//   - ingest: Crawl law texts and write them as a document file
//
// Signal handling and graceful shutdown are implemented for all
// long-running commands via context cancellation.
package cmd

import (
	"fmt"

	"github.com/pravnik0/pravnik/internal/config"
	"github.com/pravnik0/pravnik/internal/log"
)

// Version is injected at build time via ldflags.
var Version = "dev"

// Execute is the main entry point for the Pravnik CLI application.
func Execute(args []string) error {
	if len(args) < 1 {
		runHelp()
		return nil
	}

	switch args[0] {
	case "cli":
		return runCLI()
	case "ask":
		return runAsk(args[1:])
	case "serve":
		return runServe(args[1:])
	case "mcp":
		return runMCP()
	case "ingest":
		return runIngest(args[1:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// loadConfig loads configuration and builds the logger it describes.
func loadConfig() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	return cfg, logger, nil
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Pravnik - Labor law chatbot")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pravnik cli                 Start interactive chat mode")
	fmt.Println("  pravnik ask <question>      Ask a single question and exit")
	fmt.Println("  pravnik serve [addr]        Start HTTP API server (default: 127.0.0.1:8080)")
	fmt.Println("  pravnik mcp                 Start MCP server on stdio")
	fmt.Println("  pravnik ingest <url>...     Crawl law pages into a document file")
	fmt.Println("  pravnik --version           Show version information")
	fmt.Println("  pravnik --help              Show this help")
	fmt.Println()
	fmt.Println("CLI Commands (in interactive mode):")
	fmt.Println("  /help                       Show available commands")
	fmt.Println("  /clear                      Clear conversation history")
	fmt.Println("  /exit, /quit                Exit Pravnik")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY              Gemini API key; without it answers")
	fmt.Println("                              come from the built-in fallback table")
	fmt.Println("  DATABASE_URL                Optional: Postgres DSN for persistence")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/pravnik0/pravnik")
}
