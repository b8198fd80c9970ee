// Package mcp exposes the chat pipeline as Model Context Protocol tools.
//
// Three tools are registered: legal_query runs a full chat turn,
// get_history reads a conversation, clear_history deletes one. The
// server speaks the official MCP SDK over any transport; the CLI runs
// it on stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pravnik0/pravnik/internal/rag"
)

// Server wraps the MCP SDK server around the pipeline.
type Server struct {
	mcpServer *mcp.Server
	pipeline  *rag.Pipeline
}

// Config holds MCP server configuration.
type Config struct {
	Name     string
	Version  string
	Pipeline *rag.Pipeline
}

// NewServer creates the MCP server and registers all tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		pipeline: cfg.Pipeline,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	return s, nil
}

// Run starts the server on the given transport. Blocks until the
// transport closes or ctx is canceled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	//nolint:wrapcheck // protocol errors pass through to the caller as-is
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) registerTools() error {
	if err := s.registerLegalQuery(); err != nil {
		return err
	}
	if err := s.registerGetHistory(); err != nil {
		return err
	}
	return s.registerClearHistory()
}

// LegalQueryInput is the input schema for the legal_query tool.
type LegalQueryInput struct {
	Query     string `json:"query" jsonschema:"The legal question to answer"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Conversation to continue; omit to start a new one"`
}

func (s *Server) registerLegalQuery() error {
	inputSchema, err := jsonschema.For[LegalQueryInput](nil)
	if err != nil {
		return fmt.Errorf("creating legal_query schema: %w", err)
	}

	tool := &mcp.Tool{
		Name: "legal_query",
		Description: "Answer a question about labor law using retrieved legal provisions. " +
			"Returns the answer, the session id, and source citations.",
		InputSchema: inputSchema,
	}

	mcp.AddTool(s.mcpServer, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in LegalQueryInput) (*mcp.CallToolResult, any, error) {
		resp, err := s.pipeline.GenerateResponse(ctx, in.SessionID, in.Query)
		if err != nil {
			if errors.Is(err, rag.ErrEmptyQuery) {
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: "Error: query must not be empty"}},
					IsError: true,
				}, nil, nil
			}
			return nil, nil, fmt.Errorf("running chat turn: %w", err)
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding response: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		}, nil, nil
	})

	return nil
}

// GetHistoryInput is the input schema for the get_history tool.
type GetHistoryInput struct {
	SessionID string `json:"session_id" jsonschema:"The conversation to read"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of recent messages; 0 returns all"`
}

func (s *Server) registerGetHistory() error {
	inputSchema, err := jsonschema.For[GetHistoryInput](nil)
	if err != nil {
		return fmt.Errorf("creating get_history schema: %w", err)
	}

	tool := &mcp.Tool{
		Name:        "get_history",
		Description: "Return the messages of a conversation, oldest first.",
		InputSchema: inputSchema,
	}

	mcp.AddTool(s.mcpServer, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in GetHistoryInput) (*mcp.CallToolResult, any, error) {
		msgs, err := s.pipeline.GetHistory(ctx, in.SessionID, in.Limit)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
				IsError: true,
			}, nil, nil
		}

		payload, err := json.Marshal(msgs)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding history: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		}, nil, nil
	})

	return nil
}

// ClearHistoryInput is the input schema for the clear_history tool.
type ClearHistoryInput struct {
	SessionID string `json:"session_id" jsonschema:"The conversation to delete"`
}

func (s *Server) registerClearHistory() error {
	inputSchema, err := jsonschema.For[ClearHistoryInput](nil)
	if err != nil {
		return fmt.Errorf("creating clear_history schema: %w", err)
	}

	tool := &mcp.Tool{
		Name:        "clear_history",
		Description: "Delete a conversation and all of its messages.",
		InputSchema: inputSchema,
	}

	mcp.AddTool(s.mcpServer, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in ClearHistoryInput) (*mcp.CallToolResult, any, error) {
		existed, err := s.pipeline.ClearHistory(ctx, in.SessionID)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
				IsError: true,
			}, nil, nil
		}

		text := "cleared"
		if !existed {
			text = "no such session"
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	})

	return nil
}
