package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pravnik0/pravnik/internal/answer"
	"github.com/pravnik0/pravnik/internal/document"
	"github.com/pravnik0/pravnik/internal/embed"
	"github.com/pravnik0/pravnik/internal/index"
	"github.com/pravnik0/pravnik/internal/prompt"
	"github.com/pravnik0/pravnik/internal/rag"
	"github.com/pravnik0/pravnik/internal/session"
	"github.com/pravnik0/pravnik/internal/testutil"
)

// scriptedGenerator returns a fixed answer for every prompt.
type scriptedGenerator struct {
	text string
}

func (s *scriptedGenerator) Generate(context.Context, string) (string, error) {
	return s.text, nil
}

func testPipeline(t *testing.T) *rag.Pipeline {
	t.Helper()

	idx, err := index.New(embed.NewHashEmbedder(768), testutil.QuietLogger())
	if err != nil {
		t.Fatalf("index.New() error = %v", err)
	}
	if err := idx.Add(context.Background(), document.Seed()); err != nil {
		t.Fatalf("seeding index: %v", err)
	}

	p, err := rag.New(rag.Config{
		Index:     idx,
		Store:     session.NewMemoryStore(),
		Assembler: prompt.NewAssembler(0),
		Generator: &scriptedGenerator{text: "You are entitled to at least 20 working days of annual leave."},
		Fallback:  answer.NewFallback("I am sorry, I cannot answer right now.", nil),
		TopK:      5,
		Logger:    testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("rag.New() error = %v", err)
	}
	return p
}

// connectServer creates the MCP server and an SDK client connected via
// in-memory transports. Both sessions are cleaned up via t.Cleanup.
func connectServer(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server, err := NewServer(Config{
		Name:     "pravnik",
		Version:  "test",
		Pipeline: testPipeline(t),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

func TestNewServerValidation(t *testing.T) {
	t.Parallel()

	p := testPipeline(t)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing name", Config{Version: "1", Pipeline: p}},
		{"missing version", Config{Name: "pravnik", Pipeline: p}},
		{"missing pipeline", Config{Name: "pravnik", Version: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewServer(tt.cfg); err == nil {
				t.Error("NewServer() = nil error, want validation failure")
			}
		})
	}
}

func TestListTools(t *testing.T) {
	session := connectServer(t)

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		if tool.Description == "" {
			t.Errorf("tool %q has empty description", tool.Name)
		}
	}
	sort.Strings(names)

	want := []string{"clear_history", "get_history", "legal_query"}
	if len(names) != len(want) {
		t.Fatalf("ListTools() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tool[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLegalQueryTool(t *testing.T) {
	session := connectServer(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "legal_query",
		Arguments: map[string]any{
			"query":      "How many days of annual leave am I entitled to?",
			"session_id": "s1",
		},
	})
	if err != nil {
		t.Fatalf("CallTool(legal_query) error = %v", err)
	}
	if result.IsError {
		t.Fatalf("legal_query returned error result: %v", result.Content)
	}

	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] type = %T, want *mcp.TextContent", result.Content[0])
	}

	var resp rag.Response
	if err := json.Unmarshal([]byte(textContent.Text), &resp); err != nil {
		t.Fatalf("parsing response JSON: %v\ntext: %s", err, textContent.Text)
	}
	if !strings.Contains(resp.Text, "20 working days") {
		t.Errorf("response = %q", resp.Text)
	}
	if resp.SessionID != "s1" {
		t.Errorf("session_id = %q, want s1", resp.SessionID)
	}
	if len(resp.Sources) == 0 {
		t.Error("response should carry sources")
	}
}

func TestLegalQueryToolEmptyQuery(t *testing.T) {
	session := connectServer(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "legal_query",
		Arguments: map[string]any{"query": ""},
	})
	if err != nil {
		t.Fatalf("CallTool(legal_query) error = %v", err)
	}
	if !result.IsError {
		t.Fatal("empty query should produce an error result")
	}
}

func TestHistoryTools(t *testing.T) {
	session := connectServer(t)
	ctx := context.Background()

	// Seed a turn.
	if _, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "legal_query",
		Arguments: map[string]any{
			"query":      "first question",
			"session_id": "s1",
		},
	}); err != nil {
		t.Fatalf("seeding turn: %v", err)
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_history",
		Arguments: map[string]any{"session_id": "s1"},
	})
	if err != nil {
		t.Fatalf("CallTool(get_history) error = %v", err)
	}
	if result.IsError {
		t.Fatalf("get_history error result: %v", result.Content)
	}

	textContent := result.Content[0].(*mcp.TextContent)
	var msgs []map[string]any
	if err := json.Unmarshal([]byte(textContent.Text), &msgs); err != nil {
		t.Fatalf("parsing history JSON: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("history = %d messages, want 2", len(msgs))
	}

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "clear_history",
		Arguments: map[string]any{"session_id": "s1"},
	})
	if err != nil {
		t.Fatalf("CallTool(clear_history) error = %v", err)
	}
	if result.IsError {
		t.Fatalf("clear_history error result: %v", result.Content)
	}
	if text := result.Content[0].(*mcp.TextContent).Text; text != "cleared" {
		t.Errorf("clear_history = %q, want cleared", text)
	}

	// Second clear reports the session is gone.
	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "clear_history",
		Arguments: map[string]any{"session_id": "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if text := result.Content[0].(*mcp.TextContent).Text; text != "no such session" {
		t.Errorf("second clear = %q, want no such session", text)
	}
}

func TestUnknownTool(t *testing.T) {
	session := connectServer(t)

	if _, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "nonexistent_tool",
	}); err == nil {
		t.Fatal("CallTool(nonexistent_tool) expected error")
	}
}
