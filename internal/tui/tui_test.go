package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/pravnik0/pravnik/internal/answer"
	"github.com/pravnik0/pravnik/internal/document"
	"github.com/pravnik0/pravnik/internal/embed"
	"github.com/pravnik0/pravnik/internal/index"
	"github.com/pravnik0/pravnik/internal/prompt"
	"github.com/pravnik0/pravnik/internal/rag"
	"github.com/pravnik0/pravnik/internal/session"
	"github.com/pravnik0/pravnik/internal/testutil"
)

type scriptedGenerator struct {
	text string
	err  error
}

func (s *scriptedGenerator) Generate(context.Context, string) (string, error) {
	return s.text, s.err
}

func testPipeline(t *testing.T, gen *scriptedGenerator) *rag.Pipeline {
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
		Generator: gen,
		Fallback:  answer.NewFallback("I am sorry, I cannot answer right now.", nil),
		TopK:      5,
		Logger:    testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("rag.New() error = %v", err)
	}
	return p
}

func testTUI(t *testing.T) *TUI {
	t.Helper()

	gen := &scriptedGenerator{text: "You are entitled to **20 working days** of annual leave."}
	m, err := New(context.Background(), testPipeline(t, gen), "tui-session")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { m.ctxCancel() })
	return m
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	p := testPipeline(t, &scriptedGenerator{text: "ok"})

	if _, err := New(context.Background(), nil, "s"); err == nil {
		t.Error("New() without pipeline should fail")
	}
	if _, err := New(context.Background(), p, ""); err == nil {
		t.Error("New() without session ID should fail")
	}
	m, err := New(context.Background(), p, "s")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.ctxCancel()
}

func TestSubmitStartsTurn(t *testing.T) {
	t.Parallel()

	m := testTUI(t)
	m.input.SetValue("How many days of annual leave am I entitled to?")

	model, cmd := m.handleSubmit()
	m = model.(*TUI)

	if m.state != StateThinking {
		t.Fatalf("state = %v, want StateThinking", m.state)
	}
	if cmd == nil {
		t.Fatal("handleSubmit() returned nil cmd")
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared after submit")
	}
	if len(m.messages) != 1 || m.messages[0].Role != roleUser {
		t.Fatalf("messages = %+v, want one user message", m.messages)
	}
	if len(m.history) != 1 {
		t.Errorf("history = %d entries, want 1", len(m.history))
	}
}

func TestSubmitEmptyInputIsNoop(t *testing.T) {
	t.Parallel()

	m := testTUI(t)
	m.input.SetValue("   ")

	model, _ := m.handleSubmit()
	m = model.(*TUI)
	if m.state != StateInput {
		t.Error("whitespace input must not start a turn")
	}
	if len(m.messages) != 0 {
		t.Error("whitespace input must not add messages")
	}
}

func TestAskCmdDeliversResponse(t *testing.T) {
	t.Parallel()

	m := testTUI(t)
	msg := m.askCmd("How many days of annual leave am I entitled to?")()

	done, ok := msg.(turnDoneMsg)
	if !ok {
		t.Fatalf("askCmd() returned %T, want turnDoneMsg", msg)
	}
	if !strings.Contains(done.resp.Text, "20 working days") {
		t.Errorf("response = %q", done.resp.Text)
	}
	if done.resp.SessionID != "tui-session" {
		t.Errorf("session_id = %q", done.resp.SessionID)
	}
}

func TestTurnDoneAppendsAssistantMessage(t *testing.T) {
	t.Parallel()

	m := testTUI(t)
	m.state = StateThinking

	model, _ := m.Update(turnDoneMsg{resp: &rag.Response{
		Text:      "Answer text.",
		SessionID: "tui-session",
		Sources:   []string{"Labor Law - https://example.com#cl68"},
	}})
	m = model.(*TUI)

	if m.state != StateInput {
		t.Fatalf("state = %v, want StateInput after turn", m.state)
	}
	last := m.messages[len(m.messages)-1]
	if last.Role != roleAssistant || last.Text != "Answer text." {
		t.Errorf("last message = %+v", last)
	}
	if len(last.Sources) != 1 {
		t.Errorf("sources = %v", last.Sources)
	}
}

func TestTurnErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantRole string
	}{
		{"canceled", context.Canceled, roleSystem},
		{"timeout", context.DeadlineExceeded, roleError},
		{"other", errors.New("boom"), roleError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := testTUI(t)
			m.state = StateThinking

			model, _ := m.Update(turnErrorMsg{err: tt.err})
			m = model.(*TUI)

			if m.state != StateInput {
				t.Fatalf("state = %v, want StateInput", m.state)
			}
			if got := m.messages[len(m.messages)-1].Role; got != tt.wantRole {
				t.Errorf("role = %q, want %q", got, tt.wantRole)
			}
		})
	}
}

func TestSlashCommands(t *testing.T) {
	t.Parallel()

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		m := testTUI(t)
		m.input.SetValue("/help")
		model, _ := m.handleSubmit()
		m = model.(*TUI)
		if len(m.messages) == 0 || !strings.Contains(m.messages[0].Text, "/clear") {
			t.Errorf("help output missing, messages = %+v", m.messages)
		}
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()
		m := testTUI(t)
		m.addMessage(Message{Role: roleUser, Text: "old"})
		m.input.SetValue("/clear")
		model, _ := m.handleSubmit()
		m = model.(*TUI)
		if len(m.messages) != 1 || m.messages[0].Role != roleSystem {
			t.Errorf("clear should leave only the confirmation, got %+v", m.messages)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		m := testTUI(t)
		m.input.SetValue("/frobnicate")
		model, _ := m.handleSubmit()
		m = model.(*TUI)
		if !strings.Contains(m.messages[0].Text, "Unknown command") {
			t.Errorf("messages = %+v", m.messages)
		}
	})

	t.Run("exit quits", func(t *testing.T) {
		t.Parallel()
		m := testTUI(t)
		m.input.SetValue("/exit")
		_, cmd := m.handleSubmit()
		if cmd == nil {
			t.Fatal("exit should return a quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("exit should produce tea.QuitMsg")
		}
	})
}

func TestHistoryNavigation(t *testing.T) {
	t.Parallel()

	m := testTUI(t)
	m.history = []string{"first", "second"}
	m.historyIdx = 2

	model, _ := m.navigateHistory(-1)
	m = model.(*TUI)
	if got := m.input.Value(); got != "second" {
		t.Errorf("after up, input = %q, want second", got)
	}

	model, _ = m.navigateHistory(-1)
	m = model.(*TUI)
	if got := m.input.Value(); got != "first" {
		t.Errorf("after up up, input = %q, want first", got)
	}

	// Already at oldest entry.
	model, _ = m.navigateHistory(-1)
	m = model.(*TUI)
	if got := m.input.Value(); got != "first" {
		t.Errorf("navigation past oldest changed input to %q", got)
	}

	model, _ = m.navigateHistory(1)
	m = model.(*TUI)
	if got := m.input.Value(); got != "second" {
		t.Errorf("after down, input = %q, want second", got)
	}

	// Past the newest entry restores an empty prompt.
	model, _ = m.navigateHistory(1)
	m = model.(*TUI)
	if got := m.input.Value(); got != "" {
		t.Errorf("past newest, input = %q, want empty", got)
	}
}

func TestDoubleCtrlCQuits(t *testing.T) {
	t.Parallel()

	m := testTUI(t)

	model, cmd := m.handleCtrlC()
	m = model.(*TUI)
	if cmd != nil {
		t.Fatal("first Ctrl+C must not quit")
	}
	if m.messages[len(m.messages)-1].Role != roleSystem {
		t.Error("first Ctrl+C should show a hint")
	}

	_, cmd = m.handleCtrlC()
	if cmd == nil {
		t.Fatal("second Ctrl+C should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("second Ctrl+C should produce tea.QuitMsg")
	}
}

func TestCtrlCTimeoutResets(t *testing.T) {
	t.Parallel()

	m := testTUI(t)
	m.lastCtrlC = time.Now().Add(-2 * time.Second)

	_, cmd := m.handleCtrlC()
	if cmd != nil {
		t.Error("stale Ctrl+C must not quit")
	}
}

func TestMessageBound(t *testing.T) {
	t.Parallel()

	m := testTUI(t)
	for i := 0; i < maxMessages+10; i++ {
		m.addMessage(Message{Role: roleUser, Text: "x"})
	}
	if len(m.messages) != maxMessages {
		t.Errorf("messages = %d, want %d", len(m.messages), maxMessages)
	}
}

func TestMarkdownRendererFallback(t *testing.T) {
	t.Parallel()

	m := &markdownRenderer{renderer: nil, width: 80}
	if got := m.Render("**bold**"); got != "**bold**" {
		t.Errorf("nil renderer should pass text through, got %q", got)
	}
}

func TestWindowResize(t *testing.T) {
	t.Parallel()

	m := testTUI(t)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = model.(*TUI)

	if m.width != 100 || m.height != 40 {
		t.Errorf("dimensions = %dx%d, want 100x40", m.width, m.height)
	}
	if m.markdown.width != 100 {
		t.Errorf("markdown width = %d, want 100", m.markdown.width)
	}
}
