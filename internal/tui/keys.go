package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// keyMap defines the keyboard shortcuts shown in the help bar.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Cancel     key.Binding
	EscCancel  key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NewLine: key.NewBinding(
			key.WithKeys("shift+enter"),
			key.WithHelp("shift+enter", "newline"),
		),
		History: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑/↓", "history"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "cancel/quit"),
		),
		EscCancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// handleKey routes key presses by state.
func (t *TUI) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	// Global shortcuts work in every state.
	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return t.handleCtrlC()
		case 'd':
			return t.cleanup()
		}
	}

	switch k.Code {
	case tea.KeyPgUp:
		t.viewport.PageUp()
		return t, nil
	case tea.KeyPgDown:
		t.viewport.PageDown()
		return t, nil
	}

	switch t.state {
	case StateInput:
		return t.handleInputKey(msg)
	case StateThinking:
		if k.Code == tea.KeyEscape {
			return t.cancelTurn()
		}
		return t, nil
	}
	return t, nil
}

// handleCtrlC cancels an in-flight turn, or quits on a double press
// within one second.
func (t *TUI) handleCtrlC() (tea.Model, tea.Cmd) {
	if t.state == StateThinking {
		return t.cancelTurn()
	}

	now := time.Now()
	if now.Sub(t.lastCtrlC) < time.Second {
		return t.cleanup()
	}
	t.lastCtrlC = now
	t.addMessage(Message{Role: roleSystem, Text: "Press Ctrl+C again to quit"})
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, nil
}

// cancelTurn aborts the in-flight pipeline call. The turn goroutine
// observes the canceled context and reports back via turnErrorMsg.
func (t *TUI) cancelTurn() (tea.Model, tea.Cmd) {
	if t.turnCancel != nil {
		t.turnCancel()
	}
	return t, nil
}

func (t *TUI) handleInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	switch k.Code {
	case tea.KeyEnter:
		if k.Mod&tea.ModShift != 0 {
			break // Shift+Enter inserts a newline via the textarea
		}
		return t.handleSubmit()

	case tea.KeyUp:
		if t.input.Line() == 0 {
			return t.navigateHistory(-1)
		}

	case tea.KeyDown:
		if t.input.Line() == t.input.LineCount()-1 {
			return t.navigateHistory(1)
		}
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TUI) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(t.input.Value())
	if query == "" {
		return t, nil
	}

	if strings.HasPrefix(query, "/") {
		return t.handleSlashCommand(query)
	}

	t.history = append(t.history, query)
	if len(t.history) > maxHistory {
		t.history = t.history[len(t.history)-maxHistory:]
	}
	t.historyIdx = len(t.history)

	t.input.Reset()
	t.addMessage(Message{Role: roleUser, Text: query})
	t.state = StateThinking
	t.rebuildViewportContent()
	t.viewport.GotoBottom()

	return t, tea.Batch(t.askCmd(query), t.spinner.Tick)
}

func (t *TUI) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	t.input.Reset()

	switch cmd {
	case "/help":
		t.addMessage(Message{Role: roleSystem, Text: helpText()})
	case "/clear":
		t.messages = nil
		if _, err := t.pipeline.ClearHistory(t.ctx, t.sessionID); err != nil {
			t.addMessage(Message{Role: roleError, Text: err.Error()})
		} else {
			t.addMessage(Message{Role: roleSystem, Text: "Conversation cleared."})
		}
	case "/exit", "/quit":
		return t.cleanup()
	default:
		t.addMessage(Message{Role: roleSystem, Text: "Unknown command: " + cmd + " (try /help)"})
	}

	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, nil
}

func helpText() string {
	return strings.Join([]string{
		"Commands:",
		"  /help   Show this help",
		"  /clear  Clear the conversation",
		"  /exit   Quit (also /quit, Ctrl+D)",
	}, "\n")
}

// navigateHistory walks the submitted-query history. dir is -1 for
// older, +1 for newer.
func (t *TUI) navigateHistory(dir int) (tea.Model, tea.Cmd) {
	if len(t.history) == 0 {
		return t, nil
	}

	idx := t.historyIdx + dir
	switch {
	case idx < 0:
		idx = 0
	case idx >= len(t.history):
		// Past the newest entry: restore an empty prompt.
		t.historyIdx = len(t.history)
		t.input.Reset()
		return t, nil
	}

	t.historyIdx = idx
	t.input.SetValue(t.history[idx])
	t.input.CursorEnd()
	return t, nil
}

// cleanup cancels everything and quits.
func (t *TUI) cleanup() (tea.Model, tea.Cmd) {
	if t.turnCancel != nil {
		t.turnCancel()
	}
	t.ctxCancel()
	return t, tea.Quit
}
