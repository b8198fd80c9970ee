package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pravnik0/pravnik/internal/document"
	"github.com/pravnik0/pravnik/internal/index"
	"github.com/pravnik0/pravnik/internal/session"
)

func sampleResults() []index.Result {
	return []index.Result{
		{
			Document: document.Document{
				ID:      "labor-law-art-68",
				Title:   "Labor Law - Annual Leave",
				Content: "An employee is entitled to annual leave of at least 20 working days.",
				URL:     "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl68",
			},
			Score: 0.91,
		},
		{
			Document: document.Document{
				ID:      "labor-law-art-50",
				Title:   "Labor Law - Working Hours",
				Content: "Full working hours amount to 40 hours per week.",
				URL:     "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl50",
			},
			Score: 0.42,
		},
	}
}

func TestAssembleSectionOrder(t *testing.T) {
	t.Parallel()

	a := NewAssembler(10)
	history := []session.Message{
		{Role: session.RoleUser, Content: "earlier question"},
		{Role: session.RoleAssistant, Content: "earlier answer"},
	}
	got := a.Assemble(sampleResults(), history, "How many days of annual leave am I entitled to?")

	idxSystem := strings.Index(got, "You are Pravnik")
	idxContext := strings.Index(got, "Relevant legal provisions:")
	idxHistory := strings.Index(got, "Conversation so far:")
	idxQuery := strings.Index(got, "Question: How many days")

	for name, i := range map[string]int{
		"system": idxSystem, "context": idxContext, "history": idxHistory, "query": idxQuery,
	} {
		if i < 0 {
			t.Fatalf("%s section missing from prompt:\n%s", name, got)
		}
	}
	if !(idxSystem < idxContext && idxContext < idxHistory && idxHistory < idxQuery) {
		t.Errorf("sections out of order: system=%d context=%d history=%d query=%d",
			idxSystem, idxContext, idxHistory, idxQuery)
	}

	if !strings.Contains(got, "Source: https://www.paragraf.rs/propisi/zakon_o_radu.html#cl68") {
		t.Error("context block missing source URL")
	}
	if !strings.Contains(got, "user: earlier question") {
		t.Error("history block missing rendered message")
	}
}

func TestAssembleOmitsEmptyHistory(t *testing.T) {
	t.Parallel()

	a := NewAssembler(10)
	got := a.Assemble(sampleResults(), nil, "first question")
	if strings.Contains(got, "Conversation so far:") {
		t.Error("empty history must omit the history header entirely")
	}
}

func TestAssemblePlaceholderWithoutContext(t *testing.T) {
	t.Parallel()

	a := NewAssembler(10)
	got := a.Assemble(nil, nil, "anything")
	if !strings.Contains(got, noContextPlaceholder) {
		t.Error("empty retrieval must render the placeholder sentence")
	}
}

func TestAssembleHistoryBounded(t *testing.T) {
	t.Parallel()

	a := NewAssembler(10)
	var history []session.Message
	for i := 0; i < 15; i++ {
		history = append(history, session.Message{
			Role:    session.RoleUser,
			Content: fmt.Sprintf("message-%d", i),
		})
	}

	got := a.Assemble(nil, history, "q")
	for i := 0; i < 5; i++ {
		if strings.Contains(got, fmt.Sprintf("message-%d\n", i)) {
			t.Errorf("old message-%d should have been trimmed", i)
		}
	}
	for i := 5; i < 15; i++ {
		if !strings.Contains(got, fmt.Sprintf("message-%d", i)) {
			t.Errorf("recent message-%d missing from history block", i)
		}
	}
}

func TestNewAssemblerDefault(t *testing.T) {
	t.Parallel()

	if got := NewAssembler(0).HistoryLimit(); got != DefaultHistoryLimit {
		t.Errorf("HistoryLimit() = %d, want %d", got, DefaultHistoryLimit)
	}
	if got := NewAssembler(3).HistoryLimit(); got != 3 {
		t.Errorf("HistoryLimit() = %d, want 3", got)
	}
}
