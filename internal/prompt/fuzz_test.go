package prompt

import (
	"strings"
	"testing"

	"github.com/pravnik0/pravnik/internal/session"
)

// FuzzAssemble checks structural invariants against arbitrary inputs: the
// query always appears, and the history block never exceeds its bound.
func FuzzAssemble(f *testing.F) {
	f.Add("How many days of annual leave am I entitled to?", "prior message", 3)
	f.Add("", "", 0)
	f.Add("question with\nnewlines\tand unicode: годишњи одмор", "history: colon", 25)

	f.Fuzz(func(t *testing.T, query, historyMsg string, repeats int) {
		if repeats < 0 || repeats > 100 {
			t.Skip()
		}

		var history []session.Message
		for i := 0; i < repeats; i++ {
			history = append(history, session.Message{
				Role:    session.RoleUser,
				Content: historyMsg,
			})
		}

		a := NewAssembler(10)
		got := a.Assemble(nil, history, query)

		if !strings.Contains(got, "Question: "+query) {
			t.Errorf("prompt missing query %q", query)
		}
		if repeats == 0 && strings.Contains(got, "Conversation so far:") {
			t.Error("empty history rendered a header")
		}
		if repeats > 10 {
			// More occurrences than the bound means trimming failed.
			// Multi-line content is excluded: rendered lines could then
			// overlap the counting needle.
			if historyMsg != "" && !strings.Contains(historyMsg, "\n") &&
				strings.Count(got, session.RoleUser+": "+historyMsg+"\n") > 10 {
				t.Errorf("history block exceeds bound: %d repeats rendered",
					strings.Count(got, session.RoleUser+": "+historyMsg+"\n"))
			}
		}
	})
}
