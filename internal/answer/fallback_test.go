package answer

import (
	"testing"

	"github.com/pravnik0/pravnik/internal/config"
)

func TestFallbackAnswer(t *testing.T) {
	t.Parallel()

	fb := NewFallback("I am sorry, I cannot answer right now.", []config.FallbackAnswer{
		{
			Keywords: []string{"annual leave", "vacation"},
			Answer:   "Employees are entitled to at least 20 working days of annual leave.",
		},
		{
			Keywords: []string{"notice period"},
			Answer:   "The notice period is between 15 and 30 days.",
		},
	})

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "keyword match",
			query: "How many days of annual leave am I entitled to?",
			want:  "Employees are entitled to at least 20 working days of annual leave.",
		},
		{
			name:  "case insensitive match",
			query: "Tell me about my ANNUAL LEAVE rights",
			want:  "Employees are entitled to at least 20 working days of annual leave.",
		},
		{
			name:  "alternate keyword same entry",
			query: "when can I take my vacation",
			want:  "Employees are entitled to at least 20 working days of annual leave.",
		},
		{
			name:  "second entry",
			query: "what is the notice period for resignation",
			want:  "The notice period is between 15 and 30 days.",
		},
		{
			name:  "no match falls back to apology",
			query: "can my employer read my email",
			want:  "I am sorry, I cannot answer right now.",
		},
		{
			name:  "empty query gets apology",
			query: "",
			want:  "I am sorry, I cannot answer right now.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := fb.Answer(tt.query); got != tt.want {
				t.Errorf("Answer(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestFallbackFirstMatchWins(t *testing.T) {
	t.Parallel()

	fb := NewFallback("apology", []config.FallbackAnswer{
		{Keywords: []string{"leave"}, Answer: "first"},
		{Keywords: []string{"annual leave"}, Answer: "second"},
	})

	if got := fb.Answer("annual leave question"); got != "first" {
		t.Errorf("Answer() = %q, want the earlier table entry", got)
	}
}

func TestFallbackSkipsEmptyKeywords(t *testing.T) {
	t.Parallel()

	fb := NewFallback("apology", []config.FallbackAnswer{
		{Keywords: []string{""}, Answer: "should never match"},
	})

	if got := fb.Answer("any query at all"); got != "apology" {
		t.Errorf("empty keyword must not match everything, got %q", got)
	}
}

func TestFallbackNoTable(t *testing.T) {
	t.Parallel()

	fb := NewFallback("apology", nil)
	if got := fb.Answer("anything"); got != "apology" {
		t.Errorf("Answer() with nil table = %q, want apology", got)
	}
	if got := fb.Apology(); got != "apology" {
		t.Errorf("Apology() = %q", got)
	}
}
