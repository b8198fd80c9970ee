// Package prompt assembles the instruction payload sent to the model.
//
// Section order is fixed: system rules first to anchor behavior, retrieved
// legal context second for grounding, conversation history third for
// continuity, and the new question last. Sections with nothing to say are
// omitted entirely so the model never sees an empty header.
package prompt

import (
	"strings"

	"github.com/pravnik0/pravnik/internal/index"
	"github.com/pravnik0/pravnik/internal/session"
)

// systemInstruction anchors scope and response format.
const systemInstruction = `You are Pravnik, a legal assistant answering questions about labor law.
Answer only from the legal provisions supplied below. Cite the article and
source URL for every claim. If the provisions do not cover the question,
say so plainly instead of guessing. Answer in the language of the question.`

// noContextPlaceholder replaces the context block when retrieval found
// nothing, so the model knows it is answering without grounding.
const noContextPlaceholder = "No relevant legal provisions were found for this question."

// DefaultHistoryLimit bounds the history block to keep prompt size stable.
const DefaultHistoryLimit = 10

// Assembler builds prompts with a fixed history bound.
type Assembler struct {
	historyLimit int
}

// NewAssembler creates an assembler. historyLimit <= 0 selects the default.
func NewAssembler(historyLimit int) *Assembler {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Assembler{historyLimit: historyLimit}
}

// HistoryLimit returns the configured history bound.
func (a *Assembler) HistoryLimit() int { return a.historyLimit }

// Assemble combines retrieved context, trimmed history and the new query
// into one prompt.
func (a *Assembler) Assemble(results []index.Result, history []session.Message, query string) string {
	var b strings.Builder

	b.WriteString(systemInstruction)
	b.WriteString("\n\n")

	b.WriteString("Relevant legal provisions:\n")
	if len(results) == 0 {
		b.WriteString(noContextPlaceholder)
		b.WriteString("\n")
	} else {
		for _, r := range results {
			b.WriteString("- ")
			b.WriteString(r.Document.Title)
			b.WriteString("\n  ")
			b.WriteString(r.Document.Content)
			b.WriteString("\n  Source: ")
			b.WriteString(r.Document.URL)
			b.WriteString("\n")
		}
	}

	if msgs := trimHistory(history, a.historyLimit); len(msgs) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, m := range msgs {
			b.WriteString(m.Role)
			b.WriteString(": ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

// trimHistory keeps the most recent limit messages, preserving order.
func trimHistory(history []session.Message, limit int) []session.Message {
	if len(history) > limit {
		return history[len(history)-limit:]
	}
	return history
}
