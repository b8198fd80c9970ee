package answer

import (
	"strings"

	"github.com/pravnik0/pravnik/internal/config"
)

// Fallback serves degraded answers when generation is unavailable. Tier
// one matches query keywords against a configured table of canned,
// citation-backed answers; tier two is a single generic apology. The
// table is configuration so deployments can extend coverage without a
// rebuild, and unmatched queries never get fabricated domain content.
type Fallback struct {
	apology string
	answers []config.FallbackAnswer
}

// NewFallback creates a fallback with the given apology and keyword table.
func NewFallback(apology string, answers []config.FallbackAnswer) *Fallback {
	return &Fallback{apology: apology, answers: answers}
}

// Answer returns the degraded answer for query: the first table entry
// whose keyword appears in the query (case-insensitive), else the apology.
func (f *Fallback) Answer(query string) string {
	lower := strings.ToLower(query)
	for _, fa := range f.answers {
		for _, kw := range fa.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return fa.Answer
			}
		}
	}
	return f.apology
}

// Apology returns the generic tier-two response.
func (f *Fallback) Apology() string { return f.apology }
