// Package intent classifies customer questions with keyword rules.
package intent

import (
	"strings"

	"support-agent/internal/domain"
)

// Classifier checks product keywords before support keywords; the first set
// with a hit decides the intent.
type Classifier struct {
	product []string
	support []string
}

func NewClassifier(productKeywords, supportKeywords []string) *Classifier {
	return &Classifier{
		product: lowerAll(productKeywords),
		support: lowerAll(supportKeywords),
	}
}

func (c *Classifier) Classify(question string) domain.Intent {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, c.product):
		return domain.IntentProductInquiry
	case containsAny(q, c.support):
		return domain.IntentSupportRequest
	default:
		return domain.IntentGeneralInquiry
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
