// Package similarity ranks knowledge base entries against a customer question.
package similarity

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"support-agent/internal/domain"
)

const (
	DefaultLimit              = 3
	DefaultExactMatchDistance = 5

	MetricJaroWinkler = "jaro-winkler"
	MetricLevenshtein = "levenshtein"
)

// accented lists the non-ASCII letters kept by Normalize.
const accented = "áàâãäéèêëíìîïóòôõöúùûüç"

// Normalize lower-cases s, drops every rune that is not a letter from [a-z],
// a digit, an accented vowel, ç or whitespace, and collapses whitespace runs.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', strings.ContainsRune(accented, r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Metric scores two normalized strings. Implementations are symmetric and bounded to [0,1].
type Metric interface {
	Score(a, b string) float64
	// DefaultThreshold is the minimum score considered relevant for this metric.
	DefaultThreshold() float64
}

// JaroWinkler rewards shared prefixes and character overlap.
type JaroWinkler struct{}

func (JaroWinkler) Score(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	// fixed argument order keeps the score symmetric
	if a > b {
		a, b = b, a
	}
	return clamp(smetrics.JaroWinkler(a, b, 0.7, 4))
}

func (JaroWinkler) DefaultThreshold() float64 { return 0.70 }

// Levenshtein is 1 - distance/max(len(a), len(b)), counted in runes.
type Levenshtein struct{}

func (Levenshtein) Score(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return clamp(1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest))
}

func (Levenshtein) DefaultThreshold() float64 { return 0.75 }

// MetricByName resolves a configured metric name. Empty selects Jaro-Winkler.
func MetricByName(name string) (Metric, error) {
	switch name {
	case "", MetricJaroWinkler:
		return JaroWinkler{}, nil
	case MetricLevenshtein:
		return Levenshtein{}, nil
	default:
		return nil, fmt.Errorf("similarity: unknown metric %q", name)
	}
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Matcher selects the knowledge entries closest to a question.
type Matcher struct {
	metric             Metric
	threshold          float64
	limit              int
	exactMatchDistance int
}

type Option func(*Matcher)

// WithThreshold overrides the metric's default threshold. Non-positive values are ignored.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold > 0 {
			m.threshold = threshold
		}
	}
}

func WithLimit(limit int) Option {
	return func(m *Matcher) {
		if limit > 0 {
			m.limit = limit
		}
	}
}

func WithExactMatchDistance(distance int) Option {
	return func(m *Matcher) {
		if distance >= 0 {
			m.exactMatchDistance = distance
		}
	}
}

func NewMatcher(metric Metric, opts ...Option) *Matcher {
	if metric == nil {
		metric = JaroWinkler{}
	}
	m := &Matcher{
		metric:             metric,
		threshold:          metric.DefaultThreshold(),
		limit:              DefaultLimit,
		exactMatchDistance: DefaultExactMatchDistance,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Scored pairs an entry with its similarity to the question.
type Scored struct {
	Entry domain.KnowledgeEntry
	Score float64
}

// Rank returns every entry scoring at least the threshold, best first. Ties keep
// the order of base. The result is truncated to the matcher's limit.
func (m *Matcher) Rank(question string, base []domain.KnowledgeEntry) []Scored {
	q := Normalize(question)
	scored := make([]Scored, 0, len(base))
	for _, e := range base {
		s := m.metric.Score(q, Normalize(e.Question))
		if s >= m.threshold {
			scored = append(scored, Scored{Entry: e, Score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > m.limit {
		scored = scored[:m.limit]
	}
	return scored
}

// FindRelevant is Rank without the scores.
func (m *Matcher) FindRelevant(question string, base []domain.KnowledgeEntry) []domain.KnowledgeEntry {
	ranked := m.Rank(question, base)
	out := make([]domain.KnowledgeEntry, len(ranked))
	for i, s := range ranked {
		out[i] = s.Entry
	}
	return out
}

// HasExactMatch reports whether any candidate question is within the exact match
// edit distance of the question, after normalization.
func (m *Matcher) HasExactMatch(entries []domain.KnowledgeEntry, question string) bool {
	_, ok := m.ExactMatch(entries, question)
	return ok
}

// ExactMatch returns the candidate closest to the question by edit distance, if it
// is within the exact match distance. Ties go to the earlier entry.
func (m *Matcher) ExactMatch(entries []domain.KnowledgeEntry, question string) (domain.KnowledgeEntry, bool) {
	q := Normalize(question)
	best, bestDist := -1, m.exactMatchDistance+1
	for i, e := range entries {
		if d := levenshtein.ComputeDistance(q, Normalize(e.Question)); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return domain.KnowledgeEntry{}, false
	}
	return entries[best], true
}
