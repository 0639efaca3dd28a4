// Package knowledge loads the curated question/answer pairs the assistant consults
// before asking the model.
package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"support-agent/internal/domain"
)

//go:embed knowledge_base.json
var bundled []byte

// Load returns the knowledge base stored at path, or the bundled one when path is
// empty. It never fails: any read or decode error is logged and yields an empty base.
func Load(logger *slog.Logger, path string) []domain.KnowledgeEntry {
	entries, err := read(path)
	if err != nil {
		logger.Error("knowledge base load failed, continuing with empty base", "path", path, "err", err)
		return []domain.KnowledgeEntry{}
	}
	logger.Info("knowledge base loaded", "path", path, "entries", len(entries))
	return entries
}

func read(path string) ([]domain.KnowledgeEntry, error) {
	data := bundled
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("knowledge: read %s: %w", path, err)
		}
	}
	return decode(data)
}

func decode(data []byte) ([]domain.KnowledgeEntry, error) {
	var raw []domain.KnowledgeEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("knowledge: decode: %w", err)
	}
	entries := make([]domain.KnowledgeEntry, 0, len(raw))
	for _, e := range raw {
		q, a := strings.TrimSpace(e.Question), strings.TrimSpace(e.Answer)
		if q == "" || a == "" {
			continue
		}
		entries = append(entries, domain.KnowledgeEntry{Question: q, Answer: a})
	}
	return entries, nil
}

// Base is a read-mostly holder for the current knowledge entries. Readers always
// observe a complete snapshot.
type Base struct {
	entries atomic.Pointer[[]domain.KnowledgeEntry]
}

func NewBase(entries []domain.KnowledgeEntry) *Base {
	b := &Base{}
	b.Replace(entries)
	return b
}

// Entries returns the current snapshot. Callers must not modify it.
func (b *Base) Entries() []domain.KnowledgeEntry {
	p := b.entries.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (b *Base) Replace(entries []domain.KnowledgeEntry) {
	cp := make([]domain.KnowledgeEntry, len(entries))
	copy(cp, entries)
	b.entries.Store(&cp)
}
