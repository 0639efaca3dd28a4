package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-agent/internal/cache"
	"support-agent/internal/config"
	"support-agent/internal/domain"
	"support-agent/internal/intent"
	"support-agent/internal/links"
	"support-agent/internal/similarity"
)

type mockLLM struct {
	answer    string
	err       error
	callCount int
	prompts   []string
}

func (m *mockLLM) Complete(_ context.Context, prompt string) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

type mockProducts struct {
	products  []domain.Product
	callCount int
	queries   []string
}

func (m *mockProducts) Search(_ context.Context, query string) []domain.Product {
	m.callCount++
	m.queries = append(m.queries, query)
	return m.products
}

type staticKnowledge []domain.KnowledgeEntry

func (s staticKnowledge) Entries() []domain.KnowledgeEntry { return s }

type mockStore struct {
	mu       sync.Mutex
	saved    []domain.Interaction
	saveErr  error
	getOut   domain.Interaction
	getErr   error
	getCalls int
}

func (m *mockStore) SaveInteraction(_ context.Context, question, answer string) (domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return domain.Interaction{}, m.saveErr
	}
	rec := domain.Interaction{ID: "rec-1", Question: question, Answer: answer, CreatedAt: time.Now().UTC()}
	m.saved = append(m.saved, rec)
	return rec, nil
}

func (m *mockStore) GetInteraction(_ context.Context, _ string) (domain.Interaction, error) {
	m.getCalls++
	return m.getOut, m.getErr
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore() StoreInfo {
	return StoreInfo{
		Name:         "SM Componentes",
		URL:          "https://smcomponentes.com.br/loja/",
		SupportEmail: "contato@smcomponentes.com.br",
		WhatsApp:     "(11) 99999-0000",
		SupportHours: "segunda a sexta, das 8h às 18h",
		Featured: []CategoryLink{
			{Name: "Conectores Variados", URL: "https://smcomponentes.com.br/loja/categoria-conectores-variados"},
			{Name: "Potenciômetros", URL: "https://smcomponentes.com.br/loja/categoria-potenciometros"},
		},
	}
}

type harness struct {
	llm       *mockLLM
	products  *mockProducts
	clock     *fakeClock
	responses *cache.Responses
	assistant *Assistant
}

func newHarness(t *testing.T, kb []domain.KnowledgeEntry, llm *mockLLM) *harness {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)

	h := &harness{
		llm:      llm,
		products: &mockProducts{},
		clock:    &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.responses = cache.NewResponses(30*time.Minute, 100, cache.WithClock(h.clock.Now))
	h.assistant, err = NewAssistant(AssistantDeps{
		LLM:       llm,
		Products:  h.products,
		Knowledge: staticKnowledge(kb),
		Intents:   intent.NewClassifier(cfg.Intent.ProductKeywords, cfg.Intent.SupportKeywords),
		Matcher:   similarity.NewMatcher(similarity.JaroWinkler{}),
		Responses: h.responses,
		Linkify:   links.Normalize,
		Store:     testStore(),
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	return h
}
