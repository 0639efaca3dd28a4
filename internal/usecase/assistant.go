package usecase

import (
	"context"
	"errors"
	"log/slog"

	"support-agent/internal/domain"
	"support-agent/internal/similarity"
)

type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ProductSearcher interface {
	Search(ctx context.Context, query string) []domain.Product
}

type KnowledgeSource interface {
	Entries() []domain.KnowledgeEntry
}

type IntentClassifier interface {
	Classify(question string) domain.Intent
}

type ResponseCache interface {
	Get(key string) (string, bool)
	Put(key, response string)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Assistant answers one question from the knowledge base, the catalog and the
// completion endpoint.
type Assistant struct {
	llm       LLMClient
	products  ProductSearcher
	knowledge KnowledgeSource
	intents   IntentClassifier
	matcher   *similarity.Matcher
	responses ResponseCache
	linkify   func(string) string
	store     StoreInfo
	logger    *slog.Logger
}

type AssistantDeps struct {
	LLM       LLMClient
	Products  ProductSearcher
	Knowledge KnowledgeSource
	Intents   IntentClassifier
	Matcher   *similarity.Matcher
	Responses ResponseCache
	// Linkify post-processes model output. Nil leaves it untouched.
	Linkify func(string) string
	Store   StoreInfo
	Logger  *slog.Logger
}

func NewAssistant(d AssistantDeps) (*Assistant, error) {
	if d.LLM == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if d.Products == nil {
		return nil, errors.New("usecase: product searcher must not be nil")
	}
	if d.Knowledge == nil {
		return nil, errors.New("usecase: knowledge source must not be nil")
	}
	if d.Intents == nil {
		return nil, errors.New("usecase: intent classifier must not be nil")
	}
	if d.Responses == nil {
		return nil, errors.New("usecase: response cache must not be nil")
	}
	if d.Matcher == nil {
		d.Matcher = similarity.NewMatcher(similarity.JaroWinkler{})
	}
	if d.Linkify == nil {
		d.Linkify = func(s string) string { return s }
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Assistant{
		llm:       d.LLM,
		products:  d.Products,
		knowledge: d.Knowledge,
		intents:   d.Intents,
		matcher:   d.Matcher,
		responses: d.Responses,
		linkify:   d.Linkify,
		store:     d.Store,
		logger:    d.Logger,
	}, nil
}

// Answer never fails: any pipeline error is logged and replaced by the fallback answer.
func (a *Assistant) Answer(ctx context.Context, question string) string {
	answer, err := a.answer(ctx, question)
	if err == nil {
		return answer
	}

	attrs := []any{"question", question, "err", err, "kind", errorKind(err)}
	if status, ok := upstreamStatusCode(err); ok {
		attrs = append(attrs, "status", status)
	}
	a.logger.ErrorContext(ctx, "answer pipeline failed, using fallback", attrs...)
	return FallbackAnswer(a.store)
}

func (a *Assistant) answer(ctx context.Context, question string) (string, error) {
	key := similarity.Normalize(question)
	if cached, ok := a.responses.Get(key); ok {
		a.logger.DebugContext(ctx, "response cache hit", "key", key)
		return cached, nil
	}

	intent := a.intents.Classify(question)
	entries := a.matcher.FindRelevant(question, a.knowledge.Entries())

	var products []domain.Product
	if intent == domain.IntentProductInquiry {
		products = a.products.Search(ctx, question)
	}

	if match, ok := a.matcher.ExactMatch(entries, question); ok {
		a.logger.DebugContext(ctx, "exact knowledge match", "question", question, "matched", match.Question)
		a.responses.Put(key, match.Answer)
		return match.Answer, nil
	}

	prompt := BuildPrompt(intent, question, BuildContext(intent, entries, products, a.store), a.store)
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", errEmptyCompletion
	}

	answer := a.linkify(raw)
	a.responses.Put(key, answer)
	a.logger.InfoContext(ctx, "question answered", "intent", string(intent), "kb_entries", len(entries), "products", len(products))
	return answer, nil
}

var errEmptyCompletion = errors.New("usecase: completion returned an empty answer")

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, errEmptyCompletion):
		return "empty_completion"
	}
	if _, ok := upstreamStatusCode(err); ok {
		return "backend"
	}
	return "upstream"
}
