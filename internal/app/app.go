// Package app wires configuration into the answer pipeline. Both entry points
// build their service through it so the Lambda and local runs behave the same.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"support-agent/handler"
	"support-agent/internal/cache"
	"support-agent/internal/config"
	"support-agent/internal/integrations/catalog"
	"support-agent/internal/integrations/openai"
	"support-agent/internal/intent"
	"support-agent/internal/knowledge"
	"support-agent/internal/links"
	"support-agent/internal/similarity"
	"support-agent/internal/usecase"
)

// App holds the components entry points interact with after wiring.
type App struct {
	Knowledge *knowledge.Base
	Assistant *usecase.Assistant
	Service   *usecase.AskService
	Handler   *handler.Handler
}

// NewLogger builds the process logger: JSON to stdout at the given level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// New builds the pipeline from a validated configuration.
func New(cfg *config.Config, store usecase.InteractionStore, logger *slog.Logger) (*App, error) {
	llm, err := openai.NewClient(cfg.LLM.APIKey,
		openai.WithBaseURL(cfg.LLM.BaseURL),
		openai.WithModel(cfg.LLM.Model),
		openai.WithTemperature(cfg.LLM.Temperature),
		openai.WithMaxTokens(cfg.LLM.MaxTokens),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.LLM.Timeout}),
		openai.WithAttribution(cfg.LLM.Referer, cfg.LLM.Title),
	)
	if err != nil {
		return nil, fmt.Errorf("app: completion client: %w", err)
	}

	cats := make([]catalog.Category, len(cfg.Store.Categories))
	for i, c := range cfg.Store.Categories {
		cats[i] = catalog.Category{Keyword: c.Keyword, Slug: c.Slug, Name: c.Name}
	}
	products, err := catalog.NewClient(cfg.Store.BaseURL, cats,
		catalog.WithUserAgent(cfg.Store.UserAgent),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Store.FetchTimeout}),
		catalog.WithCacheTTL(cfg.Cache.ProductTTL),
		catalog.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("app: catalog client: %w", err)
	}

	metric, err := similarity.MetricByName(cfg.Similarity.Metric)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	matcher := similarity.NewMatcher(metric,
		similarity.WithThreshold(cfg.Similarity.Threshold),
		similarity.WithLimit(cfg.Similarity.Limit),
		similarity.WithExactMatchDistance(cfg.Similarity.ExactMatchDistance),
	)

	kb := knowledge.NewBase(knowledge.Load(logger, cfg.KnowledgeBase.Path))

	storeInfo, err := StoreInfo(cfg.Store)
	if err != nil {
		return nil, err
	}

	assistant, err := usecase.NewAssistant(usecase.AssistantDeps{
		LLM:       llm,
		Products:  products,
		Knowledge: kb,
		Intents:   intent.NewClassifier(cfg.Intent.ProductKeywords, cfg.Intent.SupportKeywords),
		Matcher:   matcher,
		Responses: cache.NewResponses(cfg.Cache.ResponseTTL, cfg.Cache.ResponseCapacity),
		Linkify:   links.Normalize,
		Store:     storeInfo,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	svc, err := usecase.NewAskService(assistant, store, cfg.MaxQuestionLength, logger)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	h, err := handler.NewHandler(svc, logger)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	return &App{Knowledge: kb, Assistant: assistant, Service: svc, Handler: h}, nil
}

// StoreInfo resolves the storefront facts quoted in prompts. Category links are
// resolved against the store base URL.
func StoreInfo(s config.StoreConfig) (usecase.StoreInfo, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return usecase.StoreInfo{}, fmt.Errorf("app: parse store base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	featured := s.FeaturedCategories()
	info := usecase.StoreInfo{
		Name:         s.Name,
		URL:          base.String(),
		SupportEmail: s.SupportEmail,
		WhatsApp:     s.WhatsApp,
		SupportHours: s.SupportHours,
		Featured:     make([]usecase.CategoryLink, len(featured)),
	}
	for i, c := range featured {
		info.Featured[i] = usecase.CategoryLink{Name: c.Name, URL: base.JoinPath(c.Slug).String()}
	}
	return info, nil
}
