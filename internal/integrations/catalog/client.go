// Package catalog looks up storefront products by scraping category listing pages.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html"

	"support-agent/internal/cache"
	"support-agent/internal/domain"
)

const (
	defaultBaseURL   = "https://smcomponentes.com.br/loja/"
	defaultUserAgent = "Mozilla/5.0 (compatible; SMComponentes-AI/1.0)"
	defaultTimeout   = 10 * time.Second
	defaultCacheTTL  = 60 * time.Minute
	maxPageBytes     = 4 << 20
)

// Category maps a query keyword to a listing page, relative to the store base URL.
type Category struct {
	Keyword string
	Slug    string
	Name    string
}

// ScrapeError reports a listing page that could not be fetched or parsed.
type ScrapeError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ScrapeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog: scrape %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("catalog: scrape %s: %v", e.URL, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Client finds products for a free-text query. Results are cached per normalized
// query; failures are logged and yield no products.
type Client struct {
	baseURL    *url.URL
	categories []Category
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	ttl        time.Duration
	now        func() time.Time
	cache      *cache.TTL[[]domain.Product]
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			c.userAgent = ua
		}
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client for the store at baseURL. Categories are matched in
// the given order.
func NewClient(baseURL string, categories []Category, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("catalog: base url %q must be absolute", baseURL)
	}
	cats := make([]Category, 0, len(categories))
	for _, cat := range categories {
		kw := strings.ToLower(strings.TrimSpace(cat.Keyword))
		if kw == "" || strings.TrimSpace(cat.Slug) == "" {
			return nil, errors.New("catalog: category keyword and slug must not be empty")
		}
		cats = append(cats, Category{Keyword: kw, Slug: strings.TrimSpace(cat.Slug), Name: cat.Name})
	}
	c := &Client{
		baseURL:    base,
		categories: cats,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		ttl:        defaultCacheTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = cache.NewTTL[[]domain.Product](c.ttl, c.now)
	return c, nil
}

// Search returns the products whose name contains the query. Only the first
// category whose keyword appears in the query is fetched.
func (c *Client) Search(ctx context.Context, query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if cached, ok := c.cache.Get(q); ok {
		return slices.Clone(cached)
	}

	var results []domain.Product
	if cat, ok := c.match(q); ok {
		products, err := c.scrape(ctx, cat, q)
		if err != nil {
			c.logger.ErrorContext(ctx, "catalog lookup failed", "query", q, "category", cat.Slug, "err", err)
			if ctx.Err() != nil {
				return nil
			}
		}
		results = products
	}

	c.cache.Set(q, slices.Clone(results))
	return results
}

func (c *Client) match(q string) (Category, bool) {
	for _, cat := range c.categories {
		if strings.Contains(q, cat.Keyword) {
			return cat, true
		}
	}
	return Category{}, false
}

func (c *Client) scrape(ctx context.Context, cat Category, q string) ([]domain.Product, error) {
	pageURL := c.baseURL.ResolveReference(&url.URL{Path: cat.Slug}).String()
	c.logger.DebugContext(ctx, "scraping category", "url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &ScrapeError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ScrapeError{URL: pageURL, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, &ScrapeError{URL: pageURL, StatusCode: res.StatusCode}
	}

	doc, err := html.Parse(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, &ScrapeError{URL: pageURL, Err: err}
	}

	var products []domain.Product
	for _, l := range parseListing(doc) {
		if !strings.Contains(strings.ToLower(l.name), q) {
			continue
		}
		ref, err := url.Parse(l.href)
		if err != nil {
			continue
		}
		products = append(products, domain.Product{
			Name:       l.name,
			Category:   categoryName(cat),
			ProductURL: c.baseURL.ResolveReference(ref).String(),
			ImageURL:   l.image,
		})
	}
	c.logger.InfoContext(ctx, "catalog products found", "query", q, "category", cat.Slug, "count", len(products))
	return products, nil
}

func categoryName(cat Category) string {
	if cat.Name != "" {
		return cat.Name
	}
	return "Outros"
}
