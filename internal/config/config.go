package config

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"support-agent/internal/integrations/paramstore"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the full runtime configuration of the support agent.
type Config struct {
	LLM               LLMConfig        `yaml:"llm"`
	Store             StoreConfig      `yaml:"store"`
	KnowledgeBase     KnowledgeConfig  `yaml:"knowledge_base"`
	Similarity        SimilarityConfig `yaml:"similarity"`
	Intent            IntentConfig     `yaml:"intent"`
	Cache             CacheConfig      `yaml:"cache"`
	Storage           StorageConfig    `yaml:"storage"`
	MaxQuestionLength int              `yaml:"max_question_length"`
	LogLevel          string           `yaml:"log_level"`
}

// LLMConfig configures the completion endpoint.
type LLMConfig struct {
	APIKey      string        `yaml:"api_key"`
	APIKeyParam string        `yaml:"api_key_param"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	Referer     string        `yaml:"referer"`
	Title       string        `yaml:"title"`
}

// StoreConfig describes the storefront: where to scrape and how customers reach support.
type StoreConfig struct {
	Name         string        `yaml:"name"`
	BaseURL      string        `yaml:"base_url"`
	UserAgent    string        `yaml:"user_agent"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	SupportEmail string        `yaml:"support_email"`
	WhatsApp     string        `yaml:"whatsapp"`
	SupportHours string        `yaml:"support_hours"`
	Categories   []Category    `yaml:"categories"`
	// Featured lists category slugs suggested when a product search finds nothing.
	Featured []string `yaml:"featured"`
}

// Category maps a query keyword to a storefront category page. Order matters:
// the first keyword found in a query wins.
type Category struct {
	Keyword string `yaml:"keyword"`
	Slug    string `yaml:"slug"`
	Name    string `yaml:"name"`
}

// FeaturedCategories resolves Featured against Categories, in Featured order.
// Unknown slugs are skipped.
func (s StoreConfig) FeaturedCategories() []Category {
	out := make([]Category, 0, len(s.Featured))
	for _, slug := range s.Featured {
		for _, cat := range s.Categories {
			if cat.Slug == slug {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}

type KnowledgeConfig struct {
	// Path overrides the bundled knowledge base. Empty means embedded.
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type SimilarityConfig struct {
	Metric             string  `yaml:"metric"`
	Threshold          float64 `yaml:"threshold"`
	Limit              int     `yaml:"limit"`
	ExactMatchDistance int     `yaml:"exact_match_distance"`
}

type IntentConfig struct {
	ProductKeywords []string `yaml:"product_keywords"`
	SupportKeywords []string `yaml:"support_keywords"`
}

type CacheConfig struct {
	ResponseTTL      time.Duration `yaml:"response_ttl"`
	ResponseCapacity int           `yaml:"response_capacity"`
	ProductTTL       time.Duration `yaml:"product_ttl"`
}

type StorageConfig struct {
	DynamoTable string `yaml:"dynamo_table"`
	SQLitePath  string `yaml:"sqlite_path"`
}

// Error reports an unusable configuration. It is fatal at startup.
type Error struct {
	Field  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config: %s: %s: %v", e.Field, e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Getter reads a secret parameter by name.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, &Error{Field: "default.yaml", Reason: "parse", Err: err}
	}
	return &cfg, nil
}

// Load builds the configuration from the embedded defaults, the optional YAML file
// at path and finally the process environment.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &Error{Field: path, Reason: "read", Err: err}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &Error{Field: path, Reason: "parse", Err: err}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	envString("OPENROUTER_API_KEY", &c.LLM.APIKey)
	envString("OPENROUTER_API_KEY_PARAM", &c.LLM.APIKeyParam)
	envString("OPENROUTER_MODEL", &c.LLM.Model)
	envString("OPENROUTER_BASE_URL", &c.LLM.BaseURL)
	envString("STORE_BASE_URL", &c.Store.BaseURL)
	envString("KNOWLEDGE_BASE_PATH", &c.KnowledgeBase.Path)
	envString("INTERACTIONS_TABLE", &c.Storage.DynamoTable)
	envString("SQLITE_PATH", &c.Storage.SQLitePath)
	envString("SIMILARITY_METRIC", &c.Similarity.Metric)
	envString("LOG_LEVEL", &c.LogLevel)
	envDuration("RESPONSE_CACHE_TTL", &c.Cache.ResponseTTL)
	envDuration("PRODUCT_CACHE_TTL", &c.Cache.ProductTTL)
	envInt("RESPONSE_CACHE_CAPACITY", &c.Cache.ResponseCapacity)
	envInt("MAX_QUESTION_LENGTH", &c.MaxQuestionLength)
}

// ResolveAPIKey fills the API key from the parameter store when only the parameter
// name is configured. The stored value may be plain text or {"token": "..."}.
func (c *Config) ResolveAPIKey(ctx context.Context, getter Getter) error {
	if strings.TrimSpace(c.LLM.APIKey) != "" || strings.TrimSpace(c.LLM.APIKeyParam) == "" {
		return nil
	}
	if getter == nil {
		return &Error{Field: "llm.api_key_param", Reason: "no parameter store available"}
	}
	raw, err := getter.GetParameter(ctx, c.LLM.APIKeyParam)
	if errors.Is(err, paramstore.ErrNotFound) {
		return &Error{Field: "llm.api_key_param", Reason: fmt.Sprintf("parameter %q does not exist", c.LLM.APIKeyParam), Err: err}
	}
	if err != nil {
		return &Error{Field: "llm.api_key_param", Reason: "fetch", Err: err}
	}
	key, err := parseToken(raw)
	if err != nil {
		return &Error{Field: "llm.api_key_param", Reason: "decode", Err: err}
	}
	c.LLM.APIKey = key
	return nil
}

func parseToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		if raw == "" {
			return "", errors.New("empty value")
		}
		return raw, nil
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", fmt.Errorf("unmarshal token payload: %w", err)
	}
	if payload.Token == "" {
		return "", errors.New("API token is empty")
	}
	return payload.Token, nil
}

// Validate reports the first setting that prevents serving.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return &Error{Field: "llm.api_key", Reason: "required"}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return &Error{Field: "llm.model", Reason: "required"}
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return &Error{Field: "llm.base_url", Reason: "required"}
	}
	if strings.TrimSpace(c.Store.BaseURL) == "" {
		return &Error{Field: "store.base_url", Reason: "required"}
	}
	for i, cat := range c.Store.Categories {
		if strings.TrimSpace(cat.Keyword) == "" || strings.TrimSpace(cat.Slug) == "" {
			return &Error{Field: fmt.Sprintf("store.categories[%d]", i), Reason: "keyword and slug are required"}
		}
	}
	if len(c.Store.FeaturedCategories()) != len(c.Store.Featured) {
		return &Error{Field: "store.featured", Reason: "every slug must name a configured category"}
	}
	switch c.Similarity.Metric {
	case "", "jaro-winkler", "levenshtein":
	default:
		return &Error{Field: "similarity.metric", Reason: fmt.Sprintf("unknown metric %q", c.Similarity.Metric)}
	}
	return nil
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}

func envDuration(key string, dst *time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return
	}
	*dst = d
}
