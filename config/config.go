// Package config loads the StockCritique configuration from a YAML file and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultThreshold    = 0.4
	DefaultAgentTimeout = 20 * time.Second
	DefaultLLMModel     = "gpt-4o-mini"
	DefaultMaxTokens    = 1024
	DefaultTemperature  = 0.3
	DefaultCorpusDir    = "./data"
	DefaultSECCacheTTL  = 24 * time.Hour
	// EnvPrefix prefixes every StockCritique environment override
	EnvPrefix = "STOCKCRITIQUE_"
)

type Config struct {
	Router   RouterConfig   `yaml:"router"`
	LLM      LLMConfig      `yaml:"llm"`
	Embedder EmbedderConfig `yaml:"embedder"`
	VectorDB VectorDBConfig `yaml:"vectordb"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Entities EntitiesConfig `yaml:"entities"`
	SEC      SECConfig      `yaml:"sec"`
	Reddit   RedditConfig   `yaml:"reddit"`
	Yahoo    YahooConfig    `yaml:"yahoo"`
	Search   SearchConfig   `yaml:"search"`
	Log      LogConfig      `yaml:"log"`
}

type RouterConfig struct {
	Threshold    float64       `yaml:"threshold" validate:"gte=0,lte=1"`
	AgentTimeout time.Duration `yaml:"agent_timeout" validate:"gt=0"`
	// Summary enables the comprehensive report across agents
	Summary bool `yaml:"summary"`
}

// LLMConfig selects the chat model used by the General agent, the refiner and the summarizer.
// Provider none disables them, refinement then falls back to the structural rendering.
type LLMConfig struct {
	Provider    string  `yaml:"provider" validate:"oneof=none openai anthropic cohere"`
	Model       string  `yaml:"model" validate:"required_unless=Provider none"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
}

// EmbedderConfig selects the embedding model. Provider none uses the keyword
// classifier and leaves the Finance index empty.
type EmbedderConfig struct {
	Provider string `yaml:"provider" validate:"oneof=none openai cohere gemini"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

type VectorDBConfig struct {
	Engine  string `yaml:"engine" validate:"oneof=memory chromem milvus"`
	Path    string `yaml:"path"`
	Address string `yaml:"address" validate:"required_if=Engine milvus"`
	TopK    int    `yaml:"top_k" validate:"gte=0"`
}

// CorpusConfig locates the finance documents, a Bucket takes precedence over Dir
type CorpusConfig struct {
	Dir    string `yaml:"dir"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
	Watch  bool   `yaml:"watch"`
}

type EntitiesConfig struct {
	File string `yaml:"file" validate:"omitempty,file"`
}

type SECConfig struct {
	UserAgent string        `yaml:"user_agent" validate:"required"`
	CacheDir  string        `yaml:"cache_dir"`
	CacheTTL  time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	RPS       float64       `yaml:"rps" validate:"gt=0,lte=10"`
}

type RedditConfig struct {
	ClientID     string  `yaml:"client_id" validate:"required_with=ClientSecret"`
	ClientSecret string  `yaml:"client_secret" validate:"required_with=ClientID"`
	Subreddit    string  `yaml:"subreddit" validate:"required"`
	RPS          float64 `yaml:"rps" validate:"gt=0"`
	MaxPosts     int     `yaml:"max_posts" validate:"gte=0"`
}

type YahooConfig struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	Range   string `yaml:"range" validate:"chart_range"`
}

// SearchConfig enables web context for the General agent when BaseURL points to a SearxNG instance
type SearchConfig struct {
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	MaxResults int    `yaml:"max_results" validate:"gte=0"`
	Scrape     bool   `yaml:"scrape"`
}

type LogConfig struct {
	Level       string   `yaml:"level" validate:"oneof=debug info warn error"`
	Format      string   `yaml:"format" validate:"oneof=json console"`
	OutputPaths []string `yaml:"output_paths"`
}

func DefaultConfig() *Config {
	return &Config{
		Router: RouterConfig{
			Threshold:    DefaultThreshold,
			AgentTimeout: DefaultAgentTimeout,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       DefaultLLMModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		VectorDB: VectorDBConfig{
			Engine: "memory",
			TopK:   3,
		},
		Corpus: CorpusConfig{
			Dir: DefaultCorpusDir,
		},
		SEC: SECConfig{
			UserAgent: "stockcritique admin@example.com",
			CacheTTL:  DefaultSECCacheTTL,
			RPS:       10,
		},
		Reddit: RedditConfig{
			Subreddit: "stocks",
			RPS:       1,
			MaxPosts:  3,
		},
		Yahoo: YahooConfig{
			Range: "1mo",
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stderr"},
		},
	}
}

// Load reads fname over the defaults, applies environment overrides and validates the result.
// An empty fname loads the defaults only.
func Load(fname string) (*Config, error) {
	cfg := DefaultConfig()
	if fname != "" {
		bs, err := os.ReadFile(fname)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(bs, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags of every section
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("chart_range", validChartRange); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			msgs := make([]string, 0, len(errs))
			for _, e := range errs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// validChartRange validates a Yahoo chart range
func validChartRange(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max":
		return true
	}
	return false
}

var providerKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"cohere":    "COHERE_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str(EnvPrefix+"LLM_PROVIDER", &c.LLM.Provider)
	str(EnvPrefix+"LLM_MODEL", &c.LLM.Model)
	str(EnvPrefix+"LLM_API_KEY", &c.LLM.APIKey)
	str(EnvPrefix+"LLM_BASE_URL", &c.LLM.BaseURL)
	str(EnvPrefix+"EMBEDDER_PROVIDER", &c.Embedder.Provider)
	str(EnvPrefix+"EMBEDDER_MODEL", &c.Embedder.Model)
	str(EnvPrefix+"VECTORDB_ENGINE", &c.VectorDB.Engine)
	str(EnvPrefix+"VECTORDB_PATH", &c.VectorDB.Path)
	str(EnvPrefix+"VECTORDB_ADDRESS", &c.VectorDB.Address)
	str(EnvPrefix+"CORPUS_DIR", &c.Corpus.Dir)
	str(EnvPrefix+"CORPUS_BUCKET", &c.Corpus.Bucket)
	str(EnvPrefix+"CORPUS_PREFIX", &c.Corpus.Prefix)
	str(EnvPrefix+"ENTITIES_FILE", &c.Entities.File)
	str(EnvPrefix+"SEARXNG_URL", &c.Search.BaseURL)
	str(EnvPrefix+"LOG_LEVEL", &c.Log.Level)
	str(EnvPrefix+"LOG_FORMAT", &c.Log.Format)
	str("SEC_USER_AGENT", &c.SEC.UserAgent)
	str("REDDIT_CLIENT_ID", &c.Reddit.ClientID)
	str("REDDIT_CLIENT_SECRET", &c.Reddit.ClientSecret)
	if v, ok := lookup(EnvPrefix + "THRESHOLD"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sTHRESHOLD: %w", EnvPrefix, err)
		}
		c.Router.Threshold = f
	}
	if v, ok := lookup(EnvPrefix + "AGENT_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sAGENT_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Router.AgentTimeout = d
	}
	if v, ok := lookup(EnvPrefix + "SUMMARY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSUMMARY: %w", EnvPrefix, err)
		}
		c.Router.Summary = b
	}
	if c.LLM.APIKey == "" {
		if name, ok := providerKeys[c.LLM.Provider]; ok {
			str(name, &c.LLM.APIKey)
		}
	}
	if c.Embedder.APIKey == "" {
		if name, ok := providerKeys[c.Embedder.Provider]; ok {
			str(name, &c.Embedder.APIKey)
		}
	}
	return nil
}
