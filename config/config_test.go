package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) lookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultThreshold, cfg.Router.Threshold)
	assert.Equal(t, DefaultAgentTimeout, cfg.Router.AgentTimeout)
	assert.Equal(t, "memory", cfg.VectorDB.Engine)
	assert.Equal(t, "stocks", cfg.Reddit.Subreddit)
	assert.Equal(t, "1mo", cfg.Yahoo.Range)
}

func TestLoadFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(fname, []byte(`
router:
  threshold: 0.55
  agent_timeout: 5s
  summary: true
llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
vectordb:
  engine: chromem
  path: ./index
corpus:
  dir: ./filings
  watch: true
reddit:
  subreddit: investing
`), 0o644))
	for _, name := range []string{"ANTHROPIC_API_KEY", EnvPrefix + "LLM_PROVIDER", EnvPrefix + "THRESHOLD", EnvPrefix + "AGENT_TIMEOUT"} {
		t.Setenv(name, "")
	}
	t.Setenv(EnvPrefix+"LOG_LEVEL", "debug")

	cfg, err := Load(fname)
	require.NoError(t, err)
	assert.Equal(t, 0.55, cfg.Router.Threshold)
	assert.Equal(t, 5*time.Second, cfg.Router.AgentTimeout)
	assert.True(t, cfg.Router.Summary)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.InDelta(t, DefaultTemperature, cfg.LLM.Temperature, 1e-6, "unset keys keep their defaults")
	assert.Equal(t, "chromem", cfg.VectorDB.Engine)
	assert.Equal(t, "./filings", cfg.Corpus.Dir)
	assert.True(t, cfg.Corpus.Watch)
	assert.Equal(t, "investing", cfg.Reddit.Subreddit)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnv(envOf(map[string]string{
		EnvPrefix + "THRESHOLD":     "0.25",
		EnvPrefix + "AGENT_TIMEOUT": "1500ms",
		EnvPrefix + "SUMMARY":       "true",
		EnvPrefix + "LLM_PROVIDER":  "cohere",
		EnvPrefix + "CORPUS_BUCKET": "filings",
		"COHERE_API_KEY":            "co-key",
		"OPENAI_API_KEY":            "oa-key",
		"REDDIT_CLIENT_ID":          "id",
		"REDDIT_CLIENT_SECRET":      "secret",
		"SEC_USER_AGENT":            "acme ops@acme.test",
	})))
	assert.Equal(t, 0.25, cfg.Router.Threshold)
	assert.Equal(t, 1500*time.Millisecond, cfg.Router.AgentTimeout)
	assert.True(t, cfg.Router.Summary)
	assert.Equal(t, "cohere", cfg.LLM.Provider)
	assert.Equal(t, "co-key", cfg.LLM.APIKey)
	assert.Equal(t, "oa-key", cfg.Embedder.APIKey)
	assert.Equal(t, "filings", cfg.Corpus.Bucket)
	assert.Equal(t, "id", cfg.Reddit.ClientID)
	assert.Equal(t, "secret", cfg.Reddit.ClientSecret)
	assert.Equal(t, "acme ops@acme.test", cfg.SEC.UserAgent)
}

func TestApplyEnvExplicitKeyWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "from-file"
	require.NoError(t, cfg.applyEnv(envOf(map[string]string{"OPENAI_API_KEY": "from-env"})))
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, "from-env", cfg.Embedder.APIKey)
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "threshold", env: map[string]string{EnvPrefix + "THRESHOLD": "high"}},
		{name: "timeout", env: map[string]string{EnvPrefix + "AGENT_TIMEOUT": "10"}},
		{name: "summary", env: map[string]string{EnvPrefix + "SUMMARY": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, DefaultConfig().applyEnv(envOf(tt.env)))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{name: "threshold above one", modify: func(c *Config) { c.Router.Threshold = 1.5 }, field: "Threshold"},
		{name: "zero timeout", modify: func(c *Config) { c.Router.AgentTimeout = 0 }, field: "AgentTimeout"},
		{name: "unknown provider", modify: func(c *Config) { c.LLM.Provider = "llama" }, field: "Provider"},
		{name: "model required", modify: func(c *Config) { c.LLM.Model = "" }, field: "Model"},
		{name: "milvus address", modify: func(c *Config) { c.VectorDB.Engine = "milvus" }, field: "Address"},
		{name: "reddit secret", modify: func(c *Config) { c.Reddit.ClientID = "id" }, field: "ClientSecret"},
		{name: "sec rate", modify: func(c *Config) { c.SEC.RPS = 50 }, field: "RPS"},
		{name: "chart range", modify: func(c *Config) { c.Yahoo.Range = "2w" }, field: "Range"},
		{name: "log level", modify: func(c *Config) { c.Log.Level = "trace" }, field: "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	cfg := DefaultConfig()
	cfg.LLM.Provider = "none"
	cfg.LLM.Model = ""
	assert.NoError(t, cfg.Validate())
}
