package searxng

import (
	"net/http"

	"github.com/bububa/stockcritique/tools"
)

type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.language = lang
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

func WithEngines(engines string) Option {
	return func(c *Config) {
		c.engines = engines
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

// WithToolOptions applies shared tool options
func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}
