package sec

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL    = "https://data.sec.gov"
	DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"
	DefaultUserAgent  = "stockcritique admin@example.com"
	// DefaultRPS is the SEC fair access limit
	DefaultRPS = 10
)

type Options struct {
	baseURL    string
	tickersURL string
	userAgent  string
	rps        float64
	cache      Cache
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Options)

func WithBaseURL(v string) Option {
	return func(o *Options) {
		o.baseURL = v
	}
}

// WithTickersURL sets the location of the ticker to CIK lookup file
func WithTickersURL(v string) Option {
	return func(o *Options) {
		o.tickersURL = v
	}
}

// WithUserAgent sets the declared user agent, SEC rejects anonymous clients
func WithUserAgent(v string) Option {
	return func(o *Options) {
		o.userAgent = v
	}
}

// WithRPS sets the maximum number of requests per second
func WithRPS(rps float64) Option {
	return func(o *Options) {
		o.rps = rps
	}
}

func WithCache(c Cache) Option {
	return func(o *Options) {
		o.cache = c
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(o *Options) {
		o.httpClient = clt
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.logger = l
	}
}
