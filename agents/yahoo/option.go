package yahoo

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultRange     = "1mo"
	DefaultInterval  = "1d"
	DefaultUserAgent = "Mozilla/5.0 (compatible; stockcritique/1.0)"
)

type Options struct {
	baseURL    string
	rangeValue string
	interval   string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Options)

func WithBaseURL(v string) Option {
	return func(o *Options) {
		o.baseURL = v
	}
}

// WithRange sets the chart range, for example 1mo or 3mo
func WithRange(v string) Option {
	return func(o *Options) {
		o.rangeValue = v
	}
}

func WithInterval(v string) Option {
	return func(o *Options) {
		o.interval = v
	}
}

func WithUserAgent(v string) Option {
	return func(o *Options) {
		o.userAgent = v
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
