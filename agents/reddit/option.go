package reddit

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	DefaultPublicURL = "https://www.reddit.com"
	DefaultOAuthURL  = "https://oauth.reddit.com"
	DefaultTokenURL  = "https://www.reddit.com/api/v1/access_token"
	DefaultSubreddit = "stocks"
	DefaultUserAgent = "stockcritique/1.0"
)

type Options struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	subreddit    string
	userAgent    string
	maxPosts     int
	maxComments  int
	rps          float64
	httpClient   *http.Client
	logger       *zap.Logger
}

type Option func(*Options)

// WithCredentials enables application only OAuth
func WithCredentials(clientID string, clientSecret string) Option {
	return func(o *Options) {
		o.clientID = clientID
		o.clientSecret = clientSecret
	}
}

func WithBaseURL(v string) Option {
	return func(o *Options) {
		o.baseURL = v
	}
}

func WithTokenURL(v string) Option {
	return func(o *Options) {
		o.tokenURL = v
	}
}

func WithSubreddit(v string) Option {
	return func(o *Options) {
		o.subreddit = v
	}
}

func WithUserAgent(v string) Option {
	return func(o *Options) {
		o.userAgent = v
	}
}

func WithMaxPosts(n int) Option {
	return func(o *Options) {
		o.maxPosts = n
	}
}

func WithMaxComments(n int) Option {
	return func(o *Options) {
		o.maxComments = n
	}
}

// WithRPS sets the maximum number of requests per second
func WithRPS(rps float64) Option {
	return func(o *Options) {
		o.rps = rps
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
