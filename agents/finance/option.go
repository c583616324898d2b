package finance

import (
	"go.uber.org/zap"

	"github.com/bububa/stockcritique/components/document/parsers"
	"github.com/bububa/stockcritique/components/embedder"
)

type Options struct {
	chunker     embedder.Chunker
	parsers     *parsers.Registry
	collection  string
	topK        int
	snippetSize int
	tickerOf    func(company string) string
	logger      *zap.Logger
}

type Option func(*Options)

// WithChunker sets the splitter used on parsed documents
func WithChunker(chunker embedder.Chunker) Option {
	return func(o *Options) {
		o.chunker = chunker
	}
}

// WithParsers sets the parser registry
func WithParsers(r *parsers.Registry) Option {
	return func(o *Options) {
		o.parsers = r
	}
}

// WithCollection sets the vector collection holding the index
func WithCollection(name string) Option {
	return func(o *Options) {
		o.collection = name
	}
}

// WithTopK sets the number of chunks returned per company
func WithTopK(k int) Option {
	return func(o *Options) {
		o.topK = k
	}
}

// WithSnippetSize sets the maximum number of characters kept per chunk
func WithSnippetSize(n int) Option {
	return func(o *Options) {
		o.snippetSize = n
	}
}

// WithTickerResolver maps a company name to its ticker. Documents are tagged
// with the ticker so aliases of one company find each other's filings.
func WithTickerResolver(fn func(company string) string) Option {
	return func(o *Options) {
		o.tickerOf = fn
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.logger = l
	}
}
