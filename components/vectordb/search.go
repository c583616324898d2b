package vectordb

import "github.com/bububa/stockcritique/components/embedder"

type SearchOptions struct {
	Collection string
	TopK       int
	Meta       map[string]string
	Include    string
	Exclude    string
}

type SearchOption func(*SearchOptions)

func SearchWithCollection(name string) SearchOption {
	return func(r *SearchOptions) {
		r.Collection = name
	}
}

func SearchWithTopK(topK int) SearchOption {
	return func(r *SearchOptions) {
		r.TopK = topK
	}
}

func SearchWithMeta(meta map[string]string) SearchOption {
	return func(r *SearchOptions) {
		r.Meta = meta
	}
}

// SearchWithInclude keeps records whose content contains v
func SearchWithInclude(v string) SearchOption {
	return func(r *SearchOptions) {
		r.Include = v
	}
}

// SearchWithExclude drops records whose content contains v
func SearchWithExclude(v string) SearchOption {
	return func(r *SearchOptions) {
		r.Exclude = v
	}
}

// NewSearchOptions applies opts
func NewSearchOptions(opts ...SearchOption) *SearchOptions {
	ret := new(SearchOptions)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Record represents a single result from a vector similarity search.
type Record struct {
	// ID is the identifier for the result
	ID string
	// Score is the similarity score for the result
	Score float64
	// Embedding embeddings for doc
	Embedding embedder.Embedding
}

// EnsureID fills ID from the embedding content when empty
func (r *Record) EnsureID() {
	if r.ID == "" {
		r.ID = r.Embedding.UUID()
	}
}
