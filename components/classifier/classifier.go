// Package classifier scores how finance related a query is
package classifier

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/bububa/stockcritique/components"
	"github.com/bububa/stockcritique/components/embedder"
	"github.com/bububa/stockcritique/components/vectordb"
	"github.com/bububa/stockcritique/components/vectordb/engines/memory"
	"github.com/bububa/stockcritique/mcp"
)

// DefaultCollection is the vector collection holding the embedded lexicon
const DefaultCollection = "finance_lexicon"

// Scorer returns a relevance score in [0,1]
type Scorer interface {
	Classify(ctx context.Context, query string) (float64, error)
}

// Classifier scores a query as its highest cosine similarity to any lexicon topic
type Classifier struct {
	embedder embedder.Embedder
	Options
	// mu guards the lexicon and its embedded state
	mu       sync.Mutex
	embedded bool
}

var _ Scorer = (*Classifier)(nil)

type Options struct {
	topics     []string
	engine     vectordb.Engine
	collection string
}

type Option func(*Options)

// WithTopics replaces the default lexicon
func WithTopics(topics ...string) Option {
	return func(o *Options) {
		o.topics = MergeTopics(topics)
	}
}

// WithEngine stores the embedded lexicon in engine, an in-memory engine is used by default
func WithEngine(engine vectordb.Engine) Option {
	return func(o *Options) {
		o.engine = engine
	}
}

func WithCollection(name string) Option {
	return func(o *Options) {
		o.collection = name
	}
}

func New(e embedder.Embedder, opts ...Option) *Classifier {
	ret := &Classifier{
		embedder: e,
		Options: Options{
			topics:     slices.Clone(DefaultTopics),
			collection: DefaultCollection,
		},
	}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.engine == nil {
		ret.engine = memory.New()
	}
	return ret
}

// Topics returns the current lexicon
func (c *Classifier) Topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.topics)
}

// SetTopics replaces the lexicon, it is embedded again on the next Classify
func (c *Classifier) SetTopics(topics []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = MergeTopics(topics)
	c.embedded = false
}

// Classify embeds query and returns its maximum similarity to the lexicon.
// Backend errors match mcp.ErrClassifierUnavailable.
func (c *Classifier) Classify(ctx context.Context, query string) (float64, error) {
	if strings.TrimSpace(query) == "" {
		return 0, nil
	}
	if err := c.embedLexicon(ctx); err != nil {
		return 0, unavailable(err)
	}
	var (
		embedding embedder.Embedding
		usage     = new(components.LLMUsage)
	)
	if err := c.embedder.Embed(ctx, query, &embedding, usage); err != nil {
		return 0, unavailable(err)
	}
	records, err := c.engine.Search(ctx, embedding.Embedding,
		vectordb.SearchWithCollection(c.collection),
		vectordb.SearchWithTopK(1))
	if err != nil {
		return 0, unavailable(err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return clamp(records[0].Score), nil
}

func (c *Classifier) embedLexicon(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.embedded {
		return nil
	}
	if err := c.engine.DropCollection(ctx, c.collection); err != nil {
		return err
	}
	if len(c.topics) == 0 {
		c.embedded = true
		return nil
	}
	embeddings, err := c.embedder.BatchEmbed(ctx, c.topics, new(components.LLMUsage))
	if err != nil {
		return err
	}
	records := make([]vectordb.Record, 0, len(embeddings))
	for _, embedding := range embeddings {
		embedding.Meta = map[string]string{"topic": embedding.Object}
		records = append(records, vectordb.Record{Embedding: embedding})
	}
	if err := c.engine.Insert(ctx, c.collection, records...); err != nil {
		return err
	}
	c.embedded = true
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", mcp.ErrClassifierUnavailable, err)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
