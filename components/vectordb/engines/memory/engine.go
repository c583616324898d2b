package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/bububa/stockcritique/components/embedder"
	"github.com/bububa/stockcritique/components/vectordb"
)

// Engine implements the VectorDB interface using in-memory storage.
// It provides thread-safe operations for managing collections and performing
// cosine similarity searches without the need for external database systems.
type Engine struct {
	// collections stores all vector collections in memory
	collections *sync.Map
	vectordb.Options
}

var (
	_ vectordb.Engine  = (*Engine)(nil)
	_ vectordb.Counter = (*Engine)(nil)
)

// Collection is a named set of records
type Collection struct {
	records map[string]vectordb.Record
	mu      sync.RWMutex
}

// Upsert adds records, replacing any record with the same ID
func (c *Collection) Upsert(records ...vectordb.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.records == nil {
		c.records = make(map[string]vectordb.Record, len(records))
	}
	for _, r := range records {
		c.records[r.ID] = r
	}
}

// Records returns a copy of the stored records
func (c *Collection) Records() []vectordb.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := make([]vectordb.Record, 0, len(c.records))
	for _, r := range c.records {
		ret = append(ret, r)
	}
	return ret
}

// Len returns number of records
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// New creates a new in-memory vector database instance.
func New(opts ...vectordb.Option) *Engine {
	return &Engine{
		collections: new(sync.Map),
		Options:     vectordb.NewOptions(vectordb.Memory, opts...),
	}
}

// HasCollection checks if a collection with the given name exists in the database.
func (e *Engine) HasCollection(name string) bool {
	_, exists := e.collections.Load(name)
	return exists
}

// DropCollection removes a collection and all its data from the database.
func (e *Engine) DropCollection(_ context.Context, name string) error {
	e.collections.Delete(name)
	return nil
}

// Collection returns the named collection, creating it if needed
func (e *Engine) Collection(name string) *Collection {
	col, _ := e.collections.LoadOrStore(name, new(Collection))
	return col.(*Collection)
}

func (e *Engine) Insert(_ context.Context, collectionName string, records ...vectordb.Record) error {
	docs := make([]vectordb.Record, 0, len(records))
	for _, record := range records {
		record.EnsureID()
		docs = append(docs, record)
	}
	e.Collection(collectionName).Upsert(docs...)
	return nil
}

func (e *Engine) Search(_ context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := vectordb.NewSearchOptions(opts...)
	if !e.HasCollection(option.Collection) {
		return nil, nil
	}
	records := e.Collection(option.Collection).Records()
	ret := make([]vectordb.Record, 0, len(records))
	for _, record := range records {
		if !recordMatchesFilters(&record, option) {
			continue
		}
		score, err := embedder.CosineSimilarity(vectors, record.Embedding.Embedding)
		if err != nil {
			return nil, err
		}
		if score < e.MinScore {
			continue
		}
		record.Score = score
		ret = append(ret, record)
	}
	slices.SortFunc(ret, func(a, b vectordb.Record) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if topK := e.Limit(option); topK > 0 && topK < len(ret) {
		ret = ret[:topK]
	}
	return ret, nil
}

// recordMatchesFilters checks if a document matches the given filters.
// A record's metadata must have all the fields in the where clause.
func recordMatchesFilters(record *vectordb.Record, opts *vectordb.SearchOptions) bool {
	for k, v := range opts.Meta {
		if record.Embedding.Meta[k] != v {
			return false
		}
	}
	if opts.Include != "" && !strings.Contains(record.Embedding.Object, opts.Include) {
		return false
	}
	if opts.Exclude != "" && strings.Contains(record.Embedding.Object, opts.Exclude) {
		return false
	}
	return true
}

func (e *Engine) Count(_ context.Context, name string) (int, error) {
	if !e.HasCollection(name) {
		return 0, nil
	}
	return e.Collection(name).Len(), nil
}
