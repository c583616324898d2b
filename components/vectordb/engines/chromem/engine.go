package chromem

import (
	"context"
	"runtime"

	"github.com/philippgille/chromem-go"

	"github.com/bububa/stockcritique/components/vectordb"
)

type Engine struct {
	db *chromem.DB
	vectordb.Options
}

var (
	_ vectordb.Engine  = (*Engine)(nil)
	_ vectordb.Counter = (*Engine)(nil)
)

func New(db *chromem.DB, opts ...vectordb.Option) *Engine {
	return &Engine{
		db:      db,
		Options: vectordb.NewOptions(vectordb.Chromem, opts...),
	}
}

// NewPersistent opens a chromem database persisted under path, an empty path keeps it in memory
func NewPersistent(path string, opts ...vectordb.Option) (*Engine, error) {
	if path == "" {
		return New(chromem.NewDB(), opts...), nil
	}
	db, err := chromem.NewPersistentDB(path, true)
	if err != nil {
		return nil, err
	}
	return New(db, opts...), nil
}

// Collection returns the named collection. Embeddings are always supplied by
// the caller so the collection carries no embedding func.
func (e *Engine) Collection(name string) (*chromem.Collection, error) {
	return e.db.GetOrCreateCollection(name, nil, noEmbedding)
}

func (e *Engine) DropCollection(_ context.Context, name string) error {
	return e.db.DeleteCollection(name)
}

// Count reports the documents of a collection, persisted collections included
func (e *Engine) Count(_ context.Context, name string) (int, error) {
	col := e.db.GetCollection(name, noEmbedding)
	if col == nil {
		return 0, nil
	}
	return col.Count(), nil
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	col, err := e.Collection(collectionName)
	if err != nil {
		return err
	}
	docs := make([]chromem.Document, 0, len(records))
	for _, record := range records {
		var doc chromem.Document
		recordToDocument(&record, &doc)
		docs = append(docs, doc)
	}
	return col.AddDocuments(ctx, docs, runtime.NumCPU())
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := vectordb.NewSearchOptions(opts...)
	col, err := e.Collection(option.Collection)
	if err != nil {
		return nil, err
	}
	// chromem rejects nResults larger than the collection
	topK := min(e.Limit(option), col.Count())
	if topK <= 0 {
		return nil, nil
	}
	whereDocument := make(map[string]string, 2)
	if option.Include != "" {
		whereDocument["$contains"] = option.Include
	}
	if option.Exclude != "" {
		whereDocument["$not_contains"] = option.Exclude
	}
	results, err := col.QueryEmbedding(ctx, vectordb.Float32s(vectors), topK, option.Meta, whereDocument)
	if err != nil {
		return nil, err
	}
	searchResults := make([]vectordb.Record, 0, len(results))
	for _, result := range results {
		var rec vectordb.Record
		resultToRecord(&result, &rec)
		if rec.Score < e.MinScore {
			continue
		}
		searchResults = append(searchResults, rec)
	}
	return searchResults, nil
}

func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errMissingEmbedding
}

func resultToRecord(res *chromem.Result, record *vectordb.Record) {
	record.ID = res.ID
	record.Score = float64(res.Similarity)
	record.Embedding.Object = res.Content
	record.Embedding.Meta = res.Metadata
}

func recordToDocument(record *vectordb.Record, doc *chromem.Document) {
	record.EnsureID()
	doc.ID = record.ID
	doc.Content = record.Embedding.Object
	doc.Metadata = record.Embedding.Meta
	doc.Embedding = vectordb.Float32s(record.Embedding.Embedding)
}
