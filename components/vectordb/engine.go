package vectordb

import (
	"context"
)

type EngineType string

const (
	Memory  EngineType = "memory"
	Chromem EngineType = "chromem"
	Milvus  EngineType = "milvus"
)

// Engine stores embeddings in named collections and answers similarity queries.
// Record scores returned by Search are similarities, higher is closer.
type Engine interface {
	Insert(ctx context.Context, collection string, records ...Record) error
	Search(ctx context.Context, vectors []float64, opts ...SearchOption) ([]Record, error)
	DropCollection(ctx context.Context, collection string) error
}

// Counter is implemented by engines able to report how many records a collection holds.
// A collection that does not exist counts zero.
type Counter interface {
	Count(ctx context.Context, collection string) (int, error)
}
