package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/stockcritique/components/embedder"
	"github.com/bububa/stockcritique/components/vectordb"
)

func record(id, text string, vec []float64, meta map[string]string) vectordb.Record {
	return vectordb.Record{
		ID: id,
		Embedding: embedder.Embedding{
			Object:    text,
			Embedding: vec,
			Meta:      meta,
		},
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	engine := New(vectordb.WithTopK(2))
	require.NoError(t, engine.Insert(ctx, "docs",
		record("a", "tesla revenue", []float64{1, 0}, map[string]string{"company": "tesla"}),
		record("b", "apple revenue", []float64{0.6, 0.8}, map[string]string{"company": "apple"}),
		record("c", "weather report", []float64{0, 1}, nil),
	))

	t.Run("ordered by similarity", func(t *testing.T) {
		got, err := engine.Search(ctx, []float64{1, 0}, vectordb.SearchWithCollection("docs"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.InDelta(t, 1.0, got[0].Score, 1e-9)
		assert.Equal(t, "b", got[1].ID)
		assert.InDelta(t, 0.6, got[1].Score, 1e-9)
	})

	t.Run("meta filter", func(t *testing.T) {
		got, err := engine.Search(ctx, []float64{1, 0},
			vectordb.SearchWithCollection("docs"),
			vectordb.SearchWithMeta(map[string]string{"company": "apple"}))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})

	t.Run("exclude", func(t *testing.T) {
		got, err := engine.Search(ctx, []float64{1, 0},
			vectordb.SearchWithCollection("docs"),
			vectordb.SearchWithTopK(5),
			vectordb.SearchWithExclude("revenue"))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].ID)
	})

	t.Run("missing collection", func(t *testing.T) {
		got, err := engine.Search(ctx, []float64{1, 0}, vectordb.SearchWithCollection("none"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := engine.Search(ctx, []float64{1, 0, 0}, vectordb.SearchWithCollection("docs"))
		assert.ErrorIs(t, err, embedder.ErrVectorLengthMismatch)
	})
}

func TestInsertUpsertsByID(t *testing.T) {
	ctx := context.Background()
	engine := New()
	rec := record("", "same text", []float64{1}, nil)
	require.NoError(t, engine.Insert(ctx, "docs", rec))
	require.NoError(t, engine.Insert(ctx, "docs", rec))
	assert.Equal(t, 1, engine.Collection("docs").Len())

	require.NoError(t, engine.DropCollection(ctx, "docs"))
	assert.False(t, engine.HasCollection("docs"))
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	engine := New()
	n, err := engine.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, engine.Insert(ctx, "docs",
		record("a", "tesla", []float64{1, 0}, nil),
		record("b", "apple", []float64{0, 1}, nil),
	))
	n, err = engine.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
