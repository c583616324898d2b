package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	milvusClient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/bububa/stockcritique/components/embedder"
	"github.com/bububa/stockcritique/components/vectordb"
)

const (
	fieldID        = "id"
	fieldEmbedding = "embedding"
	fieldContent   = "content"
	fieldMeta      = "meta"

	maxContentLength = 65535
)

type Engine struct {
	db milvusClient.Client
	vectordb.Options
}

var (
	_ vectordb.Engine  = (*Engine)(nil)
	_ vectordb.Counter = (*Engine)(nil)
)

func New(db milvusClient.Client, opts ...vectordb.Option) *Engine {
	return &Engine{
		db:      db,
		Options: vectordb.NewOptions(vectordb.Milvus, opts...),
	}
}

// Dial connects to a milvus server
func Dial(ctx context.Context, address string, opts ...vectordb.Option) (*Engine, error) {
	db, err := milvusClient.NewClient(ctx, milvusClient.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("milvus: %w", err)
	}
	return New(db, opts...), nil
}

func (e *Engine) CreateCollection(ctx context.Context, name string, dim int64) error {
	idField := entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(36).WithIsPrimaryKey(true).WithIsAutoID(false)
	vectorField := entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(dim)
	contentField := entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxContentLength)
	metaField := entity.NewField().WithName(fieldMeta).WithDataType(entity.FieldTypeJSON)
	schema := entity.NewSchema().WithName(name).WithAutoID(false).WithField(idField).WithField(vectorField).WithField(contentField).WithField(metaField)
	if err := e.db.CreateCollection(ctx, schema, 1); err != nil {
		return err
	}
	idxHnsw, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return err
	}
	return e.db.CreateIndex(ctx, name, fieldEmbedding, idxHnsw, false)
}

func (e *Engine) DropCollection(ctx context.Context, name string) error {
	if exists, err := e.db.HasCollection(ctx, name); err != nil || !exists {
		return err
	}
	return e.db.DropCollection(ctx, name)
}

// Count reads the row count from the collection statistics
func (e *Engine) Count(ctx context.Context, name string) (int, error) {
	if exists, err := e.db.HasCollection(ctx, name); err != nil || !exists {
		return 0, err
	}
	stats, err := e.db.GetCollectionStatistics(ctx, name)
	if err != nil {
		return 0, err
	}
	rows, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("milvus: row_count: %w", err)
	}
	return rows, nil
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	dim := len(records[0].Embedding.Embedding)
	if exists, err := e.db.HasCollection(ctx, collectionName); err != nil {
		return err
	} else if !exists {
		if err := e.CreateCollection(ctx, collectionName, int64(dim)); err != nil {
			return err
		}
	}
	var (
		ids      = make([]string, 0, len(records))
		vectors  = make([][]float32, 0, len(records))
		contents = make([]string, 0, len(records))
		metas    = make([][]byte, 0, len(records))
	)
	for _, record := range records {
		record.EnsureID()
		if len(record.Embedding.Embedding) != dim {
			return embedder.ErrVectorLengthMismatch
		}
		meta := record.Embedding.Meta
		if meta == nil {
			meta = map[string]string{}
		}
		bs, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		ids = append(ids, record.ID)
		vectors = append(vectors, vectordb.Float32s(record.Embedding.Embedding))
		contents = append(contents, truncate(record.Embedding.Object, maxContentLength))
		metas = append(metas, bs)
	}
	if _, err := e.db.Upsert(ctx, collectionName, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnFloatVector(fieldEmbedding, dim, vectors),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnJSONBytes(fieldMeta, metas),
	); err != nil {
		return err
	}
	return e.db.Flush(ctx, collectionName, false)
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := vectordb.NewSearchOptions(opts...)
	if exists, err := e.db.HasCollection(ctx, option.Collection); err != nil || !exists {
		return nil, err
	}
	if err := e.db.LoadCollection(ctx, option.Collection, false); err != nil {
		return nil, err
	}
	topK := e.Limit(option)
	searchParams, err := entity.NewIndexHNSWSearchParam(max(topK, 16))
	if err != nil {
		return nil, err
	}
	query := entity.FloatVector(vectordb.Float32s(vectors))
	results, err := e.db.Search(ctx, option.Collection, nil, filterExpr(option), []string{fieldID, fieldContent, fieldMeta}, []entity.Vector{query}, fieldEmbedding, entity.COSINE, topK, searchParams)
	if err != nil {
		return nil, err
	}
	var searchResults []vectordb.Record
	for _, result := range results {
		if result.Err != nil {
			return nil, result.Err
		}
		for i := 0; i < result.ResultCount; i++ {
			var record vectordb.Record
			searchResultToRecord(&result, i, &record)
			if record.Score < e.MinScore {
				continue
			}
			searchResults = append(searchResults, record)
		}
	}
	return searchResults, nil
}

// filterExpr renders search filters as a milvus boolean expression
func filterExpr(opts *vectordb.SearchOptions) string {
	keys := make([]string, 0, len(opts.Meta))
	for k := range opts.Meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	exprs := make([]string, 0, len(keys)+2)
	for _, k := range keys {
		exprs = append(exprs, fmt.Sprintf("%s[%s] == %s", fieldMeta, strconv.Quote(k), strconv.Quote(opts.Meta[k])))
	}
	if opts.Include != "" {
		exprs = append(exprs, fmt.Sprintf("%s like %s", fieldContent, strconv.Quote("%"+escapeLike(opts.Include)+"%")))
	}
	if opts.Exclude != "" {
		exprs = append(exprs, fmt.Sprintf("not (%s like %s)", fieldContent, strconv.Quote("%"+escapeLike(opts.Exclude)+"%")))
	}
	return strings.Join(exprs, " and ")
}

func escapeLike(v string) string {
	return strings.NewReplacer("%", `\%`, "_", `\_`).Replace(v)
}

func truncate(v string, n int) string {
	if len(v) <= n {
		return v
	}
	return v[:n]
}

func searchResultToRecord(result *milvusClient.SearchResult, idx int, record *vectordb.Record) {
	if idx < len(result.Scores) {
		record.Score = float64(result.Scores[idx])
	}
	if col := result.Fields.GetColumn(fieldID); col != nil {
		record.ID, _ = col.GetAsString(idx)
	} else if result.IDs != nil {
		record.ID, _ = result.IDs.GetAsString(idx)
	}
	if col := result.Fields.GetColumn(fieldContent); col != nil {
		record.Embedding.Object, _ = col.GetAsString(idx)
	}
	if col := result.Fields.GetColumn(fieldMeta); col != nil {
		if v, err := col.Get(idx); err == nil {
			if bs, ok := v.([]byte); ok {
				_ = json.Unmarshal(bs, &record.Embedding.Meta)
			}
		}
	}
}
