// Package finance retrieves company information from the internal document corpus
package finance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bububa/stockcritique/components"
	"github.com/bububa/stockcritique/components/document"
	"github.com/bububa/stockcritique/components/document/parsers"
	"github.com/bububa/stockcritique/components/embedder"
	"github.com/bububa/stockcritique/components/vectordb"
	"github.com/bububa/stockcritique/mcp"
)

// DefaultCollection is the vector collection holding the corpus chunks
const DefaultCollection = "finance_documents"

// ErrNotIndexed is returned by Run before the first successful Index
var ErrNotIndexed = errors.New("finance: document index not built")

// Stats describes an indexing run
type Stats struct {
	Documents int                 `json:"documents"`
	Chunks    int                 `json:"chunks"`
	Failed    []string            `json:"failed,omitempty"`
	Companies []string            `json:"companies"`
	Usage     components.LLMUsage `json:"usage"`
}

// Document is a retrieved chunk
type Document struct {
	Company  string            `json:"company"`
	Ticker   string            `json:"ticker,omitempty"`
	FileName string            `json:"file_name"`
	Year     string            `json:"year"`
	Score    float64           `json:"score"`
	Content  string            `json:"content"`
	Metrics  map[string]string `json:"metrics,omitempty"`
}

// Agent is the Finance agent
type Agent struct {
	Options
	embedder  embedder.Embedder
	engine    vectordb.Engine
	mu        sync.RWMutex
	companies []string
	indexed   bool
}

var _ mcp.Agent = (*Agent)(nil)

func New(e embedder.Embedder, engine vectordb.Engine, opts ...Option) *Agent {
	ret := &Agent{
		embedder: e,
		engine:   engine,
	}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.collection == "" {
		ret.collection = DefaultCollection
	}
	if ret.topK <= 0 {
		ret.topK = 3
	}
	if ret.snippetSize <= 0 {
		ret.snippetSize = 1000
	}
	if ret.parsers == nil {
		ret.parsers = parsers.New()
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	return ret
}

func (a *Agent) Name() string {
	return mcp.AgentFinance
}

// Companies returns the companies found in the index
func (a *Agent) Companies() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.companies)
}

// Index rebuilds the vector index from every supported document of the corpus.
// A document which fails to parse or embed is skipped and reported in Stats.
func (a *Agent) Index(ctx context.Context, corpus document.Corpus) (*Stats, error) {
	if a.embedder == nil || a.engine == nil {
		return nil, errors.New("finance: embedder and vector engine are required")
	}
	ids, err := corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("finance: list corpus: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.engine.DropCollection(ctx, a.collection); err != nil {
		return nil, fmt.Errorf("finance: drop collection: %w", err)
	}
	stats := new(Stats)
	var companies []string
	for _, id := range ids {
		if !document.Supported(id) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n, company, err := a.indexDocument(ctx, corpus, id, &stats.Usage)
		if err != nil {
			a.logger.Warn("index document failed", zap.String("id", id), zap.Error(err))
			stats.Failed = append(stats.Failed, id)
			continue
		}
		stats.Documents++
		stats.Chunks += n
		if !slices.Contains(companies, company) {
			companies = append(companies, company)
		}
	}
	slices.Sort(companies)
	stats.Companies = companies
	a.companies = companies
	a.indexed = true
	a.logger.Info("finance index built",
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks),
		zap.Int("failed", len(stats.Failed)),
	)
	return stats, nil
}

// Resume serves an index left by an earlier run when the engine reports a
// populated collection, it reports false when Index still has to run.
// Companies are taken from the corpus listing.
func (a *Agent) Resume(ctx context.Context, corpus document.Lister) (bool, error) {
	counter, ok := a.engine.(vectordb.Counter)
	if !ok || a.embedder == nil {
		return false, nil
	}
	n, err := counter.Count(ctx, a.collection)
	if err != nil {
		return false, fmt.Errorf("finance: count collection: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	ids, err := corpus.List(ctx)
	if err != nil {
		return false, fmt.Errorf("finance: list corpus: %w", err)
	}
	var companies []string
	for _, id := range ids {
		if !document.Supported(id) {
			continue
		}
		if company, _ := DocumentMeta(id); !slices.Contains(companies, company) {
			companies = append(companies, company)
		}
	}
	slices.Sort(companies)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.companies = companies
	a.indexed = true
	a.logger.Info("finance index resumed", zap.Int("chunks", n), zap.Int("companies", len(companies)))
	return true, nil
}

func (a *Agent) indexDocument(ctx context.Context, corpus document.Corpus, id string, usage *components.LLMUsage) (int, string, error) {
	obj, err := corpus.Open(ctx, id)
	if err != nil {
		return 0, "", err
	}
	defer obj.Close()
	buf := new(bytes.Buffer)
	if err := a.parsers.Parse(ctx, obj, buf); err != nil {
		return 0, "", err
	}
	content := strings.TrimSpace(buf.String())
	if content == "" {
		return 0, "", errors.New("empty document")
	}
	var parts []string
	if a.chunker != nil {
		parts = a.chunker.SplitText(content)
	} else {
		parts = []string{content}
	}
	if len(parts) == 0 {
		return 0, "", errors.New("no chunk")
	}
	embeddings, err := a.embedder.BatchEmbed(ctx, parts, usage)
	if err != nil {
		return 0, "", err
	}
	meta := obj.Meta()
	fileName := meta["file_name"]
	if fileName == "" {
		fileName = id
	}
	company, year := DocumentMeta(fileName)
	meta["file_name"] = fileName
	meta["company"] = company
	meta["year"] = year
	if ticker := a.ticker(company); ticker != "" {
		meta["ticker"] = ticker
	}
	records := make([]vectordb.Record, 0, len(embeddings))
	for _, embedding := range embeddings {
		embedding.Meta = meta
		records = append(records, vectordb.Record{Embedding: embedding})
	}
	if err := a.engine.Insert(ctx, a.collection, records...); err != nil {
		return 0, "", err
	}
	return len(records), company, nil
}

// Run searches the index for every company of the query, or the whole corpus when the query names none
func (a *Agent) Run(ctx context.Context, req *mcp.Request) (*mcp.Result, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.indexed {
		return nil, ErrNotIndexed
	}
	query := req.Context.RawQuery()
	companies := req.Context.Companies()
	var (
		docs    []Document
		missing []string
	)
	metrics := make(map[string]map[string]string)
	if len(companies) == 0 {
		found, err := a.search(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		docs = found
	}
	for _, company := range companies {
		found, err := a.searchCompany(ctx, query, company)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			missing = append(missing, company)
			continue
		}
		merged := make(map[string]string)
		for _, doc := range found {
			for k, v := range doc.Metrics {
				if _, ok := merged[k]; !ok {
					merged[k] = v
				}
			}
		}
		if len(merged) > 0 {
			metrics[company] = merged
		}
		docs = append(docs, found...)
	}
	data := map[string]any{
		"documents": docs,
		"metrics":   metrics,
	}
	if len(missing) > 0 {
		data["missing"] = missing
	}
	return mcp.NewResult(data), nil
}

// searchCompany looks a company up by ticker first so an alias matches filings
// named after another name of the company, then by the name itself
func (a *Agent) searchCompany(ctx context.Context, query string, company string) ([]Document, error) {
	text := company + " " + query
	if ticker := a.ticker(company); ticker != "" {
		found, err := a.search(ctx, text, map[string]string{"ticker": ticker})
		if err != nil || len(found) > 0 {
			return found, err
		}
	}
	return a.search(ctx, text, map[string]string{"company": company})
}

func (a *Agent) ticker(company string) string {
	if a.tickerOf == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(a.tickerOf(company)))
}

func (a *Agent) search(ctx context.Context, text string, filter map[string]string) ([]Document, error) {
	var embedding embedder.Embedding
	if err := a.embedder.Embed(ctx, text, &embedding, nil); err != nil {
		return nil, fmt.Errorf("finance: embed query: %w", err)
	}
	opts := []vectordb.SearchOption{
		vectordb.SearchWithCollection(a.collection),
		vectordb.SearchWithTopK(a.topK),
	}
	if len(filter) > 0 {
		opts = append(opts, vectordb.SearchWithMeta(filter))
	}
	records, err := a.engine.Search(ctx, embedding.Embedding, opts...)
	if err != nil {
		return nil, fmt.Errorf("finance: search: %w", err)
	}
	ret := make([]Document, 0, len(records))
	for _, record := range records {
		meta := record.Embedding.Meta
		snippet := truncate(record.Embedding.Object, a.snippetSize)
		ret = append(ret, Document{
			Company:  meta["company"],
			Ticker:   meta["ticker"],
			FileName: meta["file_name"],
			Year:     meta["year"],
			Score:    record.Score,
			Content:  snippet,
			Metrics:  ExtractMetrics(snippet),
		})
	}
	return ret, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
