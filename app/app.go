// Package app builds a running StockCritique from its configuration
package app

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/bububa/stockcritique/agents"
	"github.com/bububa/stockcritique/agents/finance"
	"github.com/bububa/stockcritique/agents/general"
	"github.com/bububa/stockcritique/agents/orchestration"
	"github.com/bububa/stockcritique/agents/reddit"
	"github.com/bububa/stockcritique/agents/refiner"
	"github.com/bububa/stockcritique/agents/sec"
	"github.com/bububa/stockcritique/agents/yahoo"
	"github.com/bububa/stockcritique/components/classifier"
	"github.com/bububa/stockcritique/components/document"
	"github.com/bububa/stockcritique/components/embedder"
	"github.com/bububa/stockcritique/components/embedder/splitter"
	"github.com/bububa/stockcritique/components/entity"
	"github.com/bububa/stockcritique/config"
	"github.com/bububa/stockcritique/mcp"
	"github.com/bububa/stockcritique/tools"
	"github.com/bububa/stockcritique/tools/searxng"
	"github.com/bububa/stockcritique/tools/webscraper"
)

var (
	// ErrNoCorpus is returned when indexing without a configured corpus
	ErrNoCorpus = errors.New("no document corpus configured")
	// ErrNoEmbedder is returned when indexing with embedder provider none
	ErrNoEmbedder = errors.New("no embedder configured")
)

// App owns every long lived component
type App struct {
	Config  *config.Config
	Router  *orchestration.Router
	Finance *finance.Agent
	Corpus  document.Corpus
	logger  *zap.Logger
	embed   embedder.Embedder
	closers []func() error
}

// New wires the router and its agents from cfg. Nothing is indexed until Start or Index.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := &App{
		Config: cfg,
		logger: logger,
	}
	if err := ret.build(ctx); err != nil {
		ret.Close()
		return nil, err
	}
	return ret, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config
	companies := maps.Clone(entity.DefaultCompanies)
	topics := classifier.DefaultTopics
	if cfg.Entities.File != "" {
		f, err := entity.LoadFile(cfg.Entities.File)
		if err != nil {
			return fmt.Errorf("load entities: %w", err)
		}
		maps.Copy(companies, f.CompanyTickerMap)
		topics = classifier.MergeTopics(topics, f.FinancialKeywords)
	}

	clt, err := NewInstructor(cfg.LLM)
	if err != nil {
		return err
	}
	emb, closeEmbedder, err := NewEmbedder(ctx, cfg.Embedder)
	if err != nil {
		return err
	}
	a.embed = emb
	a.closers = append(a.closers, closeEmbedder)
	engine, err := NewEngine(ctx, cfg.VectorDB)
	if err != nil {
		return err
	}
	if a.Corpus, err = NewCorpus(ctx, cfg.Corpus); err != nil {
		return err
	}
	cache, err := sec.OpenCache(cfg.SEC.CacheDir, cfg.SEC.CacheTTL)
	if err != nil {
		return fmt.Errorf("open sec cache: %w", err)
	}
	a.closers = append(a.closers, cache.Close)

	llmOpts := []agents.Option{
		agents.WithClient(clt),
		agents.WithModel(cfg.LLM.Model),
		agents.WithTemperature(cfg.LLM.Temperature),
		agents.WithMaxTokens(cfg.LLM.MaxTokens),
	}
	generalOpts := []general.Option{
		general.WithAgentOptions(llmOpts...),
		general.WithLogger(a.logger.Named(mcp.AgentGeneral)),
	}
	if cfg.Search.BaseURL != "" {
		hooks := searxng.WithToolOptions(toolHooks(a.logger)...)
		generalOpts = append(generalOpts, general.WithSearch(searxng.New(
			searxng.WithBaseURL(cfg.Search.BaseURL),
			searxng.WithMaxResults(cfg.Search.MaxResults),
			hooks,
		)))
		if cfg.Search.Scrape {
			generalOpts = append(generalOpts, general.WithScraper(webscraper.New(
				webscraper.WithToolOptions(toolHooks(a.logger)...),
			)))
		}
	}
	extractor := entity.NewExtractor(entity.WithCompanies(companies), entity.WithLogger(a.logger.Named("entity")))
	a.Finance = finance.New(emb, engine,
		finance.WithChunker(newChunker(a.logger)),
		finance.WithTopK(cfg.VectorDB.TopK),
		finance.WithTickerResolver(func(company string) string {
			ticker, _ := extractor.Table().Ticker(company)
			return ticker
		}),
		finance.WithLogger(a.logger.Named(mcp.AgentFinance)))
	yahooOpts := []yahoo.Option{
		yahoo.WithRange(cfg.Yahoo.Range),
		yahoo.WithLogger(a.logger.Named(mcp.AgentYahoo)),
	}
	if cfg.Yahoo.BaseURL != "" {
		yahooOpts = append(yahooOpts, yahoo.WithBaseURL(cfg.Yahoo.BaseURL))
	}
	redditOpts := []reddit.Option{
		reddit.WithSubreddit(cfg.Reddit.Subreddit),
		reddit.WithRPS(cfg.Reddit.RPS),
		reddit.WithMaxPosts(cfg.Reddit.MaxPosts),
		reddit.WithLogger(a.logger.Named(mcp.AgentReddit)),
	}
	if cfg.Reddit.ClientID != "" {
		redditOpts = append(redditOpts, reddit.WithCredentials(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret))
	}
	registry, err := orchestration.NewRegistry(
		general.New(generalOpts...),
		a.Finance,
		yahoo.New(yahooOpts...),
		sec.New(
			sec.WithUserAgent(cfg.SEC.UserAgent),
			sec.WithRPS(cfg.SEC.RPS),
			sec.WithCache(cache),
			sec.WithLogger(a.logger.Named(mcp.AgentSEC))),
		reddit.New(redditOpts...),
	)
	if err != nil {
		return err
	}

	var scorer classifier.Scorer = classifier.NewKeywordScorer(topics...)
	if emb != nil {
		scorer = classifier.New(emb, classifier.WithTopics(topics...), classifier.WithEngine(engine))
	}
	routerOpts := []orchestration.Option{
		orchestration.WithThreshold(cfg.Router.Threshold),
		orchestration.WithAgentTimeout(cfg.Router.AgentTimeout),
		orchestration.WithTopics(topics...),
		orchestration.WithLogger(a.logger.Named("router")),
	}
	if a.Corpus != nil {
		routerOpts = append(routerOpts, orchestration.WithCorpus(a.Corpus))
	}
	if clt != nil {
		routerOpts = append(routerOpts, orchestration.WithRefiner(refiner.New(llmOpts...)))
		if cfg.Router.Summary {
			routerOpts = append(routerOpts, orchestration.WithSummarizer(refiner.NewSummarizer(llmOpts...)))
		}
	}
	a.Router = orchestration.NewRouter(scorer, extractor, registry, routerOpts...)
	return nil
}

// newChunker sizes Finance chunks in cl100k tokens, falling back to word counts
// when the encoding cannot be loaded
func newChunker(logger *zap.Logger) embedder.Chunker {
	var counter splitter.TokenCounter = splitter.WordsTokenCounter{}
	if tc, err := splitter.NewTikTokenCounter("cl100k_base"); err != nil {
		logger.Warn("tiktoken unavailable, counting words", zap.Error(err))
	} else {
		counter = tc
	}
	return splitter.NewSentences(
		splitter.WithChunkSize(256),
		splitter.WithOverlap(32),
		splitter.WithTokenCounter(counter))
}

func toolHooks(logger *zap.Logger) []tools.Option {
	return []tools.Option{
		tools.WithStartHook(func(_ context.Context, tool tools.ITool, input any) {
			logger.Debug("tool start", zap.String("tool", tool.Title()), zap.Any("input", input))
		}),
		tools.WithErrorHook(func(_ context.Context, tool tools.ITool, _ any, err error) {
			logger.Warn("tool failed", zap.String("tool", tool.Title()), zap.Error(err))
		}),
	}
}

// Index rebuilds the Finance index from the corpus and refreshes the router
func (a *App) Index(ctx context.Context) (*finance.Stats, error) {
	if a.Corpus == nil {
		return nil, ErrNoCorpus
	}
	if a.embed == nil {
		return nil, ErrNoEmbedder
	}
	stats, err := a.Finance.Index(ctx, a.Corpus)
	if err != nil {
		return stats, err
	}
	a.logger.Info("finance index built",
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks),
		zap.Strings("failed", stats.Failed))
	return stats, a.Router.Refresh(ctx)
}

// Start loads the entity table and, when an embedder is configured, serves the
// Finance index persisted by an earlier run or builds it when there is none.
// Corpus errors are logged, the router keeps serving from the curated table.
func (a *App) Start(ctx context.Context) {
	if a.Corpus != nil && a.embed != nil {
		resumed, err := a.Finance.Resume(ctx, a.Corpus)
		if err != nil {
			a.logger.Warn("finance index resume failed", zap.Error(err))
		}
		if !resumed {
			_, err := a.Index(ctx)
			if err == nil {
				return
			}
			a.logger.Warn("finance index failed", zap.Error(err))
		}
	}
	if err := a.Router.Refresh(ctx); err != nil {
		a.logger.Warn("router refresh failed", zap.Error(err))
	}
}

// Watch rebuilds the index whenever documents of a local corpus change, it blocks until ctx is done.
// It returns nil at once unless corpus watching is enabled for a directory corpus.
func (a *App) Watch(ctx context.Context) error {
	dir, ok := a.Corpus.(*document.Dir)
	if !ok || !a.Config.Corpus.Watch {
		return nil
	}
	w := document.NewWatcher(dir.Root(), document.WithWatcherLogger(a.logger.Named("watcher")))
	defer w.Close()
	return w.Watch(ctx, func(ctx context.Context) {
		if a.embed == nil {
			if err := a.Router.Refresh(ctx); err != nil {
				a.logger.Warn("router refresh failed", zap.Error(err))
			}
			return
		}
		if _, err := a.Index(ctx); err != nil {
			a.logger.Warn("reindex failed", zap.Error(err))
		}
	})
}

// Close releases the SEC cache and provider clients
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
