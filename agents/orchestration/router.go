// Package orchestration decides which agents answer a query, runs them
// concurrently and assembles their outcomes under the mcp response contract.
package orchestration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bububa/stockcritique/components/classifier"
	"github.com/bububa/stockcritique/components/document"
	"github.com/bububa/stockcritique/components/entity"
	"github.com/bububa/stockcritique/mcp"
)

// ErrEmptyQuery is returned for a blank query
var ErrEmptyQuery = errors.New("empty query")

// TopicSetter is implemented by scorers whose lexicon follows the corpus
type TopicSetter interface {
	SetTopics([]string)
}

type Options struct {
	threshold    float64
	agentTimeout time.Duration
	refiner      Refiner
	summarizer   Summarizer
	corpus       document.Lister
	topics       []string
	logger       *zap.Logger
}

type Option func(*Options)

func WithThreshold(threshold float64) Option {
	return func(o *Options) {
		o.threshold = threshold
	}
}

func WithAgentTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.agentTimeout = timeout
	}
}

func WithRefiner(r Refiner) Option {
	return func(o *Options) {
		o.refiner = r
	}
}

// WithSummarizer enables the comprehensive cross agent summary
func WithSummarizer(s Summarizer) Option {
	return func(o *Options) {
		o.summarizer = s
	}
}

// WithCorpus sets the document corpus entity names and lexicon topics are discovered from
func WithCorpus(l document.Lister) Option {
	return func(o *Options) {
		o.corpus = l
	}
}

// WithTopics sets the base lexicon corpus topics are added to on Refresh
func WithTopics(topics ...string) Option {
	return func(o *Options) {
		o.topics = topics
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.logger = l
	}
}

// Router is the caller facing entry point.
// Queries hold a read lock, Refresh holds the write lock.
type Router struct {
	mu         sync.RWMutex
	scorer     classifier.Scorer
	extractor  *entity.Extractor
	policy     Policy
	dispatcher *Dispatcher
	assembler  *Assembler
	Options
}

func NewRouter(scorer classifier.Scorer, extractor *entity.Extractor, registry *Registry, opts ...Option) *Router {
	ret := &Router{
		scorer:    scorer,
		extractor: extractor,
		Options: Options{
			threshold:    DefaultThreshold,
			agentTimeout: DefaultAgentTimeout,
			topics:       classifier.DefaultTopics,
			logger:       zap.NewNop(),
		},
	}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.scorer == nil {
		ret.scorer = classifier.NewKeywordScorer(ret.topics...)
	}
	if ret.extractor == nil {
		ret.extractor = entity.NewExtractor(entity.WithLogger(ret.logger))
	}
	ret.policy = NewPolicy(ret.threshold)
	ret.dispatcher = NewDispatcher(registry, DispatcherWithLogger(ret.logger))
	ret.assembler = NewAssembler(ret.refiner, ret.agentTimeout, ret.logger)
	return ret
}

func (r *Router) Policy() Policy {
	return r.policy
}

func (r *Router) Dispatcher() *Dispatcher {
	return r.dispatcher
}

func (r *Router) Extractor() *entity.Extractor {
	return r.extractor
}

// Refresh reloads the entity table and the classifier lexicon from the corpus.
// It waits for in-flight queries and blocks new ones until done.
func (r *Router) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	if r.corpus != nil {
		var err error
		if ids, err = r.corpus.List(ctx); err != nil {
			return err
		}
	}
	r.extractor.LoadIDs(ids)
	if setter, ok := r.scorer.(TopicSetter); ok {
		setter.SetTopics(classifier.MergeTopics(r.topics, classifier.TopicsFromCorpus(ids)))
	}
	r.logger.Info("router refreshed", zap.Int("documents", len(ids)))
	return nil
}

// HandleQuery routes a query to the selected agents and assembles their outcomes.
// Agent failures are recorded in the response, the only errors returned are
// an empty query, an invalid source and a policy violation.
func (r *Router) HandleQuery(ctx context.Context, rawQuery string, source mcp.Source) (*mcp.Response, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	start := time.Now()

	var (
		score    float64
		entities entity.Entities
		g        errgroup.Group
	)
	g.Go(func() error {
		score = r.classify(ctx, query)
		return nil
	})
	g.Go(func() error {
		entities = r.extractor.Extract(query)
		return nil
	})
	_ = g.Wait()

	req, err := mcp.NewRequest(mcp.NewContext(query, entities.Companies, entities.Tickers, entities.Terms), source)
	if err != nil {
		return nil, err
	}
	selected := r.policy.Select(score, req.Context.Companies(), req.Context.Tickers())
	if err := r.policy.Validate(selected); err != nil {
		return nil, err
	}
	rs := r.dispatcher.Dispatch(ctx, req, selected, r.agentTimeout)
	resp := &mcp.Response{
		RequestID:      req.ID,
		Context:        req.Context,
		ContextUpdates: rs.ContextUpdates(),
		Payload:        r.assembler.Assemble(ctx, rs),
		Status:         mcp.StatusOf(rs),
		Timestamp:      time.Now(),
	}
	if r.summarizer != nil && resp.Status != mcp.StatusFailed {
		summary, err := bounded(ctx, r.agentTimeout, func(ctx context.Context) (string, error) {
			return r.summarizer.Summarize(ctx, query, resp.Payload)
		})
		if err != nil {
			r.logger.Warn("comprehensive summary failed", zap.String("request_id", req.ID), zap.Error(err))
		} else {
			resp.Summary = summary
		}
	}
	r.logger.Info("query handled",
		zap.String("request_id", req.ID),
		zap.String("source", string(source)),
		zap.Float64("score", score),
		zap.Strings("companies", req.Context.Companies()),
		zap.Strings("tickers", req.Context.Tickers()),
		zap.Strings("agents", selected),
		zap.String("status", string(resp.Status)),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// classify treats an unavailable or slow classifier as a below threshold score
func (r *Router) classify(ctx context.Context, query string) float64 {
	score, err := bounded(ctx, r.agentTimeout, func(ctx context.Context) (float64, error) {
		return r.scorer.Classify(ctx, query)
	})
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			r.logger.Warn("classifier timed out, routing conservatively", zap.Duration("timeout", r.agentTimeout))
		case errors.Is(err, mcp.ErrClassifierUnavailable):
			r.logger.Warn("classifier unavailable, routing conservatively", zap.Error(err))
		default:
			r.logger.Warn("classifier failed, routing conservatively", zap.Error(err))
		}
		return 0
	}
	return score
}
