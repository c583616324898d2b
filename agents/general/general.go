// Package general answers any question with a language model, optionally backed by a web search
package general

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bububa/stockcritique/agents"
	"github.com/bububa/stockcritique/components/systemprompt"
	"github.com/bububa/stockcritique/components/systemprompt/cot"
	"github.com/bububa/stockcritique/mcp"
	"github.com/bububa/stockcritique/schema"
	"github.com/bububa/stockcritique/tools/searxng"
	"github.com/bububa/stockcritique/tools/webscraper"
)

// Question is the user message of the General agent
type Question struct {
	schema.Base
	Question string `json:"question" validate:"required" jsonschema:"title=question,description=the question asked by the user"`
}

// Answer is the structured reply of the General agent
type Answer struct {
	schema.Base
	Answer string `json:"answer" validate:"required" jsonschema:"title=answer,description=the answer to the question"`
}

type Options struct {
	agentOptions []agents.Option
	search       *searxng.SearxngSearch
	scraper      *webscraper.Webscraper
	maxSources   int
	logger       *zap.Logger
}

type Option func(*Options)

// WithAgentOptions configures the underlying language model agent
func WithAgentOptions(opts ...agents.Option) Option {
	return func(o *Options) {
		o.agentOptions = append(o.agentOptions, opts...)
	}
}

// WithSearch enables web search context
func WithSearch(s *searxng.SearxngSearch) Option {
	return func(o *Options) {
		o.search = s
	}
}

// WithScraper scrapes the best search result into the context
func WithScraper(s *webscraper.Webscraper) Option {
	return func(o *Options) {
		o.scraper = s
	}
}

// WithMaxSources limits the number of search results added to the context
func WithMaxSources(n int) Option {
	return func(o *Options) {
		o.maxSources = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.logger = l
	}
}

// Agent is the General agent, it is always selected
type Agent struct {
	Options
	llm *agents.Agent[Question, Answer]
}

var _ mcp.Agent = (*Agent)(nil)

func New(opts ...Option) *Agent {
	ret := new(Agent)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	if ret.maxSources <= 0 {
		ret.maxSources = 3
	}
	agentOpts := []agents.Option{
		agents.WithName(mcp.AgentGeneral),
		agents.WithSystemPromptGenerator(cot.New(
			cot.WithBackground(
				"You are a professional writer who explains finance and everything else to a general audience.",
				"Answer the following question in a friendly and informative tone.",
			),
			cot.WithSteps(
				"Understand what the user is asking.",
				"Use the web search results in the extra information when they are relevant.",
				"Write a clear and accurate answer.",
			),
			cot.WithOutputInstructs(
				"Keep the answer concise.",
				"Do not invent figures that are not in the extra information.",
			),
		)),
	}
	ret.llm = agents.NewAgent[Question, Answer](append(agentOpts, ret.agentOptions...)...)
	return ret
}

func (a *Agent) Name() string {
	return mcp.AgentGeneral
}

// Run answers the raw query, search failures only drop the web context
func (a *Agent) Run(ctx context.Context, req *mcp.Request) (*mcp.Result, error) {
	query := req.Context.RawQuery()
	providers, sources := a.webContext(ctx, query)
	var out Answer
	if err := a.llm.Run(ctx, &Question{Question: query}, &out, nil, providers...); err != nil {
		return nil, err
	}
	return mcp.NewResult(map[string]any{
		"answer":  strings.TrimSpace(out.Answer),
		"sources": sources,
	}), nil
}

func (a *Agent) webContext(ctx context.Context, query string) ([]systemprompt.ContextProvider, []string) {
	sources := []string{}
	if a.search == nil {
		return nil, sources
	}
	res, err := a.search.Run(ctx, searxng.NewInput(searxng.GeneralCategory, []string{query}))
	if err != nil {
		a.logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
		return nil, sources
	}
	if len(res.Results) == 0 {
		return nil, sources
	}
	results := res.Results
	if len(results) > a.maxSources {
		results = results[:a.maxSources]
	}
	var b strings.Builder
	for idx, item := range results {
		sources = append(sources, item.URL)
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n", idx+1, item.Title, item.URL, item.Content)
	}
	providers := []systemprompt.ContextProvider{
		systemprompt.NewSection("Web search results", strings.TrimSpace(b.String())),
	}
	if a.scraper == nil {
		return providers, sources
	}
	page, err := a.scraper.Run(ctx, webscraper.NewInput(results[0].URL, false))
	if err != nil {
		a.logger.Warn("scrape failed", zap.String("url", results[0].URL), zap.Error(err))
		return providers, sources
	}
	providers = append(providers, systemprompt.NewSection("Top result content", truncate(page.Content, 4000)))
	return providers, sources
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
