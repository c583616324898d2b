// Package reddit gathers recent subreddit discussions and scores their sentiment
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/bububa/stockcritique/mcp"
)

// ContextKey is the context update recorded after each run
const ContextKey = "last_reddit_access"

const (
	commentSummaryLen = 100
	postSummaryLen    = 200
	lookback          = 30 * 24 * time.Hour
)

type listing struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type link struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

type comment struct {
	Body  string `json:"body"`
	Score int    `json:"score"`
}

// Post is a summarized post with its comments
type Post struct {
	Title            string    `json:"post_title"`
	URL              string    `json:"post_url"`
	Created          time.Time `json:"created"`
	Summary          string    `json:"summary"`
	CommentSummaries []string  `json:"comment_summaries"`
	AvgSentiment     float64   `json:"avg_sentiment"`
	Sentiment        string    `json:"sentiment"`
}

// Topic groups the posts found for a company, Company is empty for a free text search
type Topic struct {
	Company string `json:"company,omitempty"`
	Posts   []Post `json:"posts"`
	Error   string `json:"error,omitempty"`
}

// Agent is the Reddit agent
type Agent struct {
	Options
	limiter *rate.Limiter
	now     func() time.Time
}

var _ mcp.Agent = (*Agent)(nil)

func New(opts ...Option) *Agent {
	ret := &Agent{now: time.Now}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.subreddit == "" {
		ret.subreddit = DefaultSubreddit
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.maxPosts <= 0 {
		ret.maxPosts = 3
	}
	if ret.maxComments <= 0 {
		ret.maxComments = 10
	}
	if ret.rps <= 0 {
		ret.rps = 1
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	oauth := ret.clientID != "" && ret.clientSecret != ""
	if ret.baseURL == "" {
		ret.baseURL = DefaultPublicURL
		if oauth {
			ret.baseURL = DefaultOAuthURL
		}
	}
	ret.baseURL = strings.TrimRight(ret.baseURL, "/")
	if oauth {
		if ret.tokenURL == "" {
			ret.tokenURL = DefaultTokenURL
		}
		cfg := clientcredentials.Config{
			ClientID:     ret.clientID,
			ClientSecret: ret.clientSecret,
			TokenURL:     ret.tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		base := &http.Client{
			Timeout:   ret.httpClient.Timeout,
			Transport: &userAgentTransport{userAgent: ret.userAgent, base: ret.httpClient.Transport},
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		ret.httpClient = cfg.Client(ctx)
	}
	ret.limiter = rate.NewLimiter(rate.Limit(ret.rps), 1)
	return ret
}

func (a *Agent) Name() string {
	return mcp.AgentReddit
}

// Run searches posts for every company of the request, or for the raw query when it names none
func (a *Agent) Run(ctx context.Context, req *mcp.Request) (*mcp.Result, error) {
	since := a.now().Add(-lookback)
	companies := req.Context.Companies()
	var topics []Topic
	if len(companies) == 0 {
		posts, err := a.posts(ctx, req.Context.RawQuery(), "", since)
		if err != nil {
			return nil, err
		}
		topics = append(topics, Topic{Posts: posts})
	}
	var failed int
	for _, company := range companies {
		posts, err := a.posts(ctx, company, company, since)
		if err != nil {
			a.logger.Warn("reddit search failed", zap.String("company", company), zap.Error(err))
			topics = append(topics, Topic{Company: company, Posts: []Post{}, Error: err.Error()})
			failed++
			continue
		}
		if len(posts) == 0 {
			a.logger.Debug("no reddit topics", zap.String("company", company))
			continue
		}
		topics = append(topics, Topic{Company: company, Posts: posts})
	}
	if len(companies) > 0 && failed == len(companies) {
		return nil, fmt.Errorf("reddit: %s", topics[0].Error)
	}
	if topics == nil {
		topics = []Topic{}
	}
	return mcp.NewResult(map[string]any{
		"subreddit": a.subreddit,
		"topics":    topics,
	}).WithUpdate(ContextKey, a.now().UTC().Format(time.RFC3339)), nil
}

// posts returns the newest posts matching query, a non empty mention must appear in the title or text
func (a *Agent) posts(ctx context.Context, query string, mention string, since time.Time) ([]Post, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("restrict_sr", "1")
	values.Set("sort", "new")
	values.Set("t", "month")
	values.Set("limit", "25")
	values.Set("raw_json", "1")
	var res listing
	if err := a.getJSON(ctx, fmt.Sprintf("%s/r/%s/search.json?%s", a.baseURL, url.PathEscape(a.subreddit), values.Encode()), &res); err != nil {
		return nil, err
	}
	mention = strings.ToLower(mention)
	ret := []Post{}
	for _, child := range res.Data.Children {
		if len(ret) >= a.maxPosts {
			break
		}
		if child.Kind != "t3" {
			continue
		}
		var l link
		if err := json.Unmarshal(child.Data, &l); err != nil {
			continue
		}
		created := time.Unix(int64(l.CreatedUTC), 0).UTC()
		if created.Before(since) {
			continue
		}
		if mention != "" && !strings.Contains(strings.ToLower(l.Title), mention) && !strings.Contains(strings.ToLower(l.Selftext), mention) {
			continue
		}
		comments, err := a.comments(ctx, l.ID)
		if err != nil {
			a.logger.Warn("reddit comments failed", zap.String("post", l.ID), zap.Error(err))
		}
		post := Post{
			Title:            l.Title,
			URL:              l.URL,
			Created:          created,
			Summary:          Truncate(l.Selftext, postSummaryLen),
			CommentSummaries: make([]string, 0, len(comments)),
		}
		var total float64
		for _, c := range comments {
			post.CommentSummaries = append(post.CommentSummaries, Truncate(c, commentSummaryLen))
			total += Sentiment(c)
		}
		if len(comments) > 0 {
			post.AvgSentiment = total / float64(len(comments))
		}
		post.Sentiment = Label(post.AvgSentiment)
		ret = append(ret, post)
	}
	return ret, nil
}

// comments returns the bodies of the top comments of a post
func (a *Agent) comments(ctx context.Context, id string) ([]string, error) {
	values := url.Values{}
	values.Set("limit", fmt.Sprint(a.maxComments))
	values.Set("sort", "top")
	values.Set("depth", "1")
	values.Set("raw_json", "1")
	var res []listing
	link := fmt.Sprintf("%s/r/%s/comments/%s.json?%s", a.baseURL, url.PathEscape(a.subreddit), url.PathEscape(id), values.Encode())
	if err := a.getJSON(ctx, link, &res); err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, nil
	}
	var ret []string
	for _, child := range res[1].Data.Children {
		if len(ret) >= a.maxComments {
			break
		}
		if child.Kind != "t1" {
			continue
		}
		var c comment
		if err := json.Unmarshal(child.Data, &c); err != nil || c.Body == "" {
			continue
		}
		ret = append(ret, c.Body)
	}
	return ret, nil
}

func (a *Agent) getJSON(ctx context.Context, link string, v any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("User-Agent", a.userAgent)
	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit: status %d", httpResp.StatusCode)
	}
	return json.NewDecoder(httpResp.Body).Decode(v)
}

type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
