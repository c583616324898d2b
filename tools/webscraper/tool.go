package webscraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/stockcritique/schema"
	"github.com/bububa/stockcritique/tools"
)

// ErrContentTooLarge is returned when a page exceeds the configured maximum length
var ErrContentTooLarge = errors.New("webscraper: content length exceeds maximum")

var blankLines = regexp.MustCompile(`(\r?\n){3,}`)

// Input schema for the WebpageScraperTool.
type Input struct {
	schema.Base
	// URL of the webpage to scrape.
	URL string `json:"url,omitempty" jsonschema:"title=url,description=URL of the webpage to scrape." validate:"required,url"`
	// IncludeLinks Whether to preserve hyperlinks in the markdown output.
	IncludeLinks bool `json:"include_links,omitempty" jsonschema:"title=include_links,description=Whether to preserve hyperlinks in the markdown output."`
}

func NewInput(link string, includeLinks bool) *Input {
	return &Input{
		URL:          link,
		IncludeLinks: includeLinks,
	}
}

// Metadata Schema for webpage metadata
type Metadata struct {
	// Title is the title of the webpage.
	Title string `json:"title,omitempty" jsonschema:"title=title,description=The title of the webpage."`
	// Author is the author of the webpage content.
	Author string `json:"author,omitempty" jsonschema:"title=author,description=The Author of the webpage."`
	// Description is the meta description of the webpage.
	Description string `json:"description,omitempty" jsonschema:"title=description,description=The meta description of the webpage."`
	// Keywords is the meta keywords of the webpage.
	Keywords string `json:"keywords,omitempty" jsonschema:"title=keywords,description=The meta keywords of the webpage."`
	// SiteName is the name of the website.
	SiteName string `json:"sitename,omitempty" jsonschema:"title=sitename,description=The name of the website."`
	// Domain is the domain name of the website.
	Domain string `json:"domain,omitempty" jsonschema:"title=domain,description=The domain name of the website."`
}

// Output Schema for the output of the WebpageScraperTool.
type Output struct {
	schema.Base
	// Content The scraped content in markdown format.
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The scraped content in markdown format."`
	// Metadata is metadata about the scraped webpage.
	Metadata *Metadata `json:"metadata,omitempty" jsonschema:"title=metadata,description=Metadata about the webpage."`
}

func NewOutput(content string, metadata *Metadata) *Output {
	return &Output{
		Content:  content,
		Metadata: metadata,
	}
}

type Config struct {
	tools.Config
	// userAgent User agent string to use for requests.
	userAgent string
	// timeout for HTTP requests
	timeout time.Duration
	// MaxContentLength Maximum content length in bytes to process.
	maxContentLength int64
	httpClient       *http.Client
}

type Webscraper struct {
	Config
}

var _ tools.Tool[Input, Output] = (*Webscraper)(nil)

func New(opts ...Option) *Webscraper {
	ret := new(Webscraper)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("WebscraperTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Scrapes a webpage and returns its main content as markdown")
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.timeout == 0 {
		ret.timeout = 30 * time.Second
	}
	if ret.maxContentLength == 0 {
		ret.maxContentLength = 1_000_000
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: ret.timeout}
	}
	return ret
}

func (t *Webscraper) Run(ctx context.Context, input *Input) (*Output, error) {
	done := t.Trace(ctx, t, input)
	ret, err := t.run(ctx, input)
	done(ret, err)
	return ret, err
}

func (t *Webscraper) run(ctx context.Context, input *Input) (*Output, error) {
	parsedURL, err := url.ParseRequestURI(input.URL)
	if err != nil {
		return nil, err
	}
	doc, err := t.fetch(ctx, input)
	if err != nil {
		return nil, err
	}
	meta := new(Metadata)
	meta.Domain = parsedURL.Host
	t.extractMetadata(doc, meta)
	if !input.IncludeLinks {
		doc.Find("a").Each(func(_ int, s *goquery.Selection) {
			s.ReplaceWithSelection(s.Contents())
		})
	}
	mainContent := t.extractMainContent(doc)
	markdown, err := htmltomarkdown.ConvertString(
		mainContent,
		converter.WithDomain(fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)),
	)
	if err != nil {
		return nil, err
	}
	return NewOutput(CleanMarkdown(markdown), meta), nil
}

func (t *Webscraper) fetch(ctx context.Context, input *Input) (*goquery.Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", DefaultAccept)
	httpReq.Header.Set("Connection", "keep-alive")
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webscraper: unexpected status %d", httpResp.StatusCode)
	}
	if httpResp.ContentLength > t.maxContentLength {
		return nil, ErrContentTooLarge
	}
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxContentLength+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > t.maxContentLength {
		return nil, ErrContentTooLarge
	}
	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

// extractMetadata extracts metadata from the webpage
func (t *Webscraper) extractMetadata(doc *goquery.Document, meta *Metadata) {
	meta.Title = strings.TrimSpace(doc.Find("head title").First().Text())
	meta.Author, _ = doc.Find("meta[name='author']").Attr("content")
	meta.Description, _ = doc.Find("meta[name='description']").Attr("content")
	meta.Keywords, _ = doc.Find("meta[name='keywords']").Attr("content")
	meta.SiteName, _ = doc.Find("meta[property='og:site_name']").Attr("content")
}

// extractMainContent extracts the main content from the webpage using custom heuristics
func (t *Webscraper) extractMainContent(doc *goquery.Document) string {
	for _, tag := range []string{"script", "style", "nav", "header", "footer", "aside", "noscript"} {
		doc.Find(tag).Remove()
	}
	contentCandidates := []string{
		"main",
		"#content, #main",
		".content, .main",
		"article",
		"body",
	}
	for _, selector := range contentCandidates {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if txt, err := sel.Html(); err == nil && strings.TrimSpace(txt) != "" {
			return txt
		}
	}
	ret, _ := doc.Html()
	return ret
}

// CleanMarkdown removes excessive blank lines and trailing whitespace
func CleanMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	content = strings.Join(lines, "\n")
	content = blankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content) + "\n"
}
