// Package pptx extracts the text of presentation decks: slide paragraphs,
// tables and the series of embedded charts
package pptx

import (
	"archive/zip"
	"cmp"
	"context"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	qxml "github.com/dgrr/quickxml"

	"github.com/bububa/stockcritique/components/document"
)

var (
	reSlide     = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	reSlideRels = regexp.MustCompile(`^ppt/slides/_rels/slide(\d+)\.xml\.rels$`)
	reChart     = regexp.MustCompile(`^ppt/charts/chart\d+\.xml$`)
)

type Parser struct {
	// Charts writes the categories and values of chart series found on a slide
	Charts bool
}

var _ document.Parser = (*Parser)(nil)

func New() *Parser {
	return &Parser{Charts: true}
}

// deck holds the parts of an opened pptx archive
type deck struct {
	slides map[int]*zip.File
	rels   map[int]map[string]string
	charts map[string]*zip.File
}

// Parse writes every slide in order, each under a "Slide N" heading
func (p *Parser) Parse(ctx context.Context, reader document.ParserReader, w io.Writer) error {
	zr, err := zip.NewReader(reader, reader.Size())
	if err != nil {
		return err
	}
	d, err := openDeck(zr)
	if err != nil {
		return err
	}
	nums := slices.SortedFunc(func(yield func(int) bool) {
		for n := range d.slides {
			if !yield(n) {
				return
			}
		}
	}, cmp.Compare[int])
	for _, n := range nums {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := p.slide(d, n)
		if err != nil {
			return fmt.Errorf("slide %d: %w", n, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "Slide %d\n%s\n", n, strings.TrimRight(text, "\n ")); err != nil {
			return err
		}
	}
	return nil
}

func openDeck(zr *zip.Reader) (*deck, error) {
	d := &deck{
		slides: make(map[int]*zip.File),
		rels:   make(map[int]map[string]string),
		charts: make(map[string]*zip.File),
	}
	for _, f := range zr.File {
		if reChart.MatchString(f.Name) {
			d.charts[f.Name] = f
			continue
		}
		if m := reSlide.FindStringSubmatch(f.Name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				d.slides[n] = f
			}
			continue
		}
		if m := reSlideRels.FindStringSubmatch(f.Name); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			rels, err := parseRels(f, "ppt/")
			if err != nil {
				return nil, err
			}
			d.rels[n] = rels
		}
	}
	return d, nil
}

func (p *Parser) slide(d *deck, n int) (string, error) {
	rc, err := d.slides[n].Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	var (
		sb     strings.Builder
		phrase string
	)
	r := qxml.NewReader(rc)
NEXT:
	for r.Next() {
		switch e := r.Element().(type) {
		case *qxml.EndElement:
			if e.Name() == "a:p" {
				sb.WriteByte('\n')
			}
		case *qxml.StartElement:
			switch e.Name() {
			case "a:t":
				r.AssignNext(&phrase)
				if !r.Next() {
					break NEXT
				}
				if phrase != "" {
					sb.WriteString(phrase)
					sb.WriteByte(' ')
					phrase = ""
				}
			case "a:tbl":
				sb.WriteString(table(r))
			case "c:chart":
				if !p.Charts {
					continue
				}
				attrs := e.Attrs()
				if attrs.Len() == 0 {
					continue
				}
				target := d.rels[n][attrs.Get("r:id").Value()]
				if f, ok := d.charts[target]; ok {
					text, err := chart(f)
					if err != nil {
						return "", err
					}
					sb.WriteString(text)
				}
			}
		}
	}
	return sb.String(), nil
}

// table renders table rows with " | " between cells
func table(r *qxml.Reader) string {
	var (
		sb    strings.Builder
		cells []string
		cell  string
	)
NEXT:
	for r.Next() {
		switch e := r.Element().(type) {
		case *qxml.StartElement:
			if e.Name() == "a:t" {
				r.AssignNext(&cell)
				if !r.Next() {
					break NEXT
				}
				cells = append(cells, strings.TrimSpace(cell))
				cell = ""
			}
		case *qxml.EndElement:
			switch e.Name() {
			case "a:tr":
				if len(cells) > 0 {
					sb.WriteString(strings.Join(cells, " | "))
					sb.WriteByte('\n')
					cells = cells[:0]
				}
			case "a:tbl":
				break NEXT
			}
		}
	}
	return sb.String()
}

// chart renders one line per series: "name: category=value, ..."
func chart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	var sb strings.Builder
	r := qxml.NewReader(rc)
	for r.Next() {
		if e, ok := r.Element().(*qxml.StartElement); ok && e.Name() == "c:ser" {
			sb.WriteString(series(r))
		}
	}
	return sb.String(), nil
}

func series(r *qxml.Reader) string {
	var (
		name string
		cats []string
		vals []string
	)
NEXT:
	for r.Next() {
		switch e := r.Element().(type) {
		case *qxml.EndElement:
			if e.Name() == "c:ser" {
				break NEXT
			}
		case *qxml.StartElement:
			switch tag := e.Name(); tag {
			case "c:tx":
				if values := values(r, tag); len(values) > 0 {
					name = values[0]
				}
			case "c:cat", "c:xVal":
				cats = values(r, tag)
			case "c:val", "c:yVal":
				vals = values(r, tag)
			}
		}
	}
	if len(vals) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(vals))
	for i, v := range vals {
		if i < len(cats) {
			pairs = append(pairs, cats[i]+"="+v)
			continue
		}
		pairs = append(pairs, v)
	}
	if name == "" {
		name = "series"
	}
	return fmt.Sprintf("%s: %s\n", name, strings.Join(pairs, ", "))
}

// values collects the text of every c:v element before the end tag
func values(r *qxml.Reader, end string) []string {
	var (
		ret []string
		v   string
	)
	for findUntil(r, "c:v", end) {
		r.AssignNext(&v)
		if !r.Next() {
			break
		}
		ret = append(ret, v)
		v = ""
	}
	return ret
}

// findUntil advances to the next name start element, it reports false once
// the end element closes first
func findUntil(r *qxml.Reader, name string, end string) bool {
	for r.Next() {
		switch e := r.Element().(type) {
		case *qxml.StartElement:
			if e.Name() == name {
				return true
			}
		case *qxml.EndElement:
			if e.Name() == end {
				return false
			}
		}
	}
	return false
}
