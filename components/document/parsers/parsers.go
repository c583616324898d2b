// Package parsers picks a document.Parser for a document by sniffing its content
package parsers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/stockcritique/components/document"
	"github.com/bububa/stockcritique/components/document/parsers/docx"
	"github.com/bububa/stockcritique/components/document/parsers/html"
	"github.com/bububa/stockcritique/components/document/parsers/pdf"
	"github.com/bububa/stockcritique/components/document/parsers/pptx"
	"github.com/bububa/stockcritique/components/document/parsers/xlsx"
)

// ErrUnsupported is returned for documents no parser understands
var ErrUnsupported = errors.New("unsupported document type")

const (
	MimePDF  = "application/pdf"
	MimeHTML = "text/html"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeText = "text/plain"
)

var extensions = map[string]string{
	".pdf":  MimePDF,
	".htm":  MimeHTML,
	".html": MimeHTML,
	".docx": MimeDOCX,
	".xlsx": MimeXLSX,
	".pptx": MimePPTX,
	".txt":  MimeText,
	".md":   MimeText,
}

// Registry maps MIME types to parsers
type Registry struct {
	parsers map[string]document.Parser
}

// New returns a Registry with the pdf, html, docx, xlsx, pptx and plain text parsers
func New() *Registry {
	return &Registry{
		parsers: map[string]document.Parser{
			MimePDF:  pdf.New(),
			MimeHTML: html.New(),
			MimeDOCX: new(docx.Parser),
			MimeXLSX: xlsx.New(),
			MimePPTX: pptx.New(),
			MimeText: Text{},
		},
	}
}

// Register sets the parser of a MIME type
func (r *Registry) Register(mime string, p document.Parser) {
	r.parsers[mime] = p
}

// Detect sniffs the content of a document, falling back on the extension of name
func (r *Registry) Detect(reader document.ParserReader, name string) (document.Parser, string, error) {
	mtype, err := mimetype.DetectReader(io.NewSectionReader(reader, 0, reader.Size()))
	if err != nil {
		return nil, "", err
	}
	for m := mtype; m != nil; m = m.Parent() {
		if p, ok := r.parsers[baseMime(m.String())]; ok {
			// plain text is refined by extension
			if ext, ok := extensions[strings.ToLower(path.Ext(name))]; ok && baseMime(m.String()) == MimeText {
				if p, ok := r.parsers[ext]; ok {
					return p, ext, nil
				}
			}
			return p, baseMime(m.String()), nil
		}
	}
	if ext, ok := extensions[strings.ToLower(path.Ext(name))]; ok {
		if p, ok := r.parsers[ext]; ok {
			return p, ext, nil
		}
	}
	return nil, mtype.String(), fmt.Errorf("%w: %s", ErrUnsupported, mtype.String())
}

// Parse extracts the text of an opened document
func (r *Registry) Parse(ctx context.Context, obj document.Object, w io.Writer) error {
	name := obj.Meta()["file_name"]
	p, _, err := r.Detect(obj, name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := p.Parse(ctx, obj, w); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func baseMime(v string) string {
	if idx := strings.IndexByte(v, ';'); idx >= 0 {
		return strings.TrimSpace(v[:idx])
	}
	return v
}

// Text copies plain text documents
type Text struct{}

func (Text) Parse(_ context.Context, reader document.ParserReader, w io.Writer) error {
	_, err := io.Copy(w, io.NewSectionReader(reader, 0, reader.Size()))
	return err
}
