package document

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrIsDir is returned when a directory is opened as a document
var ErrIsDir = errors.New("document: path is a directory")

// ParserReader is the random access view of a document a Parser consumes
type ParserReader interface {
	io.Reader
	io.ReaderAt
	Size() int64
}

// Object is an opened corpus document
type Object interface {
	ParserReader
	io.Closer
	Meta() map[string]string
}

// Lister enumerates the identifiers of the documents in a corpus
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Corpus is a Lister whose documents can be opened
type Corpus interface {
	Lister
	Open(ctx context.Context, id string) (Object, error)
}

// Content carries document metadata
type Content struct {
	meta map[string]string
}

func (c Content) Meta() map[string]string {
	ret := make(map[string]string, len(c.meta))
	for k, v := range c.meta {
		ret[k] = v
	}
	return ret
}

// Supported reports whether a document identifier has an extension the corpus indexes
func Supported(id string) bool {
	switch strings.ToLower(path.Ext(id)) {
	case ".pdf", ".htm", ".html", ".docx", ".xlsx", ".pptx", ".txt", ".md":
		return true
	}
	return false
}
