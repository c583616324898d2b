package document

import (
	"context"
	"io"
)

// Parser extracts the text of a document and writes it to w
type Parser interface {
	Parse(ctx context.Context, r ParserReader, w io.Writer) error
}
