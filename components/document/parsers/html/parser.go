package html

import (
	"context"
	"io"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/bububa/stockcritique/components/document"
)

// Parser is a parser which parse html content to markdown
type Parser struct {
	opts []converter.ConvertOptionFunc
}

var _ document.Parser = (*Parser)(nil)

func New(opts ...converter.ConvertOptionFunc) *Parser {
	return &Parser{
		opts: opts,
	}
}

// Parse converts html into markdown
func (h *Parser) Parse(ctx context.Context, reader document.ParserReader, writer io.Writer) error {
	opts := append([]converter.ConvertOptionFunc{converter.WithContext(ctx)}, h.opts...)
	bs, err := htmltomarkdown.ConvertReader(io.NewSectionReader(reader, 0, reader.Size()), opts...)
	if err != nil {
		return err
	}
	_, err = writer.Write(bs)
	return err
}
