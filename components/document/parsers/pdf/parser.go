package pdf

import (
	"context"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/bububa/stockcritique/components/document"
)

// Parser is a parser which parse PDF content to text
type Parser struct {
	password string
}

var _ document.Parser = (*Parser)(nil)

type Option func(*Parser)

func WithPassword(password string) Option {
	return func(p *Parser) {
		p.password = password
	}
}

func New(opts ...Option) *Parser {
	ret := new(Parser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Parse writes the text of every page, one line per text row
func (p *Parser) Parse(ctx context.Context, reader document.ParserReader, writer io.Writer) error {
	var (
		r    *pdf.Reader
		err  error
		size = reader.Size()
	)
	if p.password != "" {
		r, err = pdf.NewReaderEncrypted(reader, size, func() string {
			return p.password
		})
	} else {
		r, err = pdf.NewReader(reader, size)
	}
	if err != nil {
		return err
	}
	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				if _, err := io.WriteString(writer, word.S); err != nil {
					return err
				}
			}
			if _, err := writer.Write([]byte{'\n'}); err != nil {
				return err
			}
		}
	}
	return nil
}
