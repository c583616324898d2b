package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bububa/stockcritique/components/document"
)

// Parser renders every sheet of a workbook as a markdown table
type Parser struct {
	password string
}

var _ document.Parser = (*Parser)(nil)

type Option func(*Parser)

func WithPassword(passwd string) Option {
	return func(p *Parser) {
		p.password = passwd
	}
}

func New(opts ...Option) *Parser {
	ret := new(Parser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (p *Parser) Parse(ctx context.Context, reader document.ParserReader, writer io.Writer) error {
	opts := make([]excelize.Options, 0, 1)
	if p.password != "" {
		opts = append(opts, excelize.Options{Password: p.password})
	}
	doc, err := excelize.OpenReader(io.NewSectionReader(reader, 0, reader.Size()), opts...)
	if err != nil {
		return err
	}
	defer doc.Close()
	buf := new(bytes.Buffer)
	for _, sheet := range doc.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := doc.GetRows(sheet)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(buf, "# %s\n\n", sheet)
		for rowIdx, row := range rows {
			cells := make([]string, 0, len(row))
			for colIdx, cellValue := range row {
				cells = append(cells, p.cell(doc, sheet, rowIdx+1, colIdx+1, cellValue))
			}
			buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
			if rowIdx == 0 {
				buf.WriteString(strings.Repeat("| --- ", len(row)) + "|\n")
			}
		}
		buf.WriteByte('\n')
	}
	_, err = buf.WriteTo(writer)
	return err
}

func (p *Parser) cell(doc *excelize.File, sheet string, row int, col int, value string) string {
	value = strings.TrimSpace(document.EscapeMarkdown(document.StripUnprintable(value)))
	if value == "" {
		return value
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return value
	}
	if styleID, err := doc.GetCellStyle(sheet, name); err == nil && styleID > 0 {
		if style, err := doc.GetStyle(styleID); err == nil && style.Font != nil {
			switch {
			case style.Font.Bold:
				value = "**" + value + "**"
			case style.Font.Strike:
				value = "~~" + value + "~~"
			case style.Font.Italic:
				value = "*" + value + "*"
			}
		}
	}
	if ok, target, _ := doc.GetCellHyperLink(sheet, name); ok && target != "" {
		value = fmt.Sprintf("[%s](%s)", value, target)
	}
	return value
}
