package parsers

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memDoc struct {
	*bytes.Reader
	name string
}

func (d memDoc) Close() error { return nil }

func (d memDoc) Meta() map[string]string {
	return map[string]string{"file_name": d.name}
}

func newDoc(name string, content []byte) memDoc {
	return memDoc{Reader: bytes.NewReader(content), name: name}
}

func TestDetect(t *testing.T) {
	registry := New()
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{name: "html by content", file: "tesla-2023.htm", content: "<!DOCTYPE html><html><body><p>Revenue</p></body></html>", want: MimeHTML},
		{name: "plain text", file: "notes.txt", content: "Revenue grew", want: MimeText},
		{name: "pdf magic", file: "x.bin", content: "%PDF-1.7\n", want: MimePDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mime, err := registry.Detect(newDoc(tt.file, []byte(tt.content)), tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mime)
		})
	}
}

func TestParseHTML(t *testing.T) {
	buf := new(bytes.Buffer)
	doc := newDoc("apple-2022.html", []byte("<html><body><h1>Annual Report</h1><p>Net income was <b>$99B</b>.</p></body></html>"))
	require.NoError(t, New().Parse(context.Background(), doc, buf))
	assert.Contains(t, buf.String(), "# Annual Report")
	assert.Contains(t, buf.String(), "**$99B**")
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Metric"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Value"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Revenue"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 100))
	bs, err := f.WriteToBuffer()
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	require.NoError(t, New().Parse(context.Background(), newDoc("tesla-2023.xlsx", bs.Bytes()), buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Sheet1\n"))
	assert.Contains(t, out, "| Metric | Value |")
	assert.Contains(t, out, "| Revenue | 100 |")
}

func TestParsePPTX(t *testing.T) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	w, err := zw.Create("ppt/slides/slide1.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<p:sld xmlns:a="a" xmlns:p="p"><a:p><a:r><a:t>Deliveries up 20%</a:t></a:r></a:p></p:sld>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	out := new(bytes.Buffer)
	require.NoError(t, New().Parse(context.Background(), newDoc("tesla-2024.pptx", buf.Bytes()), out))
	assert.Equal(t, "Slide 1\nDeliveries up 20%\n", out.String())
}
