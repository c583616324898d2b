package pptx

import (
	"archive/zip"
	"path"
	"strings"

	qxml "github.com/dgrr/quickxml"
)

// parseRels maps relationship ids of a slide to archive paths under prefix
func parseRels(f *zip.File, prefix string) (map[string]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	ret := make(map[string]string)
	r := qxml.NewReader(rc)
	for r.Next() {
		e, ok := r.Element().(*qxml.StartElement)
		if !ok || e.Name() != "Relationship" {
			continue
		}
		attrs := e.Attrs()
		if attrs.Len() == 0 {
			continue
		}
		ret[attrs.Get("Id").Value()] = target(attrs.Get("Target").Value(), prefix)
	}
	return ret, nil
}

// target resolves a relationship target relative to the slides folder
func target(v string, prefix string) string {
	if strings.HasPrefix(v, prefix) {
		return v
	}
	return prefix + strings.TrimPrefix(path.Clean(v), "../")
}
