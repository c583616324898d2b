package document

import (
	"strings"
	"unicode"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
)

// EscapeMarkdown escapes characters with a meaning inside a markdown table cell
func EscapeMarkdown(v string) string {
	return markdownEscaper.Replace(v)
}

// StripUnprintable drops control characters, newlines and tabs become spaces
func StripUnprintable(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case !unicode.IsPrint(r) && !unicode.IsSpace(r):
			return -1
		}
		return r
	}, v)
}
