package finance

import (
	"path"
	"regexp"
	"strings"
)

var metricPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"Revenue", regexp.MustCompile(`(?i)\brevenues?:?\s*\$?(\d[\d,.]*)`)},
	{"Operating Income", regexp.MustCompile(`(?i)\boperating income:?\s*\$?(\d[\d,.]*)`)},
	{"Net Income", regexp.MustCompile(`(?i)\bnet income:?\s*\$?(\d[\d,.]*)`)},
	{"Earnings Per Share", regexp.MustCompile(`(?i)\bearnings per share:?\s*\$?(\d[\d,.]*)`)},
	{"Total Assets", regexp.MustCompile(`(?i)\btotal assets:?\s*\$?(\d[\d,.]*)`)},
	{"Total Liabilities", regexp.MustCompile(`(?i)\btotal liabilities:?\s*\$?(\d[\d,.]*)`)},
}

var yearPattern = regexp.MustCompile(`20\d{2}`)

// ExtractMetrics finds the first figure following each known metric label
func ExtractMetrics(text string) map[string]string {
	ret := make(map[string]string)
	for _, p := range metricPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			ret[p.name] = strings.TrimRight(m[1], ",.")
		}
	}
	return ret
}

// DocumentMeta derives company and year from a "<company>-<year>" file name
func DocumentMeta(fileName string) (company string, year string) {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	company = base
	if idx := strings.IndexByte(base, '-'); idx >= 0 {
		company = base[:idx]
	}
	company = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(company, "_", " ")))
	year = yearPattern.FindString(base)
	if year == "" {
		year = "Unknown"
	}
	return company, year
}
