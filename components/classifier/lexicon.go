package classifier

import (
	"path"
	"slices"
	"strings"
)

// DefaultTopics is the finance lexicon a query is compared against
var DefaultTopics = []string{
	"stock",
	"loan",
	"investment",
	"finance",
	"bank",
	"dividend",
	"equity",
	"bond",
	"portfolio",
	"asset",
	"liability",
	"balance sheet",
	"income statement",
	"cash flow",
	"financial report",
}

// TopicsFromCorpus turns document identifiers into lexicon topics,
// "reports/tesla-2023_q4.pdf" becomes "tesla 2023 q4".
func TopicsFromCorpus(ids []string) []string {
	ret := make([]string, 0, len(ids))
	for _, id := range ids {
		base := path.Base(id)
		base = strings.TrimSuffix(base, path.Ext(base))
		topic := strings.Join(strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(base)), " ")
		if topic != "" {
			ret = append(ret, strings.ToLower(topic))
		}
	}
	return ret
}

// MergeTopics returns the de-duplicated union of topic lists, first occurrence wins
func MergeTopics(lists ...[]string) []string {
	var ret []string
	for _, list := range lists {
		for _, topic := range list {
			if topic = strings.TrimSpace(topic); topic != "" && !slices.Contains(ret, topic) {
				ret = append(ret, topic)
			}
		}
	}
	return ret
}
