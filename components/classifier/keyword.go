package classifier

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/clipperhouse/uax29/words"

	"github.com/bububa/stockcritique/components/embedder/splitter"
)

// KeywordScorer is the offline Scorer, 1 when any lexicon topic occurs in the
// query as a whole word sequence and 0 otherwise.
type KeywordScorer struct {
	mu     sync.RWMutex
	topics [][]string
}

var _ Scorer = (*KeywordScorer)(nil)

func NewKeywordScorer(topics ...string) *KeywordScorer {
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	ret := new(KeywordScorer)
	ret.SetTopics(topics)
	return ret
}

// SetTopics replaces the lexicon
func (k *KeywordScorer) SetTopics(topics []string) {
	tokenized := make([][]string, 0, len(topics))
	for _, topic := range MergeTopics(topics) {
		if tokens := Tokenize(topic); len(tokens) > 0 {
			tokenized = append(tokenized, tokens)
		}
	}
	k.mu.Lock()
	k.topics = tokenized
	k.mu.Unlock()
}

func (k *KeywordScorer) Classify(_ context.Context, query string) (float64, error) {
	tokens := Tokenize(query)
	k.mu.RLock()
	defer k.mu.RUnlock()
	for _, topic := range k.topics {
		if containsSequence(tokens, topic) {
			return 1, nil
		}
	}
	return 0, nil
}

// Tokenize returns the lower cased word-like uax29 segments of text
func Tokenize(text string) []string {
	var ret []string
	seg := words.NewSegmenter([]byte(text))
	for seg.Next() {
		if bs := seg.Bytes(); splitter.IsWordlike(bs) {
			ret = append(ret, strings.ToLower(string(bs)))
		}
	}
	return ret
}

func containsSequence(tokens []string, seq []string) bool {
	for i := 0; i+len(seq) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(seq)], seq) {
			return true
		}
	}
	return false
}
