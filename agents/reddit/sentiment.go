package reddit

import (
	"strings"

	"github.com/bububa/stockcritique/components/classifier"
)

var positiveWords = wordSet(
	"bull", "bullish", "buy", "buying", "long", "calls", "moon", "rally", "rallies", "surge", "surged",
	"soar", "soared", "gain", "gains", "gained", "growth", "grow", "growing", "beat", "beats", "strong",
	"profit", "profitable", "undervalued", "upside", "upgrade", "upgraded", "outperform", "good", "great",
	"excellent", "love", "win", "winning", "winner", "positive", "up", "higher", "record", "boom",
)

var negativeWords = wordSet(
	"bear", "bearish", "sell", "selling", "short", "puts", "crash", "crashed", "dump", "dumped", "plunge",
	"plunged", "drop", "dropped", "loss", "losses", "lose", "losing", "miss", "missed", "weak", "overvalued",
	"downside", "downgrade", "downgraded", "underperform", "bad", "terrible", "awful", "hate", "fear",
	"risk", "risky", "negative", "down", "lower", "debt", "bankrupt", "bankruptcy", "lawsuit", "fraud", "bubble",
)

var negators = wordSet(
	"not", "no", "never", "don't", "doesn't", "didn't", "isn't", "wasn't", "aren't", "won't", "can't",
	"don’t", "doesn’t", "didn’t", "isn’t", "wasn’t", "aren’t", "won’t", "can’t",
)

func wordSet(words ...string) map[string]struct{} {
	ret := make(map[string]struct{}, len(words))
	for _, w := range words {
		ret[w] = struct{}{}
	}
	return ret
}

// Sentiment scores text in [-1, 1] from finance polarity words.
// A negator directly before a polarity word flips it, text without polarity words scores 0.
func Sentiment(text string) float64 {
	var pos, neg int
	tokens := classifier.Tokenize(text)
	for idx, token := range tokens {
		polarity := 0
		if _, ok := positiveWords[token]; ok {
			polarity = 1
		} else if _, ok := negativeWords[token]; ok {
			polarity = -1
		}
		if polarity == 0 {
			continue
		}
		if idx > 0 {
			if _, ok := negators[tokens[idx-1]]; ok {
				polarity = -polarity
			}
		}
		if polarity > 0 {
			pos++
		} else {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// Label names a sentiment score
func Label(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}

// Truncate keeps the first n runes of s and marks the cut with "..."
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
