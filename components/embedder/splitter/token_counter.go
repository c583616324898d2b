package splitter

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/words"
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter defines the interface for counting tokens in a text part
type TokenCounter interface {
	Count(p []byte) int
}

// WordsTokenCounter counts word-like uax29 segments, whitespace and punctuation count as zero
type WordsTokenCounter struct{}

func (c WordsTokenCounter) Count(p []byte) int {
	var n int
	for _, seg := range words.SegmentAll(p) {
		if IsWordlike(seg) {
			n++
		}
	}
	return n
}

// IsWordlike reports whether a segment contains a letter or a digit
func IsWordlike(seg []byte) bool {
	for len(seg) > 0 {
		r, size := utf8.DecodeRune(seg)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
		seg = seg[size:]
	}
	return false
}

// TikTokenCounter provides accurate token counting using the tiktoken library,
// which implements the tokenization schemes used by OpenAI models.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a new TikTokenCounter using the specified encoding.
// Common encodings include:
// - "cl100k_base" (GPT-4, ChatGPT)
// - "o200k_base" (GPT-4o)
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

// Count returns the exact number of tokens in the text according to the
// specified tiktoken encoding.
func (ttc *TikTokenCounter) Count(p []byte) int {
	return len(ttc.tke.Encode(string(p), nil, nil))
}
