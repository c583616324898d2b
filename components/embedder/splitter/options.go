package splitter

import (
	"bytes"
	"io"
	"strings"

	"github.com/clipperhouse/uax29/sentences"
	"github.com/clipperhouse/uax29/words"

	"github.com/bububa/stockcritique/components/embedder"
)

// Scanner is the segment iterator shared by uax29 scanners
type Scanner interface {
	Bytes() []byte
	Scan() bool
	Err() error
}

type Options struct {
	chunkSize    int
	overlap      int
	tokenCounter TokenCounter
}

// Option is a function type for configuring splitter Options.
type Option func(*Options)

func WithChunkSize(size int) Option {
	return func(o *Options) {
		o.chunkSize = size
	}
}

func WithOverlap(overlap int) Option {
	return func(o *Options) {
		o.overlap = overlap
	}
}

func WithTokenCounter(counter TokenCounter) Option {
	return func(o *Options) {
		o.tokenCounter = counter
	}
}

// Splitter packs uax29 segments into chunks of at most chunkSize tokens.
// A single segment larger than chunkSize becomes its own chunk.
type Splitter struct {
	Options
	newScanner func(io.Reader) Scanner
}

var _ embedder.Chunker = (*Splitter)(nil)

// NewSentences returns a Splitter which never breaks a sentence
func NewSentences(opts ...Option) *Splitter {
	return newSplitter(func(r io.Reader) Scanner {
		return sentences.NewScanner(r)
	}, opts...)
}

// NewWords returns a Splitter which packs words
func NewWords(opts ...Option) *Splitter {
	return newSplitter(func(r io.Reader) Scanner {
		return words.NewScanner(r)
	}, opts...)
}

func newSplitter(fn func(io.Reader) Scanner, opts ...Option) *Splitter {
	ret := &Splitter{newScanner: fn}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.chunkSize <= 0 {
		ret.chunkSize = 200
	}
	if ret.overlap < 0 {
		ret.overlap = 0
	}
	if ret.tokenCounter == nil {
		ret.tokenCounter = WordsTokenCounter{}
	}
	return ret
}

// part is a non blank segment located by byte offsets into the source text
type part struct {
	start  int
	end    int
	tokens int
}

func (s *Splitter) parts(txt string) ([]part, error) {
	scanner := s.newScanner(strings.NewReader(txt))
	var (
		ret    []part
		offset int
	)
	for scanner.Scan() {
		seg := scanner.Bytes()
		start := offset
		offset += len(seg)
		if len(bytes.TrimSpace(seg)) == 0 {
			continue
		}
		ret = append(ret, part{start: start, end: offset, tokens: s.tokenCounter.Count(seg)})
	}
	return ret, scanner.Err()
}

// SplitText splits txt into chunks, it returns nil if txt could not be segmented
func (s *Splitter) SplitText(txt string) []string {
	parts, err := s.parts(txt)
	if err != nil {
		return nil
	}
	var (
		chunks []string
		start  int
		tokens int
	)
	emit := func(from, to int) {
		chunks = append(chunks, strings.TrimSpace(txt[parts[from].start:parts[to-1].end]))
	}
	for i, p := range parts {
		if tokens+p.tokens > s.chunkSize && i > start {
			emit(start, i)
			start = max(start, i-s.overlapParts(parts, i))
			tokens = 0
			for j := start; j < i; j++ {
				tokens += parts[j].tokens
			}
		}
		tokens += p.tokens
	}
	if start < len(parts) {
		emit(start, len(parts))
	}
	return chunks
}

// overlapParts calculates how many parts before end are needed to reach the desired token overlap
func (s *Splitter) overlapParts(parts []part, end int) int {
	var overlapTokens, n int
	for i := end - 1; i >= 0 && overlapTokens < s.overlap; i-- {
		overlapTokens += parts[i].tokens
		n++
	}
	return n
}
