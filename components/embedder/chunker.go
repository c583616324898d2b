package embedder

// Chunker splits a document into embeddable parts
type Chunker interface {
	SplitText(string) []string
}
