package embedder

import (
	"bytes"
	"context"
	"errors"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/bububa/stockcritique/components"
)

// ErrVectorLengthMismatch is returned when two vectors of different dimensions are compared
var ErrVectorLengthMismatch = errors.New("vector length mismatch")

// Embedder turns text into vectors
type Embedder interface {
	Provider() Provider
	Model() string
	Embed(context.Context, string, *Embedding, *components.LLMUsage) error
	BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]Embedding, error)
}

// Embedding is the vector representation of a piece of text and its metadata
type Embedding struct {
	Object    string            `json:"object"`
	Embedding []float64         `json:"embedding"`
	Index     int               `json:"index"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// UUID returns a deterministic id derived from content and metadata
func (e Embedding) UUID() string {
	sb := new(bytes.Buffer)
	sb.WriteString(e.Object)
	keys := make([]string, 0, len(e.Meta))
	for k := range e.Meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		sb.WriteString(k + ":" + e.Meta[k])
		sb.WriteByte('\n')
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, sb.Bytes()).String()
}

// CosineSimilarity returns the cosine similarity of two vectors.
// Zero vectors have a similarity of 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrVectorLengthMismatch
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Float64s converts a float32 vector to float64
func Float64s(v []float32) []float64 {
	ret := make([]float64, len(v))
	for i, val := range v {
		ret[i] = float64(val)
	}
	return ret
}
