package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "same direction", a: []float64{1, 2, 3}, b: []float64{2, 4, 6}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
	_, err := CosineSimilarity([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrVectorLengthMismatch)
}

func TestEmbeddingUUIDIsStable(t *testing.T) {
	a := Embedding{Object: "Revenue grew", Meta: map[string]string{"company": "tesla", "year": "2023"}}
	b := Embedding{Object: "Revenue grew", Meta: map[string]string{"year": "2023", "company": "tesla"}}
	assert.Equal(t, a.UUID(), b.UUID())
	b.Meta["year"] = "2024"
	assert.NotEqual(t, a.UUID(), b.UUID())
}
