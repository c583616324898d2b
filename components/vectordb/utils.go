package vectordb

// Float32s converts a Vector ([]float64) to []float32.
// chromem and milvus store float32 vectors while embedders return float64.
func Float32s(v []float64) []float32 {
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = float32(val)
	}
	return result
}
