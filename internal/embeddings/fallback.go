package embeddings

import (
	"context"
	"math"
)

// Fallback is a deterministic pseudo-embedding provider derived from a string
// hash. The same text always produces the same unit-length vector, which
// keeps similarity search somewhat content-aware without any external model
// and gives tests a provider that never fails.
type Fallback struct {
	dimensions int
}

// NewFallback returns a deterministic provider with the given dimensions.
// Non-positive dimensions default to DefaultDimensions.
func NewFallback(dimensions int) *Fallback {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Fallback{dimensions: dimensions}
}

// Embed returns a normalized vector seeded by the text hash. It never fails.
func (f *Fallback) Embed(_ context.Context, text string) ([]float32, error) {
	seed := float64(hashString(text))
	vec := make([]float32, f.dimensions)
	for i := range vec {
		v := math.Sin(seed*float64(i+1)) * 10000
		vec[i] = float32(v - math.Floor(v))
	}
	return Normalize(vec), nil
}

// Dimensions returns the embedding dimension.
func (f *Fallback) Dimensions() int {
	return f.dimensions
}

// hashString is a simple 32-bit string hash. Only the first 1000 characters
// contribute, bounding cost on large page contents.
func hashString(s string) int32 {
	var hash int32
	for i := 0; i < len(s) && i < 1000; i++ {
		hash = hash*31 + int32(s[i])
	}
	return hash
}
