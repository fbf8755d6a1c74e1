// Package embeddings provides text embedding providers for Smartie.
//
// Two implementations exist: an OpenAI-backed provider (via langchaingo) and
// a deterministic hash-based fallback. The OpenAI provider fails closed to
// the fallback so embedding consumers never see a provider error.
package embeddings

import (
	"context"
	"math"
)

// DefaultDimensions matches the text-embedding-ada-002 output size, which the
// fallback mirrors so real and simulated vectors are interchangeable.
const DefaultDimensions = 1536

// Provider produces fixed-length vector embeddings for text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Normalize scales a vector to unit length in place and returns it.
// Zero vectors are returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := 1.0 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * norm)
	}
	return vec
}
