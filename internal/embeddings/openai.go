package embeddings

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// maxEmbedChars bounds the text sent to the embedding API, mirroring the
// provider's own token limit.
const maxEmbedChars = 8000

// OpenAI embeds text through the OpenAI embeddings API. Any provider failure
// falls closed to the deterministic Fallback vector; callers never see the
// error.
type OpenAI struct {
	client   *openai.LLM
	fallback *Fallback
	logger   *zap.Logger
}

// NewOpenAI creates an OpenAI embedding provider. The API key is taken from
// apiKey or the OPENAI_API_KEY environment variable; an error is returned
// when neither is set so the caller can run on the Fallback alone.
func NewOpenAI(apiKey, model string, logger *zap.Logger) (*OpenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai embeddings: no API key configured")
	}
	if model == "" {
		model = "text-embedding-ada-002"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	return &OpenAI{
		client:   client,
		fallback: NewFallback(DefaultDimensions),
		logger:   logger,
	}, nil
}

// Embed returns the provider embedding for the text, normalized to unit
// length. On any provider error it logs and returns the deterministic
// fallback vector instead; the error is never propagated.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbedChars {
		text = text[:maxEmbedChars]
	}

	vecs, err := o.client.CreateEmbedding(ctx, []string{text})
	if err != nil || len(vecs) == 0 {
		o.logger.Warn("embedding call failed, using fallback vector", zap.Error(err))
		return o.fallback.Embed(ctx, text)
	}

	return Normalize(vecs[0]), nil
}

// Dimensions returns the embedding dimension.
func (o *OpenAI) Dimensions() int {
	return DefaultDimensions
}
