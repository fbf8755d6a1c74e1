package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madewith/smartie/internal/embeddings"
)

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("provider down")
}

func TestKnowledgeGraph_SemanticSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("RanksByQuerySimilarity", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(embeddings.NewFallback(64), nil)

		kitkat := g.AddNode(ctx, NodeProduct, "KitKat", nil)
		g.AddNode(ctx, NodeProduct, "Aero", nil)
		g.AddNode(ctx, NodeRecipe, "Cookies", nil)

		results := g.SemanticSearch(ctx, EmbeddingText(kitkat), 3)

		require.Len(t, results, 3)
		assert.Equal(t, kitkat.ID, results[0].ID)
	})

	t.Run("DeterministicOrdering", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(embeddings.NewFallback(64), nil)
		g.AddNode(ctx, NodeProduct, "KitKat", nil)
		g.AddNode(ctx, NodeProduct, "Aero", nil)
		g.AddNode(ctx, NodeProduct, "Smarties", nil)

		first := g.SemanticSearch(ctx, "chocolate", 3)
		second := g.SemanticSearch(ctx, "chocolate", 3)

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].ID, second[i].ID)
		}
	})

	t.Run("LimitApplied", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(embeddings.NewFallback(64), nil)
		g.AddNode(ctx, NodeProduct, "KitKat", nil)
		g.AddNode(ctx, NodeProduct, "Aero", nil)
		g.AddNode(ctx, NodeProduct, "Smarties", nil)

		assert.Len(t, g.SemanticSearch(ctx, "chocolate", 2), 2)
	})

	t.Run("FallsBackToNameSearchWithoutEmbeddings", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)
		g.AddNode(ctx, NodeProduct, "KitKat Chunky", nil)
		g.AddNode(ctx, NodeProduct, "Aero", nil)

		results := g.SemanticSearch(ctx, "kitkat", 5)

		require.Len(t, results, 1)
		assert.Equal(t, "KitKat Chunky", results[0].Name)
	})

	t.Run("FallsBackWhenProviderFails", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(failingEmbedder{}, nil)
		// Nodes get no embeddings because the provider errors on insert too,
		// so put embedded nodes in directly.
		g.PutNode(&GraphNode{ID: "1", Type: NodeProduct, Name: "KitKat", Embedding: []float32{1, 0}})

		results := g.SemanticSearch(ctx, "kitkat", 5)

		require.Len(t, results, 1)
		assert.Equal(t, "1", results[0].ID)
	})
}

func TestKnowledgeGraph_RefreshEmbeddings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g := NewKnowledgeGraph(embeddings.NewFallback(64), nil)
	g.PutNode(&GraphNode{ID: "1", Type: NodeProduct, Name: "KitKat"})
	g.PutNode(&GraphNode{ID: "2", Type: NodeProduct, Name: "Aero"})
	g.AddNode(ctx, NodeProduct, "Smarties", nil) // already embedded

	count := g.RefreshEmbeddings(ctx)

	assert.Equal(t, 2, count)
	assert.NotEmpty(t, g.GetNode("1").Embedding)
	assert.NotEmpty(t, g.GetNode("2").Embedding)
	assert.Equal(t, 0, g.RefreshEmbeddings(ctx))
}

func TestDotProduct(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, DotProduct([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, DotProduct([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, DotProduct([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, DotProduct(nil, nil))
}
