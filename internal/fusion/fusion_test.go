package fusion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madewith/smartie/internal/embeddings"
	"github.com/madewith/smartie/internal/graph"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("EmptyGraph", func(t *testing.T) {
		t.Parallel()
		g := graph.NewKnowledgeGraph(embeddings.NewFallback(64), nil)
		e := NewExtractor(g, nil)

		k := e.Extract(ctx, "anything")

		assert.True(t, k.Empty())
		assert.NotNil(t, k.Subgraph.Nodes)
		assert.Nil(t, k.Central)
	})

	t.Run("AnchorsExpandIntoNeighborhood", func(t *testing.T) {
		t.Parallel()
		g := graph.NewKnowledgeGraph(embeddings.NewFallback(64), nil)
		product := g.AddNode(ctx, graph.NodeProduct, "KitKat", nil)
		category := g.AddNode(ctx, graph.NodeCategory, "Chocolate", nil)
		brand := g.AddNode(ctx, graph.NodeBrand, "Nestlé", nil)
		_, err := g.AddRelationship(product.ID, category.ID, graph.RelBelongsTo, nil)
		require.NoError(t, err)
		_, err = g.AddRelationship(product.ID, brand.ID, graph.RelMadeBy, nil)
		require.NoError(t, err)

		e := NewExtractor(g, nil)
		k := e.Extract(ctx, "chocolate bars")

		require.False(t, k.Empty())
		assert.NotNil(t, k.Central)
		// Three connected nodes, all within depth 2 of any anchor.
		assert.Len(t, k.Subgraph.Nodes, 3)
		assert.Len(t, k.Subgraph.Relationships, 2)
	})

	t.Run("UnionHasNoDuplicates", func(t *testing.T) {
		t.Parallel()
		g := graph.NewKnowledgeGraph(embeddings.NewFallback(64), nil)
		a := g.AddNode(ctx, graph.NodeProduct, "KitKat", nil)
		b := g.AddNode(ctx, graph.NodeProduct, "Aero", nil)
		c := g.AddNode(ctx, graph.NodeCategory, "Chocolate", nil)
		_, err := g.AddRelationship(a.ID, c.ID, graph.RelBelongsTo, nil)
		require.NoError(t, err)
		_, err = g.AddRelationship(b.ID, c.ID, graph.RelBelongsTo, nil)
		require.NoError(t, err)

		e := NewExtractor(g, nil)
		k := e.Extract(ctx, "chocolate")

		seen := map[string]bool{}
		for _, node := range k.Subgraph.Nodes {
			assert.False(t, seen[node.ID], "duplicate node %s", node.ID)
			seen[node.ID] = true
		}
		relSeen := map[string]bool{}
		for _, rel := range k.Subgraph.Relationships {
			assert.False(t, relSeen[rel.ID], "duplicate relationship %s", rel.ID)
			relSeen[rel.ID] = true
		}
	})
}

func TestFormatContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("EmptyKnowledge", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, FormatContext(nil))
		assert.Empty(t, FormatContext(&Knowledge{}))
	})

	t.Run("RendersNodesAndRelationships", func(t *testing.T) {
		t.Parallel()
		g := graph.NewKnowledgeGraph(embeddings.NewFallback(64), nil)
		product := g.AddNode(ctx, graph.NodeProduct, "KitKat", nil)
		brand := g.AddNode(ctx, graph.NodeBrand, "Nestlé", nil)
		_, err := g.AddRelationship(product.ID, brand.ID, graph.RelMadeBy, nil)
		require.NoError(t, err)

		e := NewExtractor(g, nil)
		k := e.Extract(ctx, "kitkat")
		text := FormatContext(k)

		assert.Contains(t, text, "KNOWLEDGE GRAPH CONTEXT:")
		assert.Contains(t, text, "- KitKat (product)")
		assert.Contains(t, text, "- Nestlé (brand)")
		assert.Contains(t, text, "- KitKat -[MADE_BY]-> Nestlé")
		assert.Contains(t, text, "CENTRAL CONCEPT:")
	})

	t.Run("Deterministic", func(t *testing.T) {
		t.Parallel()
		g := graph.NewKnowledgeGraph(embeddings.NewFallback(64), nil)
		a := g.AddNode(ctx, graph.NodeProduct, "KitKat", nil)
		b := g.AddNode(ctx, graph.NodeProduct, "Aero", nil)
		c := g.AddNode(ctx, graph.NodeCategory, "Chocolate", nil)
		_, err := g.AddRelationship(a.ID, c.ID, graph.RelBelongsTo, nil)
		require.NoError(t, err)
		_, err = g.AddRelationship(b.ID, c.ID, graph.RelBelongsTo, nil)
		require.NoError(t, err)

		e := NewExtractor(g, nil)

		first := FormatContext(e.Extract(ctx, "chocolate"))
		second := FormatContext(e.Extract(ctx, "chocolate"))

		assert.Equal(t, first, second)
	})
}
