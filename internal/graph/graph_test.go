package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKnowledgeGraph(t *testing.T) {
	t.Parallel()

	g := NewKnowledgeGraph(nil, nil)

	assert.NotNil(t, g)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.RelationshipCount())
}

func TestKnowledgeGraph_AddNode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("AddSingle", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		node := g.AddNode(ctx, NodeProduct, "KitKat", nil)

		require.NotNil(t, node)
		assert.NotEmpty(t, node.ID)
		assert.Equal(t, 1, g.NodeCount())
		assert.Equal(t, node, g.GetNode(node.ID))
		assert.NotNil(t, node.Properties)
	})

	t.Run("TypeIndex", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		g.AddNode(ctx, NodeProduct, "KitKat", nil)
		g.AddNode(ctx, NodeProduct, "Aero", nil)
		g.AddNode(ctx, NodeRecipe, "Cookies", nil)

		assert.Len(t, g.NodesByType(NodeProduct), 2)
		assert.Len(t, g.NodesByType(NodeRecipe), 1)
		assert.Empty(t, g.NodesByType(NodeBrand))
	})

	t.Run("NameIndexCaseInsensitive", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		node := g.AddNode(ctx, NodeProduct, "Coffee Crisp", nil)

		id, ok := g.NodeIDByName("coffee crisp")
		assert.True(t, ok)
		assert.Equal(t, node.ID, id)

		id, ok = g.NodeIDByName("COFFEE CRISP")
		assert.True(t, ok)
		assert.Equal(t, node.ID, id)
	})

	t.Run("NameIndexLastWriteWins", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		first := g.AddNode(ctx, NodeProduct, "Smarties", nil)
		second := g.AddNode(ctx, NodeCategory, "Smarties", nil)

		assert.Equal(t, 2, g.NodeCount())
		id, ok := g.NodeIDByName("smarties")
		assert.True(t, ok)
		assert.Equal(t, second.ID, id)
		assert.NotNil(t, g.GetNode(first.ID))
	})
}

func TestKnowledgeGraph_PutNode(t *testing.T) {
	t.Parallel()

	t.Run("ReplaceExisting", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		g.PutNode(&GraphNode{ID: "1", Type: NodeProduct, Name: "KitKat"})
		g.PutNode(&GraphNode{ID: "1", Type: NodeProduct, Name: "KitKat Chunky"})

		assert.Equal(t, 1, g.NodeCount())
		assert.Equal(t, "KitKat Chunky", g.GetNode("1").Name)
	})

	t.Run("ReplaceWithDifferentType", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		g.PutNode(&GraphNode{ID: "1", Type: NodeProduct, Name: "Baking"})
		g.PutNode(&GraphNode{ID: "1", Type: NodeCategory, Name: "Baking"})

		assert.Empty(t, g.NodesByType(NodeProduct))
		assert.Len(t, g.NodesByType(NodeCategory), 1)
	})
}

func TestKnowledgeGraph_AddRelationship(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)
		a := g.AddNode(ctx, NodeProduct, "Morsels", nil)
		b := g.AddNode(ctx, NodeRecipe, "Cookies", nil)

		rel, err := g.AddRelationship(a.ID, b.ID, RelUsedIn, nil)

		require.NoError(t, err)
		assert.NotEmpty(t, rel.ID)
		assert.Equal(t, 1.0, rel.Weight)
		assert.Equal(t, 1, g.RelationshipCount())
		assert.Len(t, g.NodeRelationships(a.ID), 1)
		assert.Len(t, g.NodeRelationships(b.ID), 1)
		assert.Len(t, g.RelationshipsByType(RelUsedIn), 1)
	})

	t.Run("MissingSource", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)
		b := g.AddNode(ctx, NodeRecipe, "Cookies", nil)

		_, err := g.AddRelationship("nope", b.ID, RelUsedIn, nil)

		assert.ErrorIs(t, err, ErrNodeNotFound)
		assert.Equal(t, 0, g.RelationshipCount())
	})

	t.Run("MissingTarget", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)
		a := g.AddNode(ctx, NodeProduct, "Morsels", nil)

		_, err := g.AddRelationship(a.ID, "nope", RelUsedIn, nil)

		assert.ErrorIs(t, err, ErrNodeNotFound)
		assert.Equal(t, 0, g.RelationshipCount())
		assert.Empty(t, g.NodeRelationships(a.ID))
	})
}

func TestKnowledgeGraph_FindNodesByName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g := NewKnowledgeGraph(nil, nil)
	g.AddNode(ctx, NodeProduct, "KitKat Chunky", nil)
	g.AddNode(ctx, NodeProduct, "KitKat Mini", nil)
	g.AddNode(ctx, NodeProduct, "Aero", nil)

	assert.Len(t, g.FindNodesByName("kitkat"), 2)
	assert.Len(t, g.FindNodesByName("MINI"), 1)
	assert.Empty(t, g.FindNodesByName("smarties"))
}

func TestKnowledgeGraph_Stats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g := NewKnowledgeGraph(nil, nil)
	a := g.AddNode(ctx, NodeProduct, "KitKat", nil)
	b := g.AddNode(ctx, NodeCategory, "Chocolate", nil)
	g.AddNode(ctx, NodeProduct, "Aero", nil)
	_, err := g.AddRelationship(a.ID, b.ID, RelBelongsTo, nil)
	require.NoError(t, err)

	stats := g.Stats()

	assert.Equal(t, 3, stats.NodeCount)
	assert.Equal(t, 1, stats.RelationshipCount)
	assert.Equal(t, 2, stats.NodeTypes["product"])
	assert.Equal(t, 1, stats.NodeTypes["category"])
	assert.Equal(t, 1, stats.RelationshipTypes["BELONGS_TO"])
}

func TestGuessNodeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entity   string
		relation RelType
		isSource bool
		want     NodeType
	}{
		{"MadeByTargetIsBrand", "Nestlé", RelMadeBy, false, NodeBrand},
		{"ContainsTargetIsIngredient", "Cocoa", RelContains, false, NodeIngredient},
		{"BelongsToTargetIsCategory", "Baking", RelBelongsTo, false, NodeCategory},
		{"UsedInSourceIsIngredient", "Morsels", RelUsedIn, true, NodeIngredient},
		{"RecipeByName", "Chocolate Chip Cookie Recipe", RelRelatedTo, true, NodeRecipe},
		{"BrandByName", "Nestlé Canada", RelRelatedTo, true, NodeBrand},
		{"DefaultPage", "Some Landing", RelRelatedTo, true, NodePage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GuessNodeType(tt.entity, tt.relation, tt.isSource))
		})
	}
}
