package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeGraph_ImportEntityRelations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("CreatesNodesAndRelationship", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		count := g.ImportEntityRelations(ctx, []EntityRelation{
			{Source: "Aero Bar", Relation: "MADE_BY", Target: "Nestlé"},
		})

		assert.Equal(t, 3, count)
		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 1, g.RelationshipCount())

		brandID, ok := g.NodeIDByName("Nestlé")
		require.True(t, ok)
		assert.Equal(t, NodeBrand, g.GetNode(brandID).Type)
	})

	t.Run("ReusesExistingNodesByName", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)
		existing := g.AddNode(ctx, NodeProduct, "Aero Bar", nil)

		count := g.ImportEntityRelations(ctx, []EntityRelation{
			{Source: "Aero Bar", Relation: "MADE_BY", Target: "Nestlé"},
		})

		// One new node plus one relationship.
		assert.Equal(t, 2, count)
		assert.Equal(t, 2, g.NodeCount())
		rels := g.NodeRelationships(existing.ID)
		require.Len(t, rels, 1)
		assert.Equal(t, RelMadeBy, rels[0].Type)
	})

	t.Run("MarksCreatedNodesInferred", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		g.ImportEntityRelations(ctx, []EntityRelation{
			{Source: "Aero Bar", Relation: "CONTAINS", Target: "Cocoa"},
		})

		id, ok := g.NodeIDByName("Cocoa")
		require.True(t, ok)
		node := g.GetNode(id)
		assert.Equal(t, NodeIngredient, node.Type)
		assert.Equal(t, true, node.Properties["inferred"])
	})

	t.Run("MultipleTriplesShareNodes", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		count := g.ImportEntityRelations(ctx, []EntityRelation{
			{Source: "Aero Bar", Relation: "MADE_BY", Target: "Nestlé"},
			{Source: "KitKat", Relation: "MADE_BY", Target: "Nestlé"},
		})

		// 3 nodes + 2 relationships.
		assert.Equal(t, 5, count)
		assert.Equal(t, 3, g.NodeCount())
		assert.Equal(t, 2, g.RelationshipCount())
	})

	t.Run("EmptyInput", func(t *testing.T) {
		t.Parallel()
		g := NewKnowledgeGraph(nil, nil)

		assert.Equal(t, 0, g.ImportEntityRelations(ctx, nil))
		assert.Equal(t, 0, g.NodeCount())
	})
}
