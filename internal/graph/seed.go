package graph

// Seed populates an empty graph with a small sample of product knowledge so
// the chat endpoints have something to answer from before any scrape runs.
// It is a no-op on a non-empty graph. Seeded nodes have no embeddings; call
// RefreshEmbeddings afterwards when a provider is configured.
func Seed(g *KnowledgeGraph) {
	if g.NodeCount() > 0 {
		return
	}

	nodes := []*GraphNode{
		{
			ID:   "1",
			Type: NodeProduct,
			Name: "Nestlé Toll House Morsels",
			Properties: map[string]any{
				"description": "Semi-sweet chocolate chips",
				"size":        "340g",
			},
		},
		{
			ID:   "2",
			Type: NodeRecipe,
			Name: "Chocolate Chip Cookies",
			Properties: map[string]any{
				"difficulty": "Easy",
				"prepTime":   "15 minutes",
				"cookTime":   "12 minutes",
			},
		},
		{
			ID:   "3",
			Type: NodeCategory,
			Name: "Baking",
			Properties: map[string]any{
				"description": "Baking products and recipes",
			},
		},
	}
	for _, node := range nodes {
		g.PutNode(node)
	}

	rels := []*GraphRelationship{
		{ID: "r1", Type: RelUsedIn, SourceID: "1", TargetID: "2", Properties: map[string]any{}, Weight: 1.0},
		{ID: "r2", Type: RelBelongsTo, SourceID: "1", TargetID: "3", Properties: map[string]any{}, Weight: 1.0},
		{ID: "r3", Type: RelBelongsTo, SourceID: "2", TargetID: "3", Properties: map[string]any{}, Weight: 1.0},
	}
	for _, rel := range rels {
		// Endpoints were just inserted; PutRelationship cannot fail here.
		_ = g.PutRelationship(rel)
	}
}
