package graph

import (
	"context"

	"go.uber.org/zap"
)

// ImportEntityRelations bulk-imports (source, relation, target) triples
// produced by the scraper.
//
// For each triple, the source and target nodes are resolved by name or
// created with a heuristically guessed type; the relationship is then
// created. Every node or relationship created increments the returned count.
// Per-triple failures are logged and skipped; partial success is the normal
// completion mode, never an error.
//
// Nodes created here carry properties["inferred"] = true so that downstream
// consumers can tell heuristic classifications from explicitly added nodes.
func (g *KnowledgeGraph) ImportEntityRelations(ctx context.Context, relations []EntityRelation) int {
	added := 0

	for _, rel := range relations {
		relType := RelType(rel.Relation)

		sourceID, ok := g.NodeIDByName(rel.Source)
		if !ok {
			node := g.AddNode(ctx, GuessNodeType(rel.Source, relType, true), rel.Source,
				map[string]any{"inferred": true})
			sourceID = node.ID
			added++
		}

		targetID, ok := g.NodeIDByName(rel.Target)
		if !ok {
			node := g.AddNode(ctx, GuessNodeType(rel.Target, relType, false), rel.Target,
				map[string]any{"inferred": true})
			targetID = node.ID
			added++
		}

		if _, err := g.AddRelationship(sourceID, targetID, relType, nil); err != nil {
			g.logger.Warn("skipping relation import",
				zap.String("source", rel.Source),
				zap.String("relation", rel.Relation),
				zap.String("target", rel.Target),
				zap.Error(err))
			continue
		}
		added++
	}

	return added
}
