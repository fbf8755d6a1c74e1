package graph

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// ScoredNode pairs a node with its similarity score against a query.
type ScoredNode struct {
	Node  *GraphNode
	Score float64
}

// SemanticSearch ranks nodes by semantic similarity to the query and returns
// the top limit matches.
//
// Scoring is the dot product of L2-normalized vectors, equivalent to cosine
// similarity since embeddings are normalized at creation time. When no nodes
// carry embeddings, or the embedding provider fails, it falls back to
// case-insensitive substring name search. Ties break on node ID so repeated
// searches against an unchanged graph return the same ordered sequence.
func (g *KnowledgeGraph) SemanticSearch(ctx context.Context, query string, limit int) []*GraphNode {
	if limit <= 0 {
		limit = 5
	}

	g.mu.RLock()
	candidates := make([]*GraphNode, 0, len(g.nodes))
	for _, node := range g.nodes {
		if len(node.Embedding) > 0 {
			candidates = append(candidates, node)
		}
	}
	g.mu.RUnlock()

	if len(candidates) == 0 || g.embedder == nil {
		return truncateNodes(g.FindNodesByName(query), limit)
	}

	queryVec, err := g.embedder.Embed(ctx, query)
	if err != nil {
		g.logger.Warn("query embedding failed, falling back to name search",
			zap.String("query", query), zap.Error(err))
		return truncateNodes(g.FindNodesByName(query), limit)
	}

	scored := make([]ScoredNode, 0, len(candidates))
	for _, node := range candidates {
		scored = append(scored, ScoredNode{Node: node, Score: DotProduct(queryVec, node.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Node.ID < scored[j].Node.ID
	})

	if limit > len(scored) {
		limit = len(scored)
	}
	result := make([]*GraphNode, limit)
	for i := 0; i < limit; i++ {
		result[i] = scored[i].Node
	}
	return result
}

// RefreshEmbeddings computes embeddings for every node that lacks one, such
// as seeded nodes or nodes reloaded from a snapshot written before embedding
// succeeded. Returns the number of nodes embedded. Failures are logged and
// skipped.
func (g *KnowledgeGraph) RefreshEmbeddings(ctx context.Context) int {
	if g.embedder == nil {
		return 0
	}

	g.mu.RLock()
	pending := make([]*GraphNode, 0)
	for _, node := range g.nodes {
		if len(node.Embedding) == 0 {
			pending = append(pending, node)
		}
	}
	g.mu.RUnlock()

	count := 0
	for _, node := range pending {
		vec, err := g.embedder.Embed(ctx, EmbeddingText(node))
		if err != nil {
			g.logger.Warn("embedding refresh failed", zap.String("id", node.ID), zap.Error(err))
			continue
		}
		g.mu.Lock()
		node.Embedding = vec
		g.mu.Unlock()
		count++
	}
	return count
}

// DotProduct returns the dot product of two vectors, or 0 when lengths
// differ. For L2-normalized operands this is the cosine similarity.
func DotProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

func truncateNodes(nodes []*GraphNode, limit int) []*GraphNode {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes
}
