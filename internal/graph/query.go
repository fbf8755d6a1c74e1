package graph

// DefaultMaxPaths caps FindPaths results when the caller passes 0.
// Path enumeration is exponential on dense graphs; the cap bounds worst-case
// cost without changing behavior on the small graphs this store is built for.
const DefaultMaxPaths = 100

// Query performs a breadth-first traversal from the start node, bounded by
// maxDepth edges, and returns the union of all visited nodes and traversed
// relationships.
//
// Each node is visited at most once. When typeFilter is non-empty, only
// relationships whose type appears in the filter are traversed. Edges are
// followed in both directions. Result membership is deterministic; ordering
// follows map iteration over the incident-relationship index and is not.
func (g *KnowledgeGraph) Query(startNodeID string, maxDepth int, typeFilter ...RelType) *Subgraph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	allowed := make(map[RelType]struct{}, len(typeFilter))
	for _, t := range typeFilter {
		allowed[t] = struct{}{}
	}

	result := &Subgraph{}
	seenRels := make(map[string]struct{})
	visited := make(map[string]struct{})

	type item struct {
		nodeID string
		depth  int
	}
	queue := []item{{nodeID: startNodeID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if _, ok := visited[cur.nodeID]; ok || cur.depth > maxDepth {
			continue
		}
		node, ok := g.nodes[cur.nodeID]
		if !ok {
			continue
		}
		visited[cur.nodeID] = struct{}{}
		result.Nodes = append(result.Nodes, node)

		for relID := range g.nodeRels[cur.nodeID] {
			rel := g.relationships[relID]
			if rel == nil {
				continue
			}
			if len(allowed) > 0 {
				if _, ok := allowed[rel.Type]; !ok {
					continue
				}
			}
			// Depth counts edges traversed, so neighbors past the limit
			// must not pull their relationship into the result either.
			if cur.depth >= maxDepth {
				continue
			}
			if _, ok := seenRels[relID]; !ok {
				seenRels[relID] = struct{}{}
				result.Relationships = append(result.Relationships, rel)
			}

			next := rel.TargetID
			if next == cur.nodeID {
				next = rel.SourceID
			}
			if _, ok := visited[next]; !ok {
				queue = append(queue, item{nodeID: next, depth: cur.depth + 1})
			}
		}
	}

	if result.Nodes == nil {
		result.Nodes = []*GraphNode{}
	}
	if result.Relationships == nil {
		result.Relationships = []*GraphRelationship{}
	}
	return result
}

// FindPaths enumerates simple paths (no repeated node within a path) between
// two nodes, up to maxDepth edges long, using breadth-first expansion of
// partial paths. Edges are followed in both directions.
//
// When source equals target the single trivial zero-length path is returned.
// maxPaths caps the number of paths collected; 0 means DefaultMaxPaths.
func (g *KnowledgeGraph) FindPaths(sourceID, targetID string, maxDepth, maxPaths int) []*Path {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	paths := []*Path{}
	source, ok := g.nodes[sourceID]
	if !ok {
		return paths
	}
	if _, ok := g.nodes[targetID]; !ok {
		return paths
	}

	if sourceID == targetID {
		return []*Path{{Nodes: []*GraphNode{source}, Relationships: []*GraphRelationship{}}}
	}

	type partial struct {
		nodeIDs []string
		relIDs  []string
	}
	queue := []partial{{nodeIDs: []string{sourceID}}}

	for len(queue) > 0 && len(paths) < maxPaths {
		cur := queue[0]
		queue = queue[1:]

		last := cur.nodeIDs[len(cur.nodeIDs)-1]
		if last == targetID {
			paths = append(paths, g.materializePath(cur.nodeIDs, cur.relIDs))
			continue
		}
		if len(cur.relIDs) >= maxDepth {
			continue
		}

		for relID := range g.nodeRels[last] {
			rel := g.relationships[relID]
			if rel == nil {
				continue
			}
			next := rel.TargetID
			if next == last {
				next = rel.SourceID
			}
			if containsID(cur.nodeIDs, next) {
				continue
			}
			nodeIDs := append(append([]string{}, cur.nodeIDs...), next)
			relIDs := append(append([]string{}, cur.relIDs...), relID)
			queue = append(queue, partial{nodeIDs: nodeIDs, relIDs: relIDs})
		}
	}

	return paths
}

// materializePath converts ID paths to node and relationship objects.
// Must be called with the read lock held.
func (g *KnowledgeGraph) materializePath(nodeIDs, relIDs []string) *Path {
	p := &Path{
		Nodes:         make([]*GraphNode, 0, len(nodeIDs)),
		Relationships: make([]*GraphRelationship, 0, len(relIDs)),
	}
	for _, id := range nodeIDs {
		if node := g.nodes[id]; node != nil {
			p.Nodes = append(p.Nodes, node)
		}
	}
	for _, id := range relIDs {
		if rel := g.relationships[id]; rel != nil {
			p.Relationships = append(p.Relationships, rel)
		}
	}
	return p
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
