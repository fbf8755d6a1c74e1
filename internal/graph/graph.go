// Package graph provides the in-memory knowledge graph for Smartie.
//
// It provides a lightweight, map-backed graph that stores GraphNode and
// GraphRelationship instances with O(1) lookups by ID. Secondary indexes
// on type, lowercase name, relationship type, and incident relationships
// ensure that queries scale with the result set rather than the graph.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNodeNotFound is returned when a relationship references a node ID that
// does not exist in the graph.
var ErrNodeNotFound = errors.New("node not found")

// Embedder produces a semantic embedding for a piece of text. The graph uses
// it to embed node serializations on insert and queries on search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeGraph is an in-memory directed graph of site entities and their
// relationships.
//
// Nodes are keyed by their ID string; relationships are keyed likewise.
// All mutations update the primary map and every derived index under a single
// write lock, so no partial-index state is observable between operations.
type KnowledgeGraph struct {
	mu            sync.RWMutex
	nodes         map[string]*GraphNode
	relationships map[string]*GraphRelationship

	// Secondary indexes, kept in sync by the Put helpers.
	nodesByType map[NodeType]map[string]struct{}
	nodesByName map[string]string // lowercase name -> node ID, last write wins
	relsByType  map[RelType]map[string]struct{}
	nodeRels    map[string]map[string]struct{} // node ID -> incident relationship IDs

	embedder Embedder
	logger   *zap.Logger
}

// NewKnowledgeGraph creates a new empty knowledge graph. The embedder may be
// nil, in which case nodes are stored without embeddings and semantic search
// falls back to name matching.
func NewKnowledgeGraph(embedder Embedder, logger *zap.Logger) *KnowledgeGraph {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeGraph{
		nodes:         make(map[string]*GraphNode),
		relationships: make(map[string]*GraphRelationship),
		nodesByType:   make(map[NodeType]map[string]struct{}),
		nodesByName:   make(map[string]string),
		relsByType:    make(map[RelType]map[string]struct{}),
		nodeRels:      make(map[string]map[string]struct{}),
		embedder:      embedder,
		logger:        logger,
	}
}

// AddNode creates a node with a generated ID, embeds its textual
// serialization, and inserts it into the graph.
//
// Embedding failure is non-fatal: the node is stored without an embedding and
// the failure is logged. Duplicate names are allowed; the name index keeps the
// most recent node for a given name.
func (g *KnowledgeGraph) AddNode(ctx context.Context, typ NodeType, name string, properties map[string]any) *GraphNode {
	if properties == nil {
		properties = make(map[string]any)
	}
	node := &GraphNode{
		ID:         "n-" + uuid.NewString(),
		Type:       typ,
		Name:       name,
		Properties: properties,
	}

	// Embed outside the lock: the provider call is the only suspension point.
	if g.embedder != nil {
		vec, err := g.embedder.Embed(ctx, EmbeddingText(node))
		if err != nil {
			g.logger.Warn("node embedding failed, storing without embedding",
				zap.String("name", name), zap.Error(err))
		} else {
			node.Embedding = vec
		}
	}

	g.PutNode(node)
	g.logger.Debug("added node", zap.String("id", node.ID),
		zap.String("type", string(typ)), zap.String("name", name))
	return node
}

// PutNode inserts a node with its pre-assigned ID, replacing any existing
// node with the same ID. Used by AddNode, seeding, and snapshot reload.
func (g *KnowledgeGraph) PutNode(node *GraphNode) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.nodes[node.ID]; ok {
		if old.Type != node.Type {
			delete(g.nodesByType[old.Type], node.ID)
		}
		// Drop a stale name mapping only if it still points at this node.
		if g.nodesByName[lowerName(old.Name)] == node.ID {
			delete(g.nodesByName, lowerName(old.Name))
		}
	}

	g.nodes[node.ID] = node

	if g.nodesByType[node.Type] == nil {
		g.nodesByType[node.Type] = make(map[string]struct{})
	}
	g.nodesByType[node.Type][node.ID] = struct{}{}
	g.nodesByName[lowerName(node.Name)] = node.ID
	if g.nodeRels[node.ID] == nil {
		g.nodeRels[node.ID] = make(map[string]struct{})
	}
}

// AddRelationship creates a directed relationship between two existing nodes.
// Returns ErrNodeNotFound if either endpoint is missing; on failure the graph
// and its indexes are untouched.
func (g *KnowledgeGraph) AddRelationship(sourceID, targetID string, typ RelType, properties map[string]any) (*GraphRelationship, error) {
	if properties == nil {
		properties = make(map[string]any)
	}
	rel := &GraphRelationship{
		ID:         "r-" + uuid.NewString(),
		Type:       typ,
		SourceID:   sourceID,
		TargetID:   targetID,
		Properties: properties,
		Weight:     1.0,
	}
	if err := g.PutRelationship(rel); err != nil {
		return nil, err
	}
	g.logger.Debug("added relationship", zap.String("type", string(typ)),
		zap.String("source", sourceID), zap.String("target", targetID))
	return rel, nil
}

// PutRelationship inserts a relationship with its pre-assigned ID after
// validating both endpoints exist. Replaces any existing relationship with
// the same ID.
func (g *KnowledgeGraph) PutRelationship(rel *GraphRelationship) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[rel.SourceID]; !ok {
		return fmt.Errorf("source node %q: %w", rel.SourceID, ErrNodeNotFound)
	}
	if _, ok := g.nodes[rel.TargetID]; !ok {
		return fmt.Errorf("target node %q: %w", rel.TargetID, ErrNodeNotFound)
	}

	if old, ok := g.relationships[rel.ID]; ok {
		delete(g.relsByType[old.Type], rel.ID)
		delete(g.nodeRels[old.SourceID], rel.ID)
		delete(g.nodeRels[old.TargetID], rel.ID)
	}

	g.relationships[rel.ID] = rel

	if g.relsByType[rel.Type] == nil {
		g.relsByType[rel.Type] = make(map[string]struct{})
	}
	g.relsByType[rel.Type][rel.ID] = struct{}{}

	for _, nodeID := range []string{rel.SourceID, rel.TargetID} {
		if g.nodeRels[nodeID] == nil {
			g.nodeRels[nodeID] = make(map[string]struct{})
		}
		g.nodeRels[nodeID][rel.ID] = struct{}{}
	}
	return nil
}

// GetNode returns the node with the given ID, or nil if it does not exist.
func (g *KnowledgeGraph) GetNode(nodeID string) *GraphNode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[nodeID]
}

// NodeIDByName returns the ID of the node with the given name
// (case-insensitive exact match).
func (g *KnowledgeGraph) NodeIDByName(name string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.nodesByName[lowerName(name)]
	return id, ok
}

// Nodes returns all nodes in the graph.
func (g *KnowledgeGraph) Nodes() []*GraphNode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	result := make([]*GraphNode, 0, len(g.nodes))
	for _, node := range g.nodes {
		result = append(result, node)
	}
	return result
}

// Relationships returns all relationships in the graph.
func (g *KnowledgeGraph) Relationships() []*GraphRelationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	result := make([]*GraphRelationship, 0, len(g.relationships))
	for _, rel := range g.relationships {
		result = append(result, rel)
	}
	return result
}

// NodesByType returns all nodes with the given type.
func (g *KnowledgeGraph) NodesByType(typ NodeType) []*GraphNode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids, ok := g.nodesByType[typ]
	if !ok {
		return nil
	}
	result := make([]*GraphNode, 0, len(ids))
	for id := range ids {
		result = append(result, g.nodes[id])
	}
	return result
}

// RelationshipsByType returns all relationships with the given type.
func (g *KnowledgeGraph) RelationshipsByType(typ RelType) []*GraphRelationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids, ok := g.relsByType[typ]
	if !ok {
		return nil
	}
	result := make([]*GraphRelationship, 0, len(ids))
	for id := range ids {
		result = append(result, g.relationships[id])
	}
	return result
}

// NodeRelationships returns every relationship where the node is source or
// target.
func (g *KnowledgeGraph) NodeRelationships(nodeID string) []*GraphRelationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids, ok := g.nodeRels[nodeID]
	if !ok {
		return nil
	}
	result := make([]*GraphRelationship, 0, len(ids))
	for id := range ids {
		result = append(result, g.relationships[id])
	}
	return result
}

// FindNodesByName returns all nodes whose name contains the pattern
// (case-insensitive substring match).
func (g *KnowledgeGraph) FindNodesByName(pattern string) []*GraphNode {
	lower := lowerName(pattern)
	g.mu.RLock()
	defer g.mu.RUnlock()
	var result []*GraphNode
	for _, node := range g.nodes {
		if containsFold(node.Name, lower) {
			result = append(result, node)
		}
	}
	return result
}

// NodeCount returns the number of nodes without list materialization.
func (g *KnowledgeGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// RelationshipCount returns the number of relationships without list materialization.
func (g *KnowledgeGraph) RelationshipCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.relationships)
}

// Stats summarizes graph size with per-type breakdowns.
type Stats struct {
	NodeCount         int            `json:"nodeCount"`
	RelationshipCount int            `json:"relationshipCount"`
	NodeTypes         map[string]int `json:"nodeTypes"`
	RelationshipTypes map[string]int `json:"relationshipTypes"`
}

// Stats returns a summary of graph size.
func (g *KnowledgeGraph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{
		NodeCount:         len(g.nodes),
		RelationshipCount: len(g.relationships),
		NodeTypes:         make(map[string]int, len(g.nodesByType)),
		RelationshipTypes: make(map[string]int, len(g.relsByType)),
	}
	for typ, ids := range g.nodesByType {
		s.NodeTypes[string(typ)] = len(ids)
	}
	for typ, ids := range g.relsByType {
		s.RelationshipTypes[string(typ)] = len(ids)
	}
	return s
}
