// Package fusion extracts query-relevant knowledge subgraphs and renders them
// as prompt context blocks.
package fusion

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/madewith/smartie/internal/graph"
)

const (
	// seedLimit is how many semantic matches anchor the extraction.
	seedLimit = 3
	// fanOutDepth is how far each anchor expands into its neighborhood.
	fanOutDepth = 2
)

// Knowledge is the graph context extracted for a query. Central is the best
// semantic match, nil when the graph produced nothing relevant.
type Knowledge struct {
	Subgraph *graph.Subgraph
	Central  *graph.GraphNode
}

// Empty reports whether extraction found no relevant nodes.
func (k *Knowledge) Empty() bool {
	return k == nil || k.Subgraph == nil || len(k.Subgraph.Nodes) == 0
}

// Extractor pulls query-relevant subgraphs out of a knowledge graph.
type Extractor struct {
	graph  *graph.KnowledgeGraph
	logger *zap.Logger
}

// NewExtractor creates an Extractor over the given graph.
func NewExtractor(g *graph.KnowledgeGraph, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{graph: g, logger: logger}
}

// Extract finds the top semantic matches for the query, expands each into its
// depth-bounded neighborhood, and returns the deduplicated union. An empty
// graph or a query with no matches yields an empty Knowledge, never an error.
func (e *Extractor) Extract(ctx context.Context, query string) *Knowledge {
	anchors := e.graph.SemanticSearch(ctx, query, seedLimit)
	if len(anchors) == 0 {
		return &Knowledge{Subgraph: &graph.Subgraph{
			Nodes:         []*graph.GraphNode{},
			Relationships: []*graph.GraphRelationship{},
		}}
	}

	merged := &graph.Subgraph{
		Nodes:         []*graph.GraphNode{},
		Relationships: []*graph.GraphRelationship{},
	}
	seenNodes := map[string]struct{}{}
	seenRels := map[string]struct{}{}

	for _, anchor := range anchors {
		sub := e.graph.Query(anchor.ID, fanOutDepth)
		for _, node := range sub.Nodes {
			if _, ok := seenNodes[node.ID]; ok {
				continue
			}
			seenNodes[node.ID] = struct{}{}
			merged.Nodes = append(merged.Nodes, node)
		}
		for _, rel := range sub.Relationships {
			if _, ok := seenRels[rel.ID]; ok {
				continue
			}
			seenRels[rel.ID] = struct{}{}
			merged.Relationships = append(merged.Relationships, rel)
		}
	}

	e.logger.Debug("knowledge extracted",
		zap.String("query", query),
		zap.String("central", anchors[0].Name),
		zap.Int("nodes", len(merged.Nodes)),
		zap.Int("relationships", len(merged.Relationships)))

	return &Knowledge{Subgraph: merged, Central: anchors[0]}
}

// FormatContext renders the knowledge as a plain-text block for inclusion in
// a generator prompt. Nodes and relationships are sorted by name and endpoint
// so the same knowledge always renders the same text.
func FormatContext(k *Knowledge) string {
	if k.Empty() {
		return ""
	}

	byID := make(map[string]*graph.GraphNode, len(k.Subgraph.Nodes))
	nodes := make([]*graph.GraphNode, len(k.Subgraph.Nodes))
	copy(nodes, k.Subgraph.Nodes)
	for _, node := range nodes {
		byID[node.ID] = node
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	var b strings.Builder
	b.WriteString("KNOWLEDGE GRAPH CONTEXT:\n\nNODES:\n")
	for _, node := range nodes {
		fmt.Fprintf(&b, "- %s (%s)\n", node.Name, node.Type)
	}

	if len(k.Subgraph.Relationships) > 0 {
		lines := make([]string, 0, len(k.Subgraph.Relationships))
		for _, rel := range k.Subgraph.Relationships {
			src, dst := byID[rel.SourceID], byID[rel.TargetID]
			if src == nil || dst == nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s -[%s]-> %s", src.Name, rel.Type, dst.Name))
		}
		sort.Strings(lines)
		b.WriteString("\nRELATIONSHIPS:\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	if k.Central != nil {
		fmt.Fprintf(&b, "\nCENTRAL CONCEPT: %s (%s)\n", k.Central.Name, k.Central.Type)
	}
	return b.String()
}
