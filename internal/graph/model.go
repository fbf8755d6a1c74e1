// Package graph provides the knowledge graph data model for Smartie.
//
// It defines the core node and relationship types that represent site-level
// entities (products, recipes, ingredients, etc.) and the edges between them
// (used_in, contains, made_by, etc.).
package graph

import "strings"

// NodeType represents the type of a graph node.
//
// The vocabulary is open: anything outside the predefined constants is valid
// and treated as a custom tag, preserving extensibility for scraped content
// that does not fit the known categories.
type NodeType string

const (
	NodeProduct    NodeType = "product"
	NodeRecipe     NodeType = "recipe"
	NodeIngredient NodeType = "ingredient"
	NodeCategory   NodeType = "category"
	NodeBrand      NodeType = "brand"
	NodePage       NodeType = "page"
	NodeCustom     NodeType = "custom"
)

// Known returns true if the type is one of the predefined constants.
func (t NodeType) Known() bool {
	switch t {
	case NodeProduct, NodeRecipe, NodeIngredient, NodeCategory, NodeBrand, NodePage, NodeCustom:
		return true
	default:
		return false
	}
}

// RelType represents the type of relationship between graph nodes.
// Conventionally upper-snake-case; the vocabulary is open.
type RelType string

const (
	RelUsedIn        RelType = "USED_IN"
	RelContains      RelType = "CONTAINS"
	RelBelongsTo     RelType = "BELONGS_TO"
	RelSimilarTo     RelType = "SIMILAR_TO"
	RelRelatedTo     RelType = "RELATED_TO"
	RelMadeBy        RelType = "MADE_BY"
	RelHasIngredient RelType = "HAS_INGREDIENT"
	RelPartOf        RelType = "PART_OF"
	RelReferences    RelType = "REFERENCES"
)

// GraphNode represents a node in the knowledge graph.
type GraphNode struct {
	// ID is the unique identifier for the node, generated on insert.
	ID string `json:"id"`

	// Type is the entity type of the node.
	Type NodeType `json:"type"`

	// Name is the display name. Names are not unique across the graph.
	Name string `json:"name"`

	// Properties holds additional metadata.
	Properties map[string]any `json:"properties"`

	// Embedding is the semantic embedding of the node's textual
	// serialization. Empty when embedding generation failed or was skipped.
	Embedding []float32 `json:"-"`
}

// GraphRelationship represents a directed edge in the knowledge graph.
type GraphRelationship struct {
	// ID is the unique identifier for the relationship, generated on insert.
	ID string `json:"id"`

	// Type is the relationship type.
	Type RelType `json:"type"`

	// SourceID is the ID of the source node.
	SourceID string `json:"sourceId"`

	// TargetID is the ID of the target node.
	TargetID string `json:"targetId"`

	// Properties holds additional metadata.
	Properties map[string]any `json:"properties"`

	// Weight is the relationship strength. Defaults to 1.0.
	Weight float64 `json:"weight"`
}

// Subgraph is a set of nodes and the relationships connecting them,
// as returned by traversal queries. Membership is the contract; ordering
// follows traversal order and is not guaranteed.
type Subgraph struct {
	Nodes         []*GraphNode         `json:"nodes"`
	Relationships []*GraphRelationship `json:"relationships"`
}

// Path is a single simple path between two nodes. Nodes has exactly one more
// element than Relationships; a zero-length path holds one node and no edges.
type Path struct {
	Nodes         []*GraphNode         `json:"nodes"`
	Relationships []*GraphRelationship `json:"relationships"`
}

// EntityRelation is a (source, relation, target) triple produced by the
// scraper for bulk import.
type EntityRelation struct {
	Source   string `json:"source"`
	Relation string `json:"relation"`
	Target   string `json:"target"`
}

// GuessNodeType classifies an entity name into a node type using the relation
// it appears in and name substrings. This is a best-effort heuristic, not
// ground truth; import marks nodes created through it as inferred.
func GuessNodeType(name string, relation RelType, isSource bool) NodeType {
	switch {
	case relation == RelMadeBy && !isSource:
		return NodeBrand
	case relation == RelContains && !isSource:
		return NodeIngredient
	case relation == RelBelongsTo && !isSource:
		return NodeCategory
	case relation == RelUsedIn && isSource:
		return NodeIngredient
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "recipe"), strings.Contains(lower, "cookie"),
		strings.Contains(lower, "cake"), strings.Contains(lower, "dish"):
		return NodeRecipe
	case strings.Contains(lower, "nestlé"), strings.Contains(lower, "nestle"):
		return NodeBrand
	}

	return NodePage
}
