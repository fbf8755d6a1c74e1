package graph

import (
	"fmt"
	"sort"
	"strings"
)

// EmbeddingText generates the textual serialization of a node used for
// semantic embeddings. Properties are emitted in sorted key order so the same
// node always serializes identically.
func EmbeddingText(node *GraphNode) string {
	if node == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Type: %s\nName: %s", node.Type, node.Name)

	keys := make([]string, 0, len(node.Properties))
	for k := range node.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %v", k, node.Properties[k])
	}

	return b.String()
}

func lowerName(name string) string {
	return strings.ToLower(name)
}

func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}
