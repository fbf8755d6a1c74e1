// Package storage provides best-effort persistence for Smartie.
//
// It defines the Backend protocol that snapshot implementations satisfy. The
// reference deployment is memory-only; backends exist so scraped state can
// survive a restart. Snapshots are convenience, not a durability guarantee:
// load failures are expected to be logged and ignored by callers.
package storage

import (
	"context"

	"github.com/madewith/smartie/internal/graph"
	"github.com/madewith/smartie/internal/vectorstore"
)

// Backend defines the interface for snapshot storage implementations.
//
// Implementations must be safe for concurrent use.
type Backend interface {
	// Initialize opens or creates the backend at the given path.
	// If readOnly is true, the backend is opened in read-only mode.
	Initialize(path string, readOnly bool) error

	// Close releases all resources held by the backend.
	Close() error

	// SaveDocuments persists vector documents, keyed by URL.
	SaveDocuments(ctx context.Context, docs []*vectorstore.Document) error

	// LoadDocuments returns all persisted vector documents.
	LoadDocuments(ctx context.Context) ([]*vectorstore.Document, error)

	// SaveGraph persists every node and relationship of the graph.
	SaveGraph(ctx context.Context, g *graph.KnowledgeGraph) error

	// LoadGraph replays persisted nodes and relationships into the graph.
	// Relationships whose endpoints are missing are skipped.
	LoadGraph(ctx context.Context, g *graph.KnowledgeGraph) error
}

// docRecord wraps a Document so its vector, excluded from API JSON, is still
// persisted.
type docRecord struct {
	vectorstore.Document
	Vector []float32 `json:"vector,omitempty"`
}

// nodeRecord wraps a GraphNode likewise.
type nodeRecord struct {
	graph.GraphNode
	Embedding []float32 `json:"embedding,omitempty"`
}
