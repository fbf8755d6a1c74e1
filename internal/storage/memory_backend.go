package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/madewith/smartie/internal/graph"
	"github.com/madewith/smartie/internal/vectorstore"
)

// MemoryBackend is an in-memory implementation of Backend for testing and for
// running without a snapshot directory.
type MemoryBackend struct {
	mu          sync.RWMutex
	docs        map[string]*vectorstore.Document
	nodes       map[string]*graph.GraphNode
	rels        map[string]*graph.GraphRelationship
	initialized bool
}

// NewMemoryBackend creates a new in-memory snapshot backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		docs:  make(map[string]*vectorstore.Document),
		nodes: make(map[string]*graph.GraphNode),
		rels:  make(map[string]*graph.GraphRelationship),
	}
}

// Initialize implements Backend.
func (m *MemoryBackend) Initialize(path string, readOnly bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = false
	return nil
}

// SaveDocuments implements Backend.
func (m *MemoryBackend) SaveDocuments(ctx context.Context, docs []*vectorstore.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return fmt.Errorf("backend not initialized")
	}
	for _, doc := range docs {
		m.docs[doc.URL] = doc
	}
	return nil
}

// LoadDocuments implements Backend.
func (m *MemoryBackend) LoadDocuments(ctx context.Context) ([]*vectorstore.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}
	docs := make([]*vectorstore.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

// SaveGraph implements Backend.
func (m *MemoryBackend) SaveGraph(ctx context.Context, g *graph.KnowledgeGraph) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return fmt.Errorf("backend not initialized")
	}
	for _, node := range g.Nodes() {
		m.nodes[node.ID] = node
	}
	for _, rel := range g.Relationships() {
		m.rels[rel.ID] = rel
	}
	return nil
}

// LoadGraph implements Backend.
func (m *MemoryBackend) LoadGraph(ctx context.Context, g *graph.KnowledgeGraph) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized {
		return fmt.Errorf("backend not initialized")
	}
	for _, node := range m.nodes {
		g.PutNode(node)
	}
	for _, rel := range m.rels {
		_ = g.PutRelationship(rel)
	}
	return nil
}

// DocumentCount returns the number of persisted documents.
func (m *MemoryBackend) DocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
