package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/madewith/smartie/internal/graph"
	"github.com/madewith/smartie/internal/vectorstore"
)

// Key prefixes for different data types.
const (
	prefixDoc  = "d:" // vector documents, keyed by URL
	prefixNode = "n:" // graph nodes, keyed by node ID
	prefixRel  = "r:" // graph relationships, keyed by relationship ID
)

// BadgerBackend is a BadgerDB-backed snapshot implementation.
type BadgerBackend struct {
	mu          sync.RWMutex
	db          *badger.DB
	initialized bool
}

// NewBadgerBackend creates a new BadgerDB backend.
func NewBadgerBackend() *BadgerBackend {
	return &BadgerBackend{}
}

// Initialize opens or creates the BadgerDB database at the given path.
func (b *BadgerBackend) Initialize(path string, readOnly bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithLoggingLevel(badger.ERROR) // Suppress INFO/WARNING logs

	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	var err error
	b.db, err = badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger DB: %w", err)
	}
	b.initialized = true
	return nil
}

// Close closes the database.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.initialized = false
	return err
}

// SaveDocuments persists vector documents keyed by URL.
func (b *BadgerBackend) SaveDocuments(ctx context.Context, docs []*vectorstore.Document) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return fmt.Errorf("backend not initialized")
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := docRecord{Document: *doc, Vector: doc.Vector}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling document %s: %w", doc.URL, err)
		}
		if err := wb.Set([]byte(prefixDoc+doc.URL), data); err != nil {
			return fmt.Errorf("writing document %s: %w", doc.URL, err)
		}
	}
	return wb.Flush()
}

// LoadDocuments returns all persisted vector documents.
func (b *BadgerBackend) LoadDocuments(ctx context.Context) ([]*vectorstore.Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	var docs []*vectorstore.Document
	err := b.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefixDoc, func(val []byte) error {
			var rec docRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			doc := rec.Document
			doc.Vector = rec.Vector
			docs = append(docs, &doc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	return docs, nil
}

// SaveGraph persists every node and relationship of the graph.
func (b *BadgerBackend) SaveGraph(ctx context.Context, g *graph.KnowledgeGraph) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return fmt.Errorf("backend not initialized")
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, node := range g.Nodes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := nodeRecord{GraphNode: *node, Embedding: node.Embedding}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling node %s: %w", node.ID, err)
		}
		if err := wb.Set([]byte(prefixNode+node.ID), data); err != nil {
			return fmt.Errorf("writing node %s: %w", node.ID, err)
		}
	}
	for _, rel := range g.Relationships() {
		data, err := json.Marshal(rel)
		if err != nil {
			return fmt.Errorf("marshaling relationship %s: %w", rel.ID, err)
		}
		if err := wb.Set([]byte(prefixRel+rel.ID), data); err != nil {
			return fmt.Errorf("writing relationship %s: %w", rel.ID, err)
		}
	}
	return wb.Flush()
}

// LoadGraph replays persisted nodes, then relationships, into the graph.
// Relationships referencing missing nodes are skipped silently: a snapshot is
// best effort and partial state is tolerated by design.
func (b *BadgerBackend) LoadGraph(ctx context.Context, g *graph.KnowledgeGraph) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return fmt.Errorf("backend not initialized")
	}

	err := b.db.View(func(txn *badger.Txn) error {
		if err := iteratePrefix(txn, prefixNode, func(val []byte) error {
			var rec nodeRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			node := rec.GraphNode
			node.Embedding = rec.Embedding
			g.PutNode(&node)
			return nil
		}); err != nil {
			return err
		}
		return iteratePrefix(txn, prefixRel, func(val []byte) error {
			var rel graph.GraphRelationship
			if err := json.Unmarshal(val, &rel); err != nil {
				return err
			}
			_ = g.PutRelationship(&rel)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("loading graph: %w", err)
	}
	return nil
}

// iteratePrefix walks all values under a key prefix.
func iteratePrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if !strings.HasPrefix(string(it.Item().Key()), prefix) {
			break
		}
		if err := it.Item().Value(func(val []byte) error {
			return fn(val)
		}); err != nil {
			return err
		}
	}
	return nil
}
