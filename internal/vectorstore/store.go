package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/madewith/smartie/internal/graph"
	"go.uber.org/zap"
)

// previewLength bounds the content returned by searches so downstream prompt
// size stays capped.
const previewLength = 1000

// maxEmbedContent bounds page content included in the embedding input.
const maxEmbedContent = 8000

// Embedder produces vector embeddings for document and query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is a search hit with content truncated to the preview length.
type Result struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Filters selects documents by metadata. All provided fields must match
// (AND semantics); ProductName and Brand use case-insensitive substring
// matching, Tags matches when the document carries any of the given tags.
type Filters struct {
	Category    string   `json:"category,omitempty"`
	PageType    string   `json:"pageType,omitempty"`
	ProductName string   `json:"productName,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Store is an in-memory vector document store. Documents are keyed by URL;
// upserting an existing URL overwrites the stored document in place.
type Store struct {
	mu       sync.RWMutex
	docs     []*Document
	byURL    map[string]int
	embedder Embedder
	logger   *zap.Logger
}

// New creates an empty store. The embedder may be nil, in which case
// documents are stored without vectors and Search returns nothing.
func New(embedder Embedder, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		byURL:    make(map[string]int),
		embedder: embedder,
		logger:   logger,
	}
}

// Add embeds and upserts the scraped pages. Per-page failures are logged and
// skipped; the rest of the batch proceeds.
func (s *Store) Add(ctx context.Context, pages []*ScrapedPage) int {
	added := 0
	for _, page := range pages {
		doc, err := s.buildDocument(ctx, page)
		if err != nil {
			s.logger.Warn("skipping page", zap.String("url", page.URL), zap.Error(err))
			continue
		}
		s.Upsert(doc)
		added++
	}
	s.logger.Info("vector store updated", zap.Int("added", added), zap.Int("total", s.Count()))
	return added
}

func (s *Store) buildDocument(ctx context.Context, page *ScrapedPage) (*Document, error) {
	content := truncateRunes(page.Content, maxEmbedContent)
	embedText := fmt.Sprintf("Title: %s\nDescription: %s\nCategory: %s\nContent: %s",
		page.Title, page.Metadata.Description, page.Metadata.Category, content)

	var vector []float32
	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, embedText)
		if err != nil {
			return nil, fmt.Errorf("embedding page: %w", err)
		}
		vector = vec
	}

	return &Document{
		ID:      DocumentID(page.URL),
		URL:     page.URL,
		Title:   page.Title,
		Content: page.Content,
		Vector:  vector,
		Metadata: Metadata{
			Category:    page.Metadata.Category,
			Tags:        page.Metadata.Tags,
			PageType:    ClassifyPageType(page),
			LastUpdated: time.Now().UTC(),
			ImageCount:  len(page.Images),
			ProductInfo: page.Metadata.ProductInfo,
			RecipeInfo:  page.Metadata.RecipeInfo,
		},
	}, nil
}

// Upsert stores the document, replacing any existing document with the same
// URL (full overwrite, not merge).
func (s *Store) Upsert(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.byURL[doc.URL]; ok {
		s.docs[idx] = doc
		return
	}
	s.byURL[doc.URL] = len(s.docs)
	s.docs = append(s.docs, doc)
}

// Search embeds the query and returns the top-k documents by normalized dot
// product, contents truncated to the preview length. An empty store or a
// missing embedder yields no results, never an error.
func (s *Store) Search(ctx context.Context, query string, k int) []Result {
	if k <= 0 {
		k = 5
	}
	if s.embedder == nil || s.Count() == 0 {
		return nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	s.mu.RLock()
	type scored struct {
		doc   *Document
		score float64
	}
	scores := make([]scored, 0, len(s.docs))
	for _, doc := range s.docs {
		scores = append(scores, scored{doc: doc, score: graph.DotProduct(queryVec, doc.Vector)})
	}
	s.mu.RUnlock()

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].doc.URL < scores[j].doc.URL
	})
	if k > len(scores) {
		k = len(scores)
	}

	results := make([]Result, k)
	for i := 0; i < k; i++ {
		results[i] = Result{
			URL:     scores[i].doc.URL,
			Title:   scores[i].doc.Title,
			Content: preview(scores[i].doc.Content),
			Score:   scores[i].score,
		}
	}
	return results
}

// FilteredSearch returns every document matching the filters, unranked.
func (s *Store) FilteredSearch(filters Filters) []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Result
	for _, doc := range s.docs {
		if !matches(doc, filters) {
			continue
		}
		results = append(results, Result{
			URL:     doc.URL,
			Title:   doc.Title,
			Content: preview(doc.Content),
		})
	}
	return results
}

func matches(doc *Document, f Filters) bool {
	if f.Category != "" && doc.Metadata.Category != f.Category {
		return false
	}
	if f.PageType != "" && doc.Metadata.PageType != f.PageType {
		return false
	}
	if f.ProductName != "" {
		if doc.Metadata.ProductInfo == nil ||
			!strings.Contains(strings.ToLower(doc.Metadata.ProductInfo.Name), strings.ToLower(f.ProductName)) {
			return false
		}
	}
	if f.Brand != "" {
		if doc.Metadata.ProductInfo == nil ||
			!strings.Contains(strings.ToLower(doc.Metadata.ProductInfo.Brand), strings.ToLower(f.Brand)) {
			return false
		}
	}
	if len(f.Tags) > 0 && !anyTagMatch(doc.Metadata.Tags, f.Tags) {
		return false
	}
	return true
}

func anyTagMatch(docTags, want []string) bool {
	for _, dt := range docTags {
		for _, wt := range want {
			if dt == wt {
				return true
			}
		}
	}
	return false
}

// Documents returns a snapshot of all stored documents, for persistence.
func (s *Store) Documents() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Count returns the number of stored documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func preview(content string) string {
	truncated := truncateRunes(content, previewLength)
	if truncated == content {
		return content
	}
	return truncated + "..."
}

// truncateRunes caps s at limit runes without splitting a UTF-8 sequence.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
