package vectorstore

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madewith/smartie/internal/embeddings"
)

func testPage(url, title, content string) *ScrapedPage {
	return &ScrapedPage{URL: url, Title: title, Content: content}
}

func TestStore_Add(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("AddsPages", func(t *testing.T) {
		t.Parallel()
		s := New(embeddings.NewFallback(64), nil)

		added := s.Add(ctx, []*ScrapedPage{
			testPage("https://example.com/a", "A", "alpha content"),
			testPage("https://example.com/b", "B", "beta content"),
		})

		assert.Equal(t, 2, added)
		assert.Equal(t, 2, s.Count())
	})

	t.Run("NilEmbedderStoresWithoutVectors", func(t *testing.T) {
		t.Parallel()
		s := New(nil, nil)

		added := s.Add(ctx, []*ScrapedPage{testPage("https://example.com/a", "A", "alpha")})

		assert.Equal(t, 1, added)
		assert.Empty(t, s.Documents()[0].Vector)
	})
}

func TestStore_Upsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("SameURLOverwrites", func(t *testing.T) {
		t.Parallel()
		s := New(embeddings.NewFallback(64), nil)

		s.Add(ctx, []*ScrapedPage{testPage("https://example.com/a", "Old Title", "old")})
		s.Add(ctx, []*ScrapedPage{testPage("https://example.com/a", "New Title", "new")})

		require.Equal(t, 1, s.Count())
		assert.Equal(t, "New Title", s.Documents()[0].Title)
	})

	t.Run("IdempotentCount", func(t *testing.T) {
		t.Parallel()
		s := New(embeddings.NewFallback(64), nil)
		page := testPage("https://example.com/a", "A", "alpha")

		s.Add(ctx, []*ScrapedPage{page})
		s.Add(ctx, []*ScrapedPage{page})
		s.Add(ctx, []*ScrapedPage{page})

		assert.Equal(t, 1, s.Count())
	})
}

func TestStore_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ExactContentRanksFirst", func(t *testing.T) {
		t.Parallel()
		s := New(embeddings.NewFallback(64), nil)

		pageA := testPage("https://example.com/a", "KitKat", "wafer bar")
		s.Add(ctx, []*ScrapedPage{
			pageA,
			testPage("https://example.com/b", "Aero", "bubbly chocolate"),
		})

		// Querying with the exact embedded serialization of page A makes
		// its fallback vector identical to the query vector.
		query := "Title: KitKat\nDescription: \nCategory: \nContent: wafer bar"
		results := s.Search(ctx, query, 2)

		require.Len(t, results, 2)
		assert.Equal(t, "https://example.com/a", results[0].URL)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("EmptyStore", func(t *testing.T) {
		t.Parallel()
		s := New(embeddings.NewFallback(64), nil)

		assert.Empty(t, s.Search(ctx, "anything", 5))
	})

	t.Run("NilEmbedder", func(t *testing.T) {
		t.Parallel()
		s := New(nil, nil)
		s.Add(ctx, []*ScrapedPage{testPage("https://example.com/a", "A", "alpha")})

		assert.Empty(t, s.Search(ctx, "alpha", 5))
	})

	t.Run("PreviewTruncation", func(t *testing.T) {
		t.Parallel()
		s := New(embeddings.NewFallback(64), nil)
		long := strings.Repeat("x", previewLength+500)
		s.Add(ctx, []*ScrapedPage{testPage("https://example.com/a", "A", long)})

		results := s.Search(ctx, "x", 1)

		require.Len(t, results, 1)
		assert.Len(t, results[0].Content, previewLength+3)
		assert.True(t, strings.HasSuffix(results[0].Content, "..."))
	})

	t.Run("PreviewKeepsMultiByteRunesIntact", func(t *testing.T) {
		t.Parallel()
		s := New(embeddings.NewFallback(64), nil)
		long := strings.Repeat("é", previewLength+500)
		s.Add(ctx, []*ScrapedPage{testPage("https://example.com/a", "A", long)})

		results := s.Search(ctx, "chocolat", 1)

		require.Len(t, results, 1)
		assert.True(t, utf8.ValidString(results[0].Content))
		assert.Equal(t, strings.Repeat("é", previewLength)+"...", results[0].Content)
	})
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))
	assert.Equal(t, "éé", truncateRunes("ééé", 2))
	assert.True(t, utf8.ValidString(truncateRunes(strings.Repeat("é", 100), 99)))
	assert.Equal(t, "", truncateRunes("abc", 0))
}

func TestStore_FilteredSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newCatalog := func(t *testing.T) *Store {
		t.Helper()
		s := New(embeddings.NewFallback(64), nil)
		s.Add(ctx, []*ScrapedPage{
			{
				URL: "https://example.com/kitkat", Title: "KitKat", Content: "wafer",
				Metadata: PageMetadata{
					Category: "Chocolate",
					Tags:     []string{"candy", "wafer"},
					ProductInfo: &ProductInfo{
						Name: "KitKat 4-Finger", Brand: "Nestlé",
					},
				},
			},
			{
				URL: "https://example.com/cookies", Title: "Cookie Recipe", Content: "bake",
				Metadata: PageMetadata{
					Category:   "Baking",
					Tags:       []string{"dessert"},
					RecipeInfo: &RecipeInfo{PrepTime: "15m"},
				},
			},
			{
				URL: "https://example.com/about", Title: "About Us", Content: "our story",
			},
		})
		return s
	}

	t.Run("ByCategory", func(t *testing.T) {
		t.Parallel()
		s := newCatalog(t)

		results := s.FilteredSearch(Filters{Category: "Chocolate"})

		require.Len(t, results, 1)
		assert.Equal(t, "KitKat", results[0].Title)
	})

	t.Run("ByPageType", func(t *testing.T) {
		t.Parallel()
		s := newCatalog(t)

		results := s.FilteredSearch(Filters{PageType: PageTypeRecipe})

		require.Len(t, results, 1)
		assert.Equal(t, "Cookie Recipe", results[0].Title)
	})

	t.Run("ProductNameSubstring", func(t *testing.T) {
		t.Parallel()
		s := newCatalog(t)

		results := s.FilteredSearch(Filters{ProductName: "kitkat"})

		require.Len(t, results, 1)
		assert.Equal(t, "https://example.com/kitkat", results[0].URL)
	})

	t.Run("BrandSubstring", func(t *testing.T) {
		t.Parallel()
		s := newCatalog(t)

		assert.Len(t, s.FilteredSearch(Filters{Brand: "nestlé"}), 1)
	})

	t.Run("AnyTagMatches", func(t *testing.T) {
		t.Parallel()
		s := newCatalog(t)

		results := s.FilteredSearch(Filters{Tags: []string{"dessert", "unknown"}})

		require.Len(t, results, 1)
		assert.Equal(t, "Cookie Recipe", results[0].Title)
	})

	t.Run("FiltersAreConjunctive", func(t *testing.T) {
		t.Parallel()
		s := newCatalog(t)

		assert.Empty(t, s.FilteredSearch(Filters{Category: "Chocolate", PageType: PageTypeRecipe}))
	})

	t.Run("NoMatch", func(t *testing.T) {
		t.Parallel()
		s := newCatalog(t)

		assert.Empty(t, s.FilteredSearch(Filters{ProductName: "smarties"}))
	})
}

func TestClassifyPageType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page *ScrapedPage
		want string
	}{
		{
			"ProductInfoWins",
			&ScrapedPage{
				Title:    "About KitKat",
				Metadata: PageMetadata{ProductInfo: &ProductInfo{Name: "KitKat"}, Category: "Chocolate"},
			},
			PageTypeProduct,
		},
		{
			"RecipeBeforeAbout",
			&ScrapedPage{
				Title:    "About this recipe",
				Metadata: PageMetadata{RecipeInfo: &RecipeInfo{PrepTime: "10m"}},
			},
			PageTypeRecipe,
		},
		{"AboutByTitle", &ScrapedPage{Title: "About Us"}, PageTypeAbout},
		{"ContactByContent", &ScrapedPage{Content: "Please contact us today"}, PageTypeContact},
		{"CategoryByURL", &ScrapedPage{URL: "https://example.com/category/baking"}, PageTypeCategory},
		{"CategoryByMetadata", &ScrapedPage{Metadata: PageMetadata{Category: "Baking"}}, PageTypeCategory},
		{"GeneralDefault", &ScrapedPage{Title: "Welcome"}, PageTypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyPageType(tt.page))
		})
	}
}

func TestDocumentID(t *testing.T) {
	t.Parallel()

	id := DocumentID("https://example.com/page?a=1")

	assert.NotEmpty(t, id)
	assert.NotContains(t, id, "+")
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, "=")
	assert.Equal(t, id, DocumentID("https://example.com/page?a=1"))
	assert.NotEqual(t, id, DocumentID("https://example.com/other"))
}
