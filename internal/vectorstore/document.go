// Package vectorstore provides the in-memory vector document store for
// Smartie.
//
// It holds embedded page documents keyed by URL and supports brute-force
// similarity search (normalized dot product) plus metadata-filtered search.
package vectorstore

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/madewith/smartie/internal/graph"
)

// ProductInfo holds product details extracted from a scraped page.
type ProductInfo struct {
	Name        string   `json:"name,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// RecipeInfo holds recipe details extracted from a scraped page.
type RecipeInfo struct {
	PrepTime   string            `json:"prepTime,omitempty"`
	CookTime   string            `json:"cookTime,omitempty"`
	Servings   string            `json:"servings,omitempty"`
	Difficulty string            `json:"difficulty,omitempty"`
	Nutrients  map[string]string `json:"nutrients,omitempty"`
}

// Metadata is the searchable metadata attached to a stored document.
type Metadata struct {
	Category    string       `json:"category,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	PageType    string       `json:"pageType"`
	LastUpdated time.Time    `json:"lastUpdated"`
	ImageCount  int          `json:"imageCount"`
	ProductInfo *ProductInfo `json:"productInfo,omitempty"`
	RecipeInfo  *RecipeInfo  `json:"recipeInfo,omitempty"`
}

// Document is a stored, embedded page. ID derives deterministically from the
// URL, which is the dedup key for upserts.
type Document struct {
	ID       string    `json:"id"`
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Vector   []float32 `json:"-"`
	Metadata Metadata  `json:"metadata"`
}

// PageMetadata is the metadata block of a scraped page before storage.
type PageMetadata struct {
	Category      string       `json:"category,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	DatePublished string       `json:"datePublished,omitempty"`
	Description   string       `json:"description,omitempty"`
	ProductInfo   *ProductInfo `json:"productInfo,omitempty"`
	RecipeInfo    *RecipeInfo  `json:"recipeInfo,omitempty"`
}

// ScrapedPage is the unit of scraper output consumed by the store and the
// graph import.
type ScrapedPage struct {
	URL             string                 `json:"url"`
	Title           string                 `json:"title"`
	Content         string                 `json:"content"`
	Links           []string               `json:"links,omitempty"`
	Images          []string               `json:"images,omitempty"`
	Tables          [][]string             `json:"tables,omitempty"`
	Metadata        PageMetadata           `json:"metadata"`
	EntityRelations []graph.EntityRelation `json:"entityRelations,omitempty"`
}

// Page type tags assigned by ClassifyPageType.
const (
	PageTypeProduct  = "product"
	PageTypeRecipe   = "recipe"
	PageTypeAbout    = "about"
	PageTypeContact  = "contact"
	PageTypeCategory = "category"
	PageTypeGeneral  = "general"
)

// ClassifyPageType derives a page type tag from content and metadata.
// Rules are checked in precedence order and the first match wins.
func ClassifyPageType(page *ScrapedPage) string {
	title := strings.ToLower(page.Title)
	content := strings.ToLower(page.Content)

	switch {
	case page.Metadata.ProductInfo != nil && page.Metadata.ProductInfo.Name != "":
		return PageTypeProduct
	case page.Metadata.RecipeInfo != nil:
		return PageTypeRecipe
	case strings.Contains(title, "about"),
		strings.Contains(content, "about us"),
		strings.Contains(content, "our story"):
		return PageTypeAbout
	case strings.Contains(title, "contact"),
		strings.Contains(content, "contact us"):
		return PageTypeContact
	case strings.Contains(page.URL, "/category/"),
		strings.Contains(page.URL, "/categories/"),
		page.Metadata.Category != "":
		return PageTypeCategory
	default:
		return PageTypeGeneral
	}
}

// DocumentID derives the stable document ID for a URL.
func DocumentID(url string) string {
	id := base64.StdEncoding.EncodeToString([]byte(url))
	return strings.NewReplacer("+", "", "/", "", "=", "").Replace(id)
}
