// Package scraper crawls a site breadth-first and extracts structured pages
// for vector storage and graph import.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/madewith/smartie/internal/graph"
	"github.com/madewith/smartie/internal/vectorstore"
)

// DefaultMaxPages bounds a crawl when no explicit limit is configured.
const DefaultMaxPages = 100

const requestTimeout = 15 * time.Second

const userAgent = "SmartieBot/1.0 (+https://www.madewithnestle.ca)"

// Scraper is a same-host breadth-first crawler.
type Scraper struct {
	client   *http.Client
	maxPages int
	logger   *zap.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithMaxPages overrides the page limit per crawl.
func WithMaxPages(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// New creates a Scraper.
func New(logger *zap.Logger, opts ...Option) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scraper{
		client:   &http.Client{Timeout: requestTimeout},
		maxPages: DefaultMaxPages,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl fetches pages breadth-first starting from startURL, staying on the
// start host. Fetch or parse failures on individual pages are logged and
// skipped; the crawl continues until the queue empties or maxPages is hit.
func (s *Scraper) Crawl(ctx context.Context, startURL string) ([]*vectorstore.ScrapedPage, error) {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q", startURL)
	}

	visited := map[string]bool{startURL: true}
	queue := []string{startURL}
	var pages []*vectorstore.ScrapedPage

	for len(queue) > 0 && len(pages) < s.maxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		pageURL := queue[0]
		queue = queue[1:]

		page, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			s.logger.Warn("page fetch failed", zap.String("url", pageURL), zap.Error(err))
			continue
		}
		pages = append(pages, page)
		s.logger.Debug("page scraped",
			zap.String("url", pageURL),
			zap.Int("links", len(page.Links)),
			zap.Int("count", len(pages)))

		for _, link := range page.Links {
			u, err := url.Parse(link)
			if err != nil || u.Host != start.Host || visited[link] {
				continue
			}
			visited[link] = true
			queue = append(queue, link)
		}
	}

	s.logger.Info("crawl complete",
		zap.String("start", startURL),
		zap.Int("pages", len(pages)),
		zap.Int("visited", len(visited)))
	return pages, nil
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (*vectorstore.ScrapedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("not HTML (%s)", ct)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return ExtractPage(doc, pageURL), nil
}

// ExtractPage builds a ScrapedPage from a parsed document. Exported so page
// extraction can run on saved HTML without a live crawl.
func ExtractPage(doc *goquery.Document, pageURL string) *vectorstore.ScrapedPage {
	doc.Find("script, style, noscript").Remove()

	base, _ := url.Parse(pageURL)

	page := &vectorstore.ScrapedPage{
		URL:     pageURL,
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Content: collapseWhitespace(doc.Find("body").Text()),
	}

	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := resolveURL(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		page.Links = append(page.Links, abs)
	})

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if abs := resolveURL(base, src); abs != "" {
			page.Images = append(page.Images, abs)
		}
	})

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			page.Tables = append(page.Tables, cells)
		}
	})

	page.Metadata = extractMetadata(doc)
	page.EntityRelations = DeriveEntityRelations(page)
	return page
}

func extractMetadata(doc *goquery.Document) vectorstore.PageMetadata {
	meta := vectorstore.PageMetadata{
		Description:   metaContent(doc, "description"),
		DatePublished: metaContent(doc, "article:published_time"),
		Category:      metaContent(doc, "article:section"),
	}
	if meta.Description == "" {
		meta.Description = metaContent(doc, "og:description")
	}

	if kw := metaContent(doc, "keywords"); kw != "" {
		for _, tag := range strings.Split(kw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				meta.Tags = append(meta.Tags, tag)
			}
		}
	}

	if pi := extractProductInfo(doc); pi != nil {
		meta.ProductInfo = pi
	}
	if ri := extractRecipeInfo(doc); ri != nil {
		meta.RecipeInfo = ri
	}
	return meta
}

func extractProductInfo(doc *goquery.Document) *vectorstore.ProductInfo {
	name := strings.TrimSpace(doc.Find(".product-name, .product-title, [itemprop=name]").First().Text())
	brand := strings.TrimSpace(doc.Find(".product-brand, [itemprop=brand]").First().Text())

	var ingredients []string
	doc.Find(".ingredients li, .product-ingredients li, [itemprop=ingredients]").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			ingredients = append(ingredients, text)
		}
	})

	if name == "" && brand == "" && len(ingredients) == 0 {
		return nil
	}
	return &vectorstore.ProductInfo{Name: name, Brand: brand, Ingredients: ingredients}
}

func extractRecipeInfo(doc *goquery.Document) *vectorstore.RecipeInfo {
	info := &vectorstore.RecipeInfo{
		PrepTime: strings.TrimSpace(doc.Find("[itemprop=prepTime], .prep-time").First().Text()),
		CookTime: strings.TrimSpace(doc.Find("[itemprop=cookTime], .cook-time").First().Text()),
		Servings: strings.TrimSpace(doc.Find("[itemprop=recipeYield], .servings").First().Text()),
	}
	doc.Find("[itemprop=nutrition] [itemprop]").Each(func(_ int, sel *goquery.Selection) {
		prop, _ := sel.Attr("itemprop")
		if val := strings.TrimSpace(sel.Text()); prop != "" && val != "" {
			if info.Nutrients == nil {
				info.Nutrients = make(map[string]string)
			}
			info.Nutrients[prop] = val
		}
	})

	if info.PrepTime == "" && info.CookTime == "" && info.Servings == "" && len(info.Nutrients) == 0 {
		return nil
	}
	return info
}

// DeriveEntityRelations turns the page's extracted metadata into triples for
// graph import: product MADE_BY brand, product CONTAINS ingredient, and
// product or title BELONGS_TO category.
func DeriveEntityRelations(page *vectorstore.ScrapedPage) []graph.EntityRelation {
	var relations []graph.EntityRelation

	subject := page.Title
	if page.Metadata.ProductInfo != nil && page.Metadata.ProductInfo.Name != "" {
		subject = page.Metadata.ProductInfo.Name
	}
	if subject == "" {
		return nil
	}

	if pi := page.Metadata.ProductInfo; pi != nil {
		if pi.Brand != "" {
			relations = append(relations, graph.EntityRelation{
				Source:   subject,
				Relation: string(graph.RelMadeBy),
				Target:   pi.Brand,
			})
		}
		for _, ing := range pi.Ingredients {
			relations = append(relations, graph.EntityRelation{
				Source:   subject,
				Relation: string(graph.RelContains),
				Target:   ing,
			})
		}
	}

	if page.Metadata.Category != "" {
		relations = append(relations, graph.EntityRelation{
			Source:   subject,
			Relation: string(graph.RelBelongsTo),
			Target:   page.Metadata.Category,
		})
	}
	return relations
}

func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(fmt.Sprintf(`meta[name=%q], meta[property=%q]`, name, name)).First()
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}

func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "javascript:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
