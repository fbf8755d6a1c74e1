// Package assistant orchestrates a chat turn: retrieve vector and graph
// context, classify intent, assemble the prompt, and generate the reply.
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/madewith/smartie/internal/fusion"
	"github.com/madewith/smartie/internal/generator"
	"github.com/madewith/smartie/internal/nutrition"
	"github.com/madewith/smartie/internal/vectorstore"
)

const systemPrompt = `You are Smartie, the personal MadeWithNestlé assistant.
Answer questions about Nestlé products, recipes, and nutrition using the
provided context. Be friendly, concise, and accurate. When the context does
not cover the question, say so rather than inventing details. Do not use
numbered citation markers in your response.`

const fallbackReply = "I'm sorry, I'm having trouble answering that right now. Please try again in a moment."

// vectorResultLimit is how many vector hits feed the prompt and references.
const vectorResultLimit = 3

var citationMarker = regexp.MustCompile(`\s*\[\d+\]`)

// Response is one completed chat turn.
type Response struct {
	Text       string   `json:"text"`
	References []string `json:"references,omitempty"`
}

// Assistant wires the retrieval components to the generator.
type Assistant struct {
	store     *vectorstore.Store
	extractor *fusion.Extractor
	gen       generator.Adapter
	logger    *zap.Logger
}

// New creates an Assistant.
func New(store *vectorstore.Store, extractor *fusion.Extractor, gen generator.Adapter, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{store: store, extractor: extractor, gen: gen, logger: logger}
}

// ProcessMessage runs the full retrieval-augmented chat turn. Retrieval and
// classification failures degrade to smaller prompts; only generation failure
// produces the apologetic fallback, never an error to the caller.
func (a *Assistant) ProcessMessage(ctx context.Context, message string) *Response {
	hits := a.store.Search(ctx, message, vectorResultLimit)
	knowledge := a.extractor.Extract(ctx, message)

	intent, err := a.gen.ClassifyIntent(ctx, message)
	if err != nil {
		a.logger.Warn("intent classification failed", zap.Error(err))
		intent = generator.Intent{}
	}

	prompt := a.buildPrompt(message, hits, knowledge, intent)

	text, err := a.gen.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		a.logger.Error("generation failed", zap.Error(err))
		return &Response{Text: fallbackReply}
	}
	text = cleanResponseText(text)

	return &Response{
		Text:       text,
		References: extractReferences(text, hits),
	}
}

func (a *Assistant) buildPrompt(message string, hits []vectorstore.Result, knowledge *fusion.Knowledge, intent generator.Intent) string {
	var b strings.Builder

	if len(hits) > 0 {
		b.WriteString("RELEVANT PAGES:\n")
		for _, hit := range hits {
			fmt.Fprintf(&b, "\nTitle: %s\nURL: %s\nContent: %s\n", hit.Title, hit.URL, hit.Content)
		}
		b.WriteString("\n")
	}

	if graphContext := fusion.FormatContext(knowledge); graphContext != "" {
		b.WriteString(graphContext)
		b.WriteString("\n")
	}

	if block := a.specializedContext(intent); block != "" {
		b.WriteString(block)
		b.WriteString("\n")
	}

	if intent.EntityType == "product" && intent.EntityName != "" {
		if infos := nutrition.Lookup(intent.EntityName); infos != nil {
			b.WriteString(nutrition.FormatContext(intent.EntityName, infos))
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "USER QUESTION: %s", message)
	return b.String()
}

// specializedContext adds a filtered document listing when the classifier
// identified a concrete entity.
func (a *Assistant) specializedContext(intent generator.Intent) string {
	if intent.EntityName == "" {
		return ""
	}

	var results []vectorstore.Result
	var label string
	switch intent.EntityType {
	case "product":
		results = a.store.FilteredSearch(vectorstore.Filters{ProductName: intent.EntityName})
		label = "PRODUCT"
	case "brand":
		results = a.store.FilteredSearch(vectorstore.Filters{Brand: intent.EntityName})
		label = "BRAND"
	case "category":
		results = a.store.FilteredSearch(vectorstore.Filters{Category: intent.EntityName})
		label = "CATEGORY"
	case "recipe":
		results = a.store.FilteredSearch(vectorstore.Filters{PageType: vectorstore.PageTypeRecipe})
		label = "RECIPE"
	default:
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s PAGES FOR %q:\n", label, intent.EntityName)
	for _, r := range results {
		fmt.Fprintf(&b, "- %s (%s)\n", r.Title, r.URL)
	}
	return b.String()
}

// extractReferences returns the retrieved URLs the response actually mentions,
// or all retrieved URLs when the response mentions none.
func extractReferences(text string, hits []vectorstore.Result) []string {
	if len(hits) == 0 {
		return nil
	}
	var mentioned []string
	for _, hit := range hits {
		if strings.Contains(text, hit.URL) {
			mentioned = append(mentioned, hit.URL)
		}
	}
	if len(mentioned) > 0 {
		return mentioned
	}
	refs := make([]string, 0, len(hits))
	for _, hit := range hits {
		refs = append(refs, hit.URL)
	}
	return refs
}

// cleanResponseText strips numbered citation markers like [1] that models
// emit despite instructions.
func cleanResponseText(text string) string {
	return strings.TrimSpace(citationMarker.ReplaceAllString(text, ""))
}
