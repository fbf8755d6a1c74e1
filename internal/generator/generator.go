// Package generator provides the text-generation adapter for Smartie.
//
// The generator is an external collaborator: it receives a constructed prompt
// (context + user query + system instructions) and returns response text. A
// secondary intent-classification call picks which specialized context block
// to attach to a chat prompt.
package generator

import "context"

// Intent is the classifier's best guess at what the user is asking about.
// All fields are optional; an empty Intent means no specialized context.
type Intent struct {
	EntityType string `json:"entityType,omitempty"`
	EntityName string `json:"entityName,omitempty"`
	Action     string `json:"action,omitempty"`
}

// Adapter is the generation interface consumed by the chat path.
type Adapter interface {
	// Complete returns response text for the given prompts.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ClassifyIntent extracts the entity type/name a query is about.
	// Implementations degrade to an empty Intent on classifier failure
	// rather than failing the request.
	ClassifyIntent(ctx context.Context, query string) (Intent, error)
}
