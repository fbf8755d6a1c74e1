package generator

import "context"

// DefaultStaticReply is returned by a zero-value Static adapter.
const DefaultStaticReply = "I'm sorry, I'm having trouble generating a response right now. Please try again later."

// Static is an Adapter that returns a fixed reply and never calls out.
// It serves offline runs and tests.
type Static struct {
	Reply  string
	Intent Intent
}

// Complete returns the configured reply, or DefaultStaticReply when unset.
func (s *Static) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.Reply == "" {
		return DefaultStaticReply, nil
	}
	return s.Reply, nil
}

// ClassifyIntent returns the configured intent.
func (s *Static) ClassifyIntent(ctx context.Context, query string) (Intent, error) {
	return s.Intent, nil
}
