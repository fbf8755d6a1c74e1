package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const intentSystemPrompt = `You are an intent classifier for a food-site chatbot.
Analyze the query and extract:
- entityType: What type of thing is the user asking about? (product, recipe, ingredient, category, brand)
- entityName: The specific name of the entity they're asking about, if any
- action: What they want to do or know (find, learn about, get details, etc.)

Return only a JSON object with these fields. If a field is not applicable, exclude it.`

// OpenAI is an Adapter backed by the OpenAI chat API through langchaingo.
type OpenAI struct {
	client *openai.LLM
	logger *zap.Logger
}

// NewOpenAI creates an OpenAI generator. The API key is taken from apiKey or
// the OPENAI_API_KEY environment variable.
func NewOpenAI(apiKey, model string, logger *zap.Logger) (*OpenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai generator: no API key configured")
	}
	if model == "" {
		model = "gpt-4o"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("openai generator: %w", err)
	}
	return &OpenAI{client: client, logger: logger}, nil
}

// Complete sends the prompts to the chat API and returns the response text.
func (o *OpenAI) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := o.client.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
		},
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(800),
	)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion: empty response")
	}
	return resp.Choices[0].Content, nil
}

// ClassifyIntent asks the model for a JSON intent object. Any failure
// (call error, empty response, unparseable JSON) degrades to an empty
// Intent; the chat path simply attaches no specialized context.
func (o *OpenAI) ClassifyIntent(ctx context.Context, query string) (Intent, error) {
	resp, err := o.client.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, intentSystemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, query),
		},
		llms.WithTemperature(0.3),
		llms.WithJSONMode(),
	)
	if err != nil {
		o.logger.Warn("intent classification failed", zap.Error(err))
		return Intent{}, nil
	}
	if len(resp.Choices) == 0 {
		return Intent{}, nil
	}

	var intent Intent
	if err := json.Unmarshal([]byte(resp.Choices[0].Content), &intent); err != nil {
		o.logger.Warn("intent response not parseable", zap.Error(err))
		return Intent{}, nil
	}
	return intent, nil
}
