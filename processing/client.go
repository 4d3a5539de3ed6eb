package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrNotConfigured is returned by NewClient when no API key is available.
// Callers treat it as "provider unavailable" and fail the request up front
// instead of attempting a call that cannot succeed.
var ErrNotConfigured = errors.New("processing: OPENAI_API_KEY not set")

const (
	textModel   = openai.ChatModelGPT4o
	visionModel = openai.ChatModelGPT4o
)

// Client wraps the OpenAI API with the generation operations the pipeline
// needs. It is passed explicitly to handlers and workers so tests can
// substitute fakes at the interface boundaries.
type Client struct {
	api openai.Client
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &Client{api: openai.NewClient(option.WithAPIKey(apiKey))}, nil
}

// GenerateSchema generates a JSON schema for structured outputs.
// Structured Outputs uses a subset of JSON schema; these flags are
// necessary to comply with the subset.
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// chatText runs a plain system+user chat completion and returns the text.
func (c *Client) chatText(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Model:       textModel,
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return completion.Choices[0].Message.Content, nil
}

// structuredResponse calls the chat API with JSON schema enforcement and
// unmarshals the result into T.
func structuredResponse[T any](ctx context.Context, c *Client, name, description, prompt string, schema interface{}) (*T, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModelGPT4oMini,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	raw := completion.Choices[0].Message.Content
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI JSON response: %w\nRaw content: %s", err, raw)
	}
	return &out, nil
}
