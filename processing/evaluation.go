package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/openai/openai-go/v3"
)

// Moderate runs the moderation check on the combined visual/scene text and
// returns whether it was flagged plus the flagged category names.
func (c *Client) Moderate(ctx context.Context, input string) (bool, []string, error) {
	resp, err := c.api.Moderations.New(ctx, openai.ModerationNewParams{
		Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(input)},
	})
	if err != nil {
		return false, nil, fmt.Errorf("OpenAI moderation error: %w", err)
	}
	if len(resp.Results) == 0 {
		return false, nil, fmt.Errorf("OpenAI moderation returned no results")
	}

	result := resp.Results[0]
	if !result.Flagged {
		return false, nil, nil
	}
	return true, flaggedCategories(result.Categories), nil
}

// flaggedCategories collects the names of the categories the moderation
// endpoint flagged, in stable order.
func flaggedCategories(categories interface{}) []string {
	raw, err := json.Marshal(categories)
	if err != nil {
		return nil
	}
	var byName map[string]bool
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil
	}
	var flagged []string
	for name, hit := range byName {
		if hit {
			flagged = append(flagged, name)
		}
	}
	sort.Strings(flagged)
	return flagged
}

// JudgeVisual asks the vision model to rate a candidate visual against the
// scene text. The raw response text is returned as-is; the caller parses it
// and degrades gracefully when it is not valid JSON.
func (c *Client) JudgeVisual(ctx context.Context, visualURL, sceneText string) (string, error) {
	prompt := fmt.Sprintf(
		"Evaluate the visual content at the URL provided based on the following scene text:\n\n"+
			"Scene Text: %q\n\n"+
			"Assess the following criteria:\n"+
			"1. Relevance: How relevant is the visual to the scene text? (Score 0.0 to 1.0)\n"+
			"2. Narrative Coherence: Does the visual fit logically and tonally with the scene text? (Score 0.0 to 1.0)\n"+
			"3. Quality: Assess the visual quality (e.g., resolution, clarity, composition). (Rate as Poor, Fair, Good, Excellent)\n"+
			"Provide your assessment in JSON format with keys: 'relevance_score', 'coherence_score', 'quality_assessment', 'brief_justification'.",
		sceneText)

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: visualURL}),
			}),
		},
		Model:     visionModel,
		MaxTokens: openai.Int(300),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI vision error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return completion.Choices[0].Message.Content, nil
}
