package processing

import (
	"context"
	"fmt"
	"strings"
)

// QueryResponse is the structured output for search query generation.
type QueryResponse struct {
	Query string `json:"query" jsonschema_description:"A short stock-footage search query of 2-5 keywords, no punctuation"`
}

var queryResponseSchema = GenerateSchema[QueryResponse]()

// SearchQuery derives a short keyword query for the stock-footage search
// from a scene's narration and visual description.
func (c *Client) SearchQuery(ctx context.Context, sceneText, visualDescription string) (string, error) {
	prompt := fmt.Sprintf(
		"Derive a short stock-footage search query for the background video of one scene in an educational video.\n\n"+
			"Scene narration: %s\n"+
			"Visual description: %s\n\n"+
			"Respond with 2-5 concrete, visual keywords. Avoid abstract terms, names and punctuation.",
		sceneText, visualDescription)

	resp, err := structuredResponse[QueryResponse](ctx, c,
		"search_query", "A stock footage search query for a video scene", prompt, queryResponseSchema)
	if err != nil {
		return "", err
	}

	query := strings.TrimSpace(resp.Query)
	if query == "" {
		return "", fmt.Errorf("OpenAI returned empty search query")
	}
	return query, nil
}
