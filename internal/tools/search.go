package tools

import (
	"encoding/json"

	"github.com/firebase/genkit/go/ai"
)

// SearchInput is the webSearch tool's parameters.
type SearchInput struct {
	Query string `json:"query" jsonschema:"description=The search query"`
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchOutput is the webSearch tool's result.
type SearchOutput struct {
	Query   string         `json:"query,omitempty"`
	Results []SearchResult `json:"results,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// WebSearch queries the Tavily search API.
func (k *Kit) WebSearch(ctx *ai.ToolContext, input SearchInput) (SearchOutput, error) {
	if k.searchAPIKey == "" {
		return SearchOutput{Error: "TAVILY_API_KEY is not configured"}, nil
	}

	resp, err := k.postJSON(ctx.Context, k.searchBase+"/search", searchRequest{
		APIKey:      k.searchAPIKey,
		Query:       input.Query,
		SearchDepth: "basic",
		MaxResults:  5,
	})
	if err != nil {
		k.logger.Warn("web search failed", "query", input.Query, "error", err)
		return SearchOutput{Error: "Search failed"}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SearchOutput{Error: "Search failed"}, nil
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return SearchOutput{Error: "Search failed"}, nil
	}

	return SearchOutput{Query: input.Query, Results: data.Results}, nil
}
