package tools

import (
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// PortfolioInput is the portfolio tool's parameters.
type PortfolioInput struct {
	Username string `json:"username" jsonschema:"description=The GitHub username to build the portfolio from"`
}

// PortfolioOutput is the portfolio tool's result.
type PortfolioOutput struct {
	Username string `json:"username,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Portfolio builds the hosted portfolio URL for a GitHub username.
func (k *Kit) Portfolio(_ *ai.ToolContext, input PortfolioInput) (PortfolioOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return PortfolioOutput{Error: "A GitHub username is required"}, nil
	}

	return PortfolioOutput{
		Username: username,
		URL:      k.portfolioBase + "/" + username,
	}, nil
}
