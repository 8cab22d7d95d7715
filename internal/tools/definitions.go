package tools

import "github.com/projectica-ai/projectica/internal/assistant"

// Definitions returns the declared schemas for every registered tool, in the
// form the assistant profile registration expects.
func Definitions() []assistant.ToolDefinition {
	return []assistant.ToolDefinition{
		{
			Name:        ToolSearchMarketData,
			Description: "Search for market data, statistics, and trends",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search query for market information",
					},
					"dataType": map[string]any{
						"type":        "string",
						"enum":        []string{"market_size", "competitors", "trends", "consumers"},
						"description": "Type of market data to search for",
					},
					"timeframe": map[string]any{
						"type":        "string",
						"enum":        []string{"current", "historical", "forecast"},
						"description": "Timeframe for the data",
					},
				},
				"required": []string{"query", "dataType"},
			},
		},
		{
			Name:        ToolAnalyzeCompetitors,
			Description: "Analyze specific competitors in the market",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"companyName": map[string]any{
						"type":        "string",
						"description": "Name of the competitor to analyze",
					},
					"aspects": map[string]any{
						"type":        "array",
						"description": "Aspects of the competitor to analyze",
						"items": map[string]any{
							"type": "string",
							"enum": []string{"products", "pricing", "strategy", "strengths", "weaknesses"},
						},
					},
				},
				"required": []string{"companyName"},
			},
		},
		{
			Name:        ToolGetMarketTrends,
			Description: "Get current and emerging market trends",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"industry": map[string]any{
						"type":        "string",
						"description": "Industry or market segment to analyze",
					},
					"trendType": map[string]any{
						"type":        "string",
						"enum":        []string{"consumer", "technology", "regulatory", "economic"},
						"description": "Type of trends to analyze",
					},
				},
				"required": []string{"industry"},
			},
		},
	}
}

// RequiredParams lists the required argument names per tool. Dispatch
// rejects calls that omit any of them before the handler runs.
func RequiredParams(name string) ([]string, bool) {
	switch name {
	case ToolSearchMarketData:
		return []string{"query", "dataType"}, true
	case ToolAnalyzeCompetitors:
		return []string{"companyName"}, true
	case ToolGetMarketTrends:
		return []string{"industry"}, true
	default:
		return nil, false
	}
}
