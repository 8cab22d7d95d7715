package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Registered tool names.
const (
	ToolSearchMarketData   = "search_market_data"
	ToolAnalyzeCompetitors = "analyze_competitors"
	ToolGetMarketTrends    = "get_market_trends"
)

type searchMarketDataArgs struct {
	Query     string `json:"query"`
	DataType  string `json:"dataType"`
	Timeframe string `json:"timeframe,omitempty"`
}

func handleSearchMarketData(_ context.Context, args json.RawMessage) (string, error) {
	var in searchMarketDataArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parse search_market_data arguments: %w", err)
	}
	return successOutput(struct {
		Query     string `json:"query"`
		Type      string `json:"type"`
		Timeframe string `json:"timeframe,omitempty"`
		Results   string `json:"results"`
	}{
		Query:     in.Query,
		Type:      in.DataType,
		Timeframe: in.Timeframe,
		Results:   "Market data found for " + in.Query,
	})
}

type analyzeCompetitorsArgs struct {
	CompanyName string   `json:"companyName"`
	Aspects     []string `json:"aspects,omitempty"`
}

func handleAnalyzeCompetitors(_ context.Context, args json.RawMessage) (string, error) {
	var in analyzeCompetitorsArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parse analyze_competitors arguments: %w", err)
	}
	return successOutput(struct {
		Company  string   `json:"company"`
		Aspects  []string `json:"aspects,omitempty"`
		Analysis string   `json:"analysis"`
	}{
		Company:  in.CompanyName,
		Aspects:  in.Aspects,
		Analysis: "Competitor analysis for " + in.CompanyName,
	})
}

type getMarketTrendsArgs struct {
	Industry  string `json:"industry"`
	TrendType string `json:"trendType,omitempty"`
}

func handleGetMarketTrends(_ context.Context, args json.RawMessage) (string, error) {
	var in getMarketTrendsArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parse get_market_trends arguments: %w", err)
	}
	return successOutput(struct {
		Industry  string `json:"industry"`
		TrendType string `json:"trendType,omitempty"`
		Trends    string `json:"trends"`
	}{
		Industry:  in.Industry,
		TrendType: in.TrendType,
		Trends:    "Market trends for " + in.Industry,
	})
}
