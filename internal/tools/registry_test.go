package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func testRegistry() *Registry {
	return NewRegistry(slog.New(slog.DiscardHandler))
}

func TestDispatchSearchMarketData(t *testing.T) {
	reg := testRegistry()

	out := reg.Dispatch(context.Background(), ToolSearchMarketData, `{"query":"EV adoption","dataType":"growth"}`)

	var envelope struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if envelope.Status != "success" {
		t.Errorf("status = %q", envelope.Status)
	}
	if envelope.Data["query"] != "EV adoption" {
		t.Errorf("query not echoed: %v", envelope.Data)
	}
	if envelope.Data["type"] != "growth" {
		t.Errorf("data type not echoed: %v", envelope.Data)
	}
}

func TestDispatchAnalyzeCompetitors(t *testing.T) {
	reg := testRegistry()

	out := reg.Dispatch(context.Background(), ToolAnalyzeCompetitors, `{"companyName":"Acme","aspects":["pricing","strategy"]}`)

	var envelope struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Status != "success" {
		t.Errorf("status = %q", envelope.Status)
	}
	if envelope.Data["company"] != "Acme" {
		t.Errorf("company not echoed: %v", envelope.Data)
	}
}

func TestDispatchGetMarketTrends(t *testing.T) {
	reg := testRegistry()

	out := reg.Dispatch(context.Background(), ToolGetMarketTrends, `{"industry":"fintech","trendType":"current"}`)

	var envelope struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Status != "success" {
		t.Errorf("status = %q", envelope.Status)
	}
}

func TestDispatchUnknownFunction(t *testing.T) {
	reg := testRegistry()

	out := reg.Dispatch(context.Background(), "does_not_exist", `{}`)

	var envelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Status != "error" {
		t.Errorf("status = %q", envelope.Status)
	}
	if envelope.Message != "Unknown function: does_not_exist" {
		t.Errorf("message = %q", envelope.Message)
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	reg := testRegistry()

	out := reg.Dispatch(context.Background(), ToolSearchMarketData, `{not json`)

	var envelope struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("error output must still be JSON: %v", err)
	}
	if envelope.Status != "error" {
		t.Errorf("status = %q", envelope.Status)
	}
}

func TestRequiredParams(t *testing.T) {
	tests := []struct {
		tool string
		want []string
	}{
		{ToolSearchMarketData, []string{"query", "dataType"}},
		{ToolAnalyzeCompetitors, []string{"companyName"}},
		{ToolGetMarketTrends, []string{"industry"}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			got, ok := RequiredParams(tt.tool)
			if !ok {
				t.Fatalf("no required params declared for %s", tt.tool)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDefinitionsCoverRegisteredTools(t *testing.T) {
	reg := testRegistry()
	for _, def := range Definitions() {
		out := reg.Dispatch(context.Background(), def.Name, `{}`)
		var envelope struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal([]byte(out), &envelope); err != nil {
			t.Fatal(err)
		}
		if envelope.Status != "success" {
			t.Errorf("declared tool %q has no handler: %s", def.Name, out)
		}
	}
}

func TestDispatchMissingRequiredParam(t *testing.T) {
	reg := testRegistry()

	tests := []struct {
		name    string
		tool    string
		args    string
		missing string
	}{
		{"absent key", ToolSearchMarketData, `{"query":"EV adoption"}`, "dataType"},
		{"empty value", ToolAnalyzeCompetitors, `{"companyName":""}`, "companyName"},
		{"null value", ToolGetMarketTrends, `{"industry":null}`, "industry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := reg.Dispatch(context.Background(), tt.tool, tt.args)

			var envelope struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal([]byte(out), &envelope); err != nil {
				t.Fatal(err)
			}
			if envelope.Status != "error" {
				t.Errorf("status = %q", envelope.Status)
			}
			want := "Missing required parameter: " + tt.missing
			if envelope.Message != want {
				t.Errorf("message = %q, want %q", envelope.Message, want)
			}
		})
	}
}
