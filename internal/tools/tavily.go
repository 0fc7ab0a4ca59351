package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"aireas/internal/contextutil"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilyTool searches the web through the Tavily search API.
type TavilyTool struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	maxResults int
}

// NewTavilyTool creates a Tavily web search tool.
func NewTavilyTool(apiKey string) (*TavilyTool, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tavily api key is required")
	}
	return &TavilyTool{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   tavilyEndpoint,
		apiKey:     apiKey,
		maxResults: 3,
	}, nil
}

// Name implements Tool.
func (t *TavilyTool) Name() string { return "web_search" }

// Description implements Tool.
func (t *TavilyTool) Description() string {
	return "Search the web for current information. Use for questions about recent events or facts outside the uploaded documents and arXiv."
}

// Parameters implements Tool.
func (t *TavilyTool) Parameters() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query": {
				Type:        genai.TypeString,
				Description: "The search query.",
			},
		},
		Required: []string{"query"},
	}
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Call implements Tool.
func (t *TavilyTool) Call(ctx context.Context, args map[string]any) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query := stringArg(args, "query")
	if query == "" {
		return "", fmt.Errorf("query argument is required")
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:        t.apiKey,
		Query:         query,
		MaxResults:    t.maxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tavily returned status %d", resp.StatusCode)
	}

	var result tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode tavily response: %w", err)
	}

	if result.Answer == "" && len(result.Results) == 0 {
		return "No web results found for: " + query, nil
	}

	var b strings.Builder
	if result.Answer != "" {
		fmt.Fprintf(&b, "Answer: %s\n\n", result.Answer)
	}
	for i, r := range result.Results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n\n", i+1, r.Title, r.URL, r.Content)
	}

	logger.InfoContext(ctx, "web search completed", "query", query, "results", len(result.Results))
	return b.String(), nil
}
