package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"aireas/internal/contextutil"
)

const arxivEndpoint = "http://export.arxiv.org/api/query"

// ArxivTool searches the arXiv paper index through its Atom API.
type ArxivTool struct {
	httpClient *http.Client
	endpoint   string
	maxResults int
}

// NewArxivTool creates an arXiv search tool.
func NewArxivTool() *ArxivTool {
	return &ArxivTool{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   arxivEndpoint,
		maxResults: 3,
	}
}

// Name implements Tool.
func (t *ArxivTool) Name() string { return "arxiv_search" }

// Description implements Tool.
func (t *ArxivTool) Description() string {
	return "Search arXiv for academic papers. Use for questions about scientific publications, preprints, or research topics not covered by the uploaded documents."
}

// Parameters implements Tool.
func (t *ArxivTool) Parameters() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query": {
				Type:        genai.TypeString,
				Description: "Search terms, e.g. a topic, paper title, or author name.",
			},
		},
		Required: []string{"query"},
	}
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	ID        string        `xml:"id"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// Call implements Tool.
func (t *ArxivTool) Call(ctx context.Context, args map[string]any) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query := stringArg(args, "query")
	if query == "" {
		return "", fmt.Errorf("query argument is required")
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("max_results", fmt.Sprintf("%d", t.maxResults))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build arxiv request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return "", fmt.Errorf("failed to decode arxiv response: %w", err)
	}

	if len(feed.Entries) == 0 {
		return "No papers found for: " + query, nil
	}

	var b strings.Builder
	for i, entry := range feed.Entries {
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			authors = append(authors, a.Name)
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(entry.Title))
		fmt.Fprintf(&b, "   Authors: %s\n", strings.Join(authors, ", "))
		fmt.Fprintf(&b, "   Published: %s\n", entry.Published)
		fmt.Fprintf(&b, "   Link: %s\n", entry.ID)
		fmt.Fprintf(&b, "   Abstract: %s\n\n", strings.TrimSpace(entry.Summary))
	}

	logger.InfoContext(ctx, "arxiv search completed", "query", query, "results", len(feed.Entries))
	return b.String(), nil
}
