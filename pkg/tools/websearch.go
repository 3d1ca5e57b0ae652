package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

const serpAPIBaseURL = "https://serpapi.com/search.json"

type serpResult struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
}

// WebSearchTool queries SerpAPI and formats the top organic results. Results
// are cached by the exact query string.
type WebSearchTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   Cache
	logger  *log.Logger
}

func NewWebSearchTool(apiKey string, client *http.Client, cache Cache, logger *log.Logger) *WebSearchTool {
	return &WebSearchTool{
		apiKey:  apiKey,
		baseURL: serpAPIBaseURL,
		client:  client,
		cache:   cache,
		logger:  logger,
	}
}

// Tool exposes the search as a registry entry.
func (t *WebSearchTool) Tool() Tool {
	return Tool{
		Name:        "Web Search",
		Description: "PRIORITY 4: Search for current information about Morocco and AFCON",
		Priority:    4,
		Invoke:      t.Invoke,
	}
}

func (t *WebSearchTool) Invoke(ctx context.Context, query string) Outcome {
	if cached, ok := t.cache.Get(query); ok {
		return Intermediate(cached)
	}

	result, err := t.search(ctx, query)
	if err != nil {
		t.logger.Printf("[WEB-SEARCH] %v", err)
		return Intermediate(fmt.Sprintf("Error performing web search: %v", err))
	}

	t.cache.Set(query, result)
	return Intermediate(result)
}

func (t *WebSearchTool) search(ctx context.Context, query string) (string, error) {
	if t.apiKey == "" {
		return "", &ToolError{Tool: "Web Search", Cause: fmt.Errorf("search API key is not configured")}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", t.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", &ToolError{Tool: "Web Search", Cause: err}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &ToolError{Tool: "Web Search", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ToolError{Tool: "Web Search", Cause: err}
	}

	var parsed serpResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ToolError{Tool: "Web Search", Cause: err}
	}
	if parsed.Error != "" {
		return "", &ToolError{Tool: "Web Search", Cause: fmt.Errorf("search error: %s", parsed.Error)}
	}
	if len(parsed.OrganicResults) == 0 {
		return "No results found", nil
	}

	var sb strings.Builder
	for i, r := range parsed.OrganicResults {
		if i >= 3 {
			break
		}
		title := r.Title
		if title == "" {
			title = "No title"
		}
		snippet := r.Snippet
		if snippet == "" {
			snippet = "No description"
		}
		sb.WriteString(fmt.Sprintf("%s\n%s\nSource: %s\n\n", title, snippet, r.Link))
	}
	return strings.TrimSpace(sb.String()), nil
}
