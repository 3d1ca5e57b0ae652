package tools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxPageContentLength = 10000

var multiNewlineRe = regexp.MustCompile(`\n{3,}`)

// WebpageTool fetches a URL and extracts its readable text. Pages are cached
// by exact URL.
type WebpageTool struct {
	client *http.Client
	cache  Cache
	logger *log.Logger
}

func NewWebpageTool(client *http.Client, cache Cache, logger *log.Logger) *WebpageTool {
	return &WebpageTool{client: client, cache: cache, logger: logger}
}

func (t *WebpageTool) Tool() Tool {
	return Tool{
		Name:        "Visit Webpage",
		Description: "PRIORITY 5: Explore relevant URLs found during search",
		Priority:    5,
		Invoke:      t.Invoke,
	}
}

func (t *WebpageTool) Invoke(ctx context.Context, pageURL string) Outcome {
	if cached, ok := t.cache.Get(pageURL); ok {
		return Intermediate(cached)
	}

	content, err := t.fetch(ctx, pageURL)
	if err != nil {
		t.logger.Printf("[WEBPAGE] %v", err)
		if isTimeout(err) {
			return Intermediate("The request timed out. Please try again later or check the URL.")
		}
		return Intermediate(fmt.Sprintf("Error fetching the webpage: %v", err))
	}

	t.cache.Set(pageURL, content)
	return Intermediate(content)
}

func (t *WebpageTool) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &ToolError{Tool: "Visit Webpage", Cause: err}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &ToolError{Tool: "Visit Webpage", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ToolError{Tool: "Visit Webpage", Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", &ToolError{Tool: "Visit Webpage", Cause: err}
	}

	doc.Find("script, style, noscript").Remove()

	var sb strings.Builder
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td, th").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})

	content := multiNewlineRe.ReplaceAllString(strings.TrimSpace(sb.String()), "\n\n")
	if len(content) > maxPageContentLength {
		content = content[:maxPageContentLength] + "\n\n...[truncated]"
	}
	return content, nil
}

func isTimeout(err error) bool {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		err = toolErr.Cause
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
