package tools

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// SearchFunc answers a query against the assistant's retrieval pipeline.
type SearchFunc func(ctx context.Context, query string) (string, error)

// NewKnowledgeBaseTool wraps the retrieval pipeline as the highest priority
// tool for tournament specific questions.
func NewKnowledgeBaseTool(search SearchFunc, logger *log.Logger) Tool {
	return Tool{
		Name:        "CAN Knowledge Base",
		Description: "PRIORITY 1: Use for specific information about AFCON 2025",
		Priority:    1,
		Invoke: func(ctx context.Context, query string) Outcome {
			result, err := search(ctx, query)
			if err != nil {
				logger.Printf("[KNOWLEDGE-BASE] %v", err)
				return Intermediate(fmt.Sprintf("Error searching the knowledge base: %v", err))
			}
			return Intermediate(result)
		},
	}
}

// NewLocalSearchTool tags the query with dataset categories and runs one
// knowledge base search per category.
func NewLocalSearchTool(search SearchFunc, logger *log.Logger) Tool {
	return Tool{
		Name:        "Local Search",
		Description: "PRIORITY 2: Search in the local database including hotels, restaurants, and medical facilities",
		Priority:    2,
		Invoke: func(ctx context.Context, query string) Outcome {
			var results []string
			for _, category := range ClassifyCategories(query) {
				result, err := search(ctx, fmt.Sprintf("[%s] %s", category, query))
				if err != nil {
					logger.Printf("[LOCAL-SEARCH] Search in %s failed: %v", category, err)
					continue
				}
				if strings.TrimSpace(result) != "" {
					results = append(results, result)
				}
			}
			if len(results) == 0 {
				return Intermediate("No information found.")
			}
			return Intermediate(strings.Join(results, "\n\n"))
		},
	}
}
