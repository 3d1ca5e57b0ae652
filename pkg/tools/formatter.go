package tools

import (
	"context"
	"strings"
)

// sectionMarkers map the headers of semi-structured agent output to the
// block they open. The extractor is a legacy-compat shim for raw text
// crossing the tool boundary.
var sectionMarkers = map[string]string{
	"Information from Database:": "database",
	"Information from Web:":      "web",
	"Action: Final Answer":       "final",
}

type responseBlocks struct {
	database []string
	web      []string
	final    []string
}

func extractBlocks(raw string) responseBlocks {
	var blocks responseBlocks
	current := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		matched := false
		for marker, block := range sectionMarkers {
			if strings.Contains(line, marker) {
				current = block
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		switch current {
		case "database":
			blocks.database = append(blocks.database, line)
		case "web":
			if line != "No results found" && !strings.HasPrefix(line, "Error") {
				blocks.web = append(blocks.web, line)
			}
		case "final":
			blocks.final = append(blocks.final, line)
		}
	}
	return blocks
}

func formatBlocks(blocks responseBlocks) string {
	content := blocks.final
	if len(content) == 0 {
		content = append(content, blocks.database...)
		content = append(content, blocks.web...)
	}
	if len(content) == 0 {
		return "I am here to help you with AFCON 2025 in Morocco. What would you like to know?"
	}
	return StripControlMarkup(strings.Join(content, "\n"))
}

// NewProcessResponseTool reassembles a coherent answer from the labelled
// sections of raw agent output and terminates the loop with it.
func NewProcessResponseTool() Tool {
	return Tool{
		Name:        "Process Response",
		Description: "PRIORITY 6: Process and format responses from other tools",
		Priority:    6,
		Invoke: func(ctx context.Context, raw string) Outcome {
			return Final(formatBlocks(extractBlocks(raw)))
		},
	}
}
