package tools

import (
	"context"
	"regexp"
	"strings"
)

// controlPrefixes are the scratch-pad markers an agent loop leaks into its
// raw output. They never belong in a user-facing answer.
var controlPrefixes = []string{
	"Action:",
	"Action Input:",
	"Thought:",
	">",
	"Invalid Format:",
}

var (
	codeFenceRe = regexp.MustCompile("```[^`]*```")
	sourceRe    = regexp.MustCompile(`Source: https?://\S+`)
	spacesRe    = regexp.MustCompile(`[ \t]{2,}`)
)

// StripControlMarkup removes scratch-pad lines and technical markers from raw
// agent output. Deterministic: the same input always yields the same output.
func StripControlMarkup(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		skip := false
		for _, prefix := range controlPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, line)
		}
	}
	out := strings.Join(kept, "\n")
	out = codeFenceRe.ReplaceAllString(out, "")
	out = sourceRe.ReplaceAllString(out, "")
	out = spacesRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// NewFinalAnswerTool is the termination signal of the agent loop. It wraps
// the cleaned text in a Final outcome so the caller can distinguish the
// terminal answer from an intermediate tool result.
func NewFinalAnswerTool() Tool {
	return Tool{
		Name:        "Final Answer",
		Description: "PRIORITY 7: Format and structure the final response with appropriate context",
		Priority:    7,
		Invoke: func(ctx context.Context, response string) Outcome {
			return Final(StripControlMarkup(response))
		},
	}
}
