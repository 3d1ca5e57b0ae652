package response

import (
	"context"
	"fmt"
	"log"
	"strings"

	"afcon-assistant-be/pkg/llm"
	"afcon-assistant-be/pkg/store"
)

// GenerationError signals that answer synthesis failed. Unlike every other
// stage this one has no degraded output to fall back on, so the error
// propagates to the caller.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Generator synthesizes the final answer from whatever evidence survived the
// upstream stages. Absent evidence sections are omitted from the prompt
// entirely rather than sent as empty headers.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{llmProvider: llmProvider, logger: logger}
}

// Synthesize produces the user-facing answer text.
func (g *Generator) Synthesize(ctx context.Context, question, language, structuredData string, fragments []store.Fragment, history string) (string, error) {
	prompt := g.buildPrompt(question, language, structuredData, fragments, history)

	answer, err := g.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return "", &GenerationError{Cause: err}
	}
	return strings.TrimSpace(answer), nil
}

func (g *Generator) buildPrompt(question, language, structuredData string, fragments []store.Fragment, history string) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful assistant for visitors of the Africa Cup of Nations 2025 in Morocco.\n")
	sb.WriteString("Answer the question using the information below. Be concise and factual.\n")
	if language != "" && language != "en" {
		sb.WriteString(fmt.Sprintf("Answer in the language with code %q.\n", language))
	}

	if history != "" {
		sb.WriteString("\nPrevious conversation:\n")
		sb.WriteString(history)
		sb.WriteString("\n")
	}

	if structuredData != "" {
		sb.WriteString("\nDatabase information:\n")
		sb.WriteString(structuredData)
		sb.WriteString("\n")
	}

	if len(fragments) > 0 {
		sb.WriteString("\nDocument information:\n")
		for _, f := range fragments {
			sb.WriteString("- ")
			sb.WriteString(f.Content)
			sb.WriteString("\n")
		}
	}

	if structuredData == "" && len(fragments) == 0 {
		sb.WriteString("\nNo reference information was found. Answer from general knowledge about the tournament, and say so when you are unsure.\n")
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer:")

	return sb.String()
}
