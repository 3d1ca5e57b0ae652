package classifier

import (
	"context"
	"fmt"
	"log"
	"strings"

	"afcon-assistant-be/pkg/llm"
)

// QueryType is the closed routing enumeration. Exactly one applies per question.
type QueryType string

const (
	TypeStructured QueryType = "structured"
	TypeGeneral    QueryType = "general"
)

// Result is the routing decision for one question.
type Result struct {
	Type     QueryType
	Thinking []string
}

// ClassificationError signals that the generation backend failed while
// classifying. The orchestrator degrades to the general path on this error.
type ClassificationError struct {
	Cause error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("query classification failed: %v", e.Cause)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}

// Classifier decides whether a question needs the relational store.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewClassifier(llmProvider llm.LLMProvider, logger *log.Logger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Classify maps a question plus history to exactly one of the two routing
// categories. The backend's reply is an untrusted oracle: anything outside the
// closed enumeration degrades to general.
func (c *Classifier) Classify(ctx context.Context, question string, history string) (*Result, error) {
	prompt := c.buildPrompt(question, history)

	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return nil, &ClassificationError{Cause: err}
	}

	// Exact-token match only. A reply that merely mentions a label, such as
	// a verbose refusal naming both, must not route the question.
	label := strings.Trim(strings.ToLower(response), " \t\r\n.'\"")
	thinking := []string{"Classified question type"}

	switch QueryType(label) {
	case TypeStructured:
		return &Result{Type: TypeStructured, Thinking: thinking}, nil
	case TypeGeneral:
		return &Result{Type: TypeGeneral, Thinking: thinking}, nil
	default:
		c.logger.Printf("[CLASSIFIER] Unknown label %q, defaulting to general", label)
		return &Result{
			Type:     TypeGeneral,
			Thinking: append(thinking, fmt.Sprintf("Unknown label %q, defaulted to general", label)),
		}, nil
	}
}

func (c *Classifier) buildPrompt(question string, history string) string {
	var prompt strings.Builder

	prompt.WriteString("Classify whether the question needs access to the structured database\n")
	prompt.WriteString("(tables about pharmacies, hotels, restaurants, hospitals, medicaments and the match schedule).\n")
	prompt.WriteString("Answer with exactly one word: 'structured' or 'general'.\n\n")
	prompt.WriteString("Previous conversation:\n")
	prompt.WriteString(history)
	prompt.WriteString("\n\nQuestion: ")
	prompt.WriteString(question)

	return prompt.String()
}
