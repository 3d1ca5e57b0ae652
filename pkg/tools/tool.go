package tools

import (
	"context"
	"fmt"
)

// OutcomeKind distinguishes an intermediate tool result from the terminal
// answer. The agent loop inspects the tag instead of catching an exception.
type OutcomeKind int

const (
	KindIntermediate OutcomeKind = iota
	KindFinal
)

// Outcome is the result of one tool invocation.
type Outcome struct {
	Kind    OutcomeKind
	Content string
}

func Intermediate(content string) Outcome {
	return Outcome{Kind: KindIntermediate, Content: content}
}

func Final(content string) Outcome {
	return Outcome{Kind: KindFinal, Content: content}
}

// ToolError wraps a network, timeout or parse failure inside a tool. Tools
// fold it into a descriptive Outcome so the agent loop can reason about the
// failure in-band instead of aborting.
type ToolError struct {
	Tool  string
	Cause error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Cause)
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// Tool is one independently callable capability. Priority is declarative
// metadata consumed by the upstream agent loop to decide call order.
type Tool struct {
	Name        string
	Description string
	Priority    int
	Invoke      func(ctx context.Context, input string) Outcome
}
