package tools

import (
	"context"
	"strings"
	"testing"
)

func TestStripControlMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "scratch pad lines dropped",
			input: "Thought: I should answer now\nAction: Final Answer\nThe stadium is in Rabat.",
			want:  "The stadium is in Rabat.",
		},
		{
			name:  "terminal markers dropped",
			input: "> Entering new chain\nInvalid Format: retrying\nHotels are open.",
			want:  "Hotels are open.",
		},
		{
			name:  "code fences removed",
			input: "Here:\n```sql\nSELECT 1\n```",
			want:  "Here:",
		},
		{
			name:  "source links removed",
			input: "Tickets are available online. Source: https://example.com/tickets",
			want:  "Tickets are available online.",
		},
		{
			name:  "clean text untouched",
			input: "The match starts at 20:00.",
			want:  "The match starts at 20:00.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripControlMarkup(tt.input); got != tt.want {
				t.Errorf("StripControlMarkup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripControlMarkupDeterministic(t *testing.T) {
	input := "Thought: hm\nAnswer line one\nAction Input: x\nAnswer line two"
	first := StripControlMarkup(input)
	second := StripControlMarkup(input)
	if first != second {
		t.Errorf("StripControlMarkup() not deterministic: %q vs %q", first, second)
	}
}

func TestFinalAnswerToolIsTerminal(t *testing.T) {
	tool := NewFinalAnswerTool()

	out := tool.Invoke(context.Background(), "Thought: done\nVisit the stadium early.")
	if out.Kind != KindFinal {
		t.Errorf("Kind = %v, want KindFinal", out.Kind)
	}
	if strings.Contains(out.Content, "Thought:") {
		t.Errorf("control markup leaked into the final answer: %q", out.Content)
	}
}
