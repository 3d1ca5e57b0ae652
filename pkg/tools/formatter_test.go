package tools

import (
	"context"
	"strings"
	"testing"
)

func TestProcessResponseTool(t *testing.T) {
	tests := []struct {
		name        string
		input       []string
		wantContain []string
		wantAbsent  []string
	}{
		{
			name: "database and web sections combined",
			input: []string{
				"Information from Database:",
				"Pharmacie Centrale, Sale",
				"Information from Web:",
				"AFCON tickets on sale",
			},
			wantContain: []string{"Pharmacie Centrale", "AFCON tickets"},
		},
		{
			name: "final answer block wins over the others",
			input: []string{
				"Information from Database:",
				"Pharmacie Centrale, Sale",
				"Action: Final Answer",
				"Visit Pharmacie Centrale in Sale.",
			},
			wantContain: []string{"Visit Pharmacie Centrale in Sale."},
			wantAbsent:  []string{"Pharmacie Centrale, Sale"},
		},
		{
			name: "placeholder and error web lines filtered",
			input: []string{
				"Information from Web:",
				"No results found",
				"Error performing web search: timeout",
				"Stadium gates open at 18:00",
			},
			wantContain: []string{"Stadium gates open"},
			wantAbsent:  []string{"No results found", "Error performing"},
		},
		{
			name:        "empty input yields the fallback greeting",
			input:       []string{""},
			wantContain: []string{"AFCON 2025 in Morocco"},
		},
	}

	tool := NewProcessResponseTool()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tool.Invoke(context.Background(), strings.Join(tt.input, "\n"))
			if out.Kind != KindFinal {
				t.Fatalf("Kind = %v, want KindFinal", out.Kind)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out.Content, want) {
					t.Errorf("Content = %q, missing %q", out.Content, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(out.Content, absent) {
					t.Errorf("Content = %q, should not contain %q", out.Content, absent)
				}
			}
		})
	}
}
