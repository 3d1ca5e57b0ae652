package sqlagent

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"afcon-assistant-be/pkg/llm"
	"afcon-assistant-be/pkg/rag/schema"
)

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func testSchema() *schema.Schema {
	return &schema.Schema{
		Tables: []schema.Table{
			{Name: "pharmacies", Columns: []schema.Column{{Name: "pharmacie_name", Type: "text"}, {Name: "city", Type: "text"}}},
			{Name: "hotels", Columns: []schema.Column{{Name: "hotel_name", Type: "text"}, {Name: "city", Type: "text"}}},
		},
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestGenerateQuery(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantValid bool
		wantText  string
	}{
		{
			name:      "plain query",
			response:  "SELECT * FROM pharmacies WHERE UPPER(city) = 'SALE'",
			wantValid: true,
			wantText:  "SELECT * FROM pharmacies WHERE UPPER(city) = 'SALE'",
		},
		{
			name:      "fenced query",
			response:  "```sql\nSELECT * FROM hotels\n```",
			wantValid: true,
			wantText:  "SELECT * FROM hotels",
		},
		{
			name:      "invalid sentinel",
			response:  "INVALID",
			wantValid: false,
		},
		{
			name:      "lowercase sentinel",
			response:  "invalid",
			wantValid: false,
		},
		{
			name:      "mutation rejected",
			response:  "SELECT * FROM pharmacies; DROP TABLE pharmacies",
			wantValid: false,
		},
		{
			name:      "update rejected",
			response:  "UPDATE pharmacies SET city = 'SALE'",
			wantValid: false,
		},
		{
			name:      "unknown table rejected",
			response:  "SELECT * FROM users",
			wantValid: false,
		},
		{
			name:      "prose rejected",
			response:  "I cannot write that query, sorry.",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := NewAgent(&stubProvider{response: tt.response}, testLogger())
			got, err := agent.GenerateQuery(context.Background(), "any question", testSchema(), "")
			if err != nil {
				t.Fatalf("GenerateQuery() error = %v", err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (query %q)", got.Valid, tt.wantValid, got.Text)
			}
			if tt.wantValid && got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if !tt.wantValid && got.Text != "" {
				t.Errorf("invalid candidate should carry no query text, got %q", got.Text)
			}
		})
	}
}

func TestGenerateQueryBackendError(t *testing.T) {
	backendErr := errors.New("backend down")
	agent := NewAgent(&stubProvider{err: backendErr}, testLogger())

	_, err := agent.GenerateQuery(context.Background(), "any question", testSchema(), "")
	var genErr *QueryGenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("GenerateQuery() error = %v, want QueryGenerationError", err)
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("QueryGenerationError should wrap the backend error")
	}
}

func TestPromptEmbedsSchemaAndDomainTables(t *testing.T) {
	agent := NewAgent(&stubProvider{response: "INVALID"}, testLogger())
	prompt := agent.buildPrompt("where can I buy aspirin", testSchema(), "")

	for _, want := range []string{"Table: pharmacies", "pharmacie_name", "INVALID", "match_schedule", "UPPER()"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
