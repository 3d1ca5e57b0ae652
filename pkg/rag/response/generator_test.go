package response

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"afcon-assistant-be/pkg/llm"
	"afcon-assistant-be/pkg/store"
)

type stubProvider struct {
	response  string
	err       error
	gotPrompt string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.gotPrompt = prompt
	return s.response, s.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSynthesizePromptSections(t *testing.T) {
	tests := []struct {
		name       string
		structured string
		fragments  []store.Fragment
		wantSubs   []string
		absentSubs []string
	}{
		{
			name:       "both sources present",
			structured: "pharmacie_name: Pharmacie Centrale",
			fragments:  []store.Fragment{{Content: "Sale is a city near Rabat."}},
			wantSubs:   []string{"Database information:", "Pharmacie Centrale", "Document information:", "Sale is a city"},
		},
		{
			name:       "structured only",
			structured: "hotel_name: Atlas",
			wantSubs:   []string{"Database information:", "Atlas"},
			absentSubs: []string{"Document information:"},
		},
		{
			name:       "fragments only",
			fragments:  []store.Fragment{{Content: "Opening ceremony details."}},
			wantSubs:   []string{"Document information:"},
			absentSubs: []string{"Database information:"},
		},
		{
			name:       "no evidence at all",
			wantSubs:   []string{"No reference information was found"},
			absentSubs: []string{"Database information:", "Document information:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{response: "answer"}
			g := NewGenerator(provider, testLogger())

			if _, err := g.Synthesize(context.Background(), "question", "en", tt.structured, tt.fragments, ""); err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			for _, want := range tt.wantSubs {
				if !strings.Contains(provider.gotPrompt, want) {
					t.Errorf("prompt missing %q", want)
				}
			}
			for _, absent := range tt.absentSubs {
				if strings.Contains(provider.gotPrompt, absent) {
					t.Errorf("prompt should not contain empty section header %q", absent)
				}
			}
		})
	}
}

func TestSynthesizeIncludesHistory(t *testing.T) {
	provider := &stubProvider{response: "answer"}
	g := NewGenerator(provider, testLogger())

	_, err := g.Synthesize(context.Background(), "and in Rabat?", "en", "", nil, "User: pharmacies in Sale?\nAssistant: There are 12.")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !strings.Contains(provider.gotPrompt, "pharmacies in Sale?") {
		t.Errorf("history missing from the prompt")
	}
}

func TestSynthesizeBackendError(t *testing.T) {
	backendErr := errors.New("unreachable")
	g := NewGenerator(&stubProvider{err: backendErr}, testLogger())

	_, err := g.Synthesize(context.Background(), "q", "en", "", nil, "")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Synthesize() error = %v, want GenerationError", err)
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("GenerationError should wrap the backend error")
	}
}
