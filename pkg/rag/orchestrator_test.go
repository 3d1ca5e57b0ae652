package rag

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"afcon-assistant-be/pkg/llm"
	"afcon-assistant-be/pkg/rag/classifier"
	"afcon-assistant-be/pkg/rag/response"
	"afcon-assistant-be/pkg/rag/retriever"
	"afcon-assistant-be/pkg/rag/schema"
	"afcon-assistant-be/pkg/rag/sqlagent"
	"afcon-assistant-be/pkg/rag/sqlexec"
	"afcon-assistant-be/pkg/store"
)

type fakeClassifier struct {
	result *classifier.Result
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, question, history string) (*classifier.Result, error) {
	return f.result, f.err
}

type fakeSchemaProvider struct {
	schema *schema.Schema
	err    error
}

func (f *fakeSchemaProvider) Describe(ctx context.Context) (*schema.Schema, error) {
	return f.schema, f.err
}

type fakeQueryGenerator struct {
	candidate *sqlagent.CandidateQuery
	err       error
}

func (f *fakeQueryGenerator) GenerateQuery(ctx context.Context, question string, sch *schema.Schema, history string) (*sqlagent.CandidateQuery, error) {
	return f.candidate, f.err
}

type spyExecutor struct {
	result   *sqlexec.Result
	calls    int
	gotQuery string
}

func (s *spyExecutor) Execute(ctx context.Context, query string) *sqlexec.Result {
	s.calls++
	s.gotQuery = query
	return s.result
}

type fakeRetriever struct {
	fragments []store.Fragment
	err       error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string) ([]store.Fragment, error) {
	return f.fragments, f.err
}

type spySynthesizer struct {
	answer        string
	err           error
	gotStructured string
	gotFragments  []store.Fragment
	gotHistory    string
}

func (s *spySynthesizer) Synthesize(ctx context.Context, question, language, structuredData string, fragments []store.Fragment, history string) (string, error) {
	s.gotStructured = structuredData
	s.gotFragments = fragments
	s.gotHistory = history
	return s.answer, s.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testSchema() *schema.Schema {
	return &schema.Schema{Tables: []schema.Table{
		{Name: "pharmacies", Columns: []schema.Column{{Name: "pharmacie_name", Type: "text"}, {Name: "city", Type: "text"}}},
	}}
}

func newFixture() (*fakeClassifier, *fakeSchemaProvider, *fakeQueryGenerator, *spyExecutor, *fakeRetriever, *spySynthesizer) {
	return &fakeClassifier{result: &classifier.Result{Type: classifier.TypeGeneral}},
		&fakeSchemaProvider{schema: testSchema()},
		&fakeQueryGenerator{candidate: &sqlagent.CandidateQuery{Valid: false}},
		&spyExecutor{result: &sqlexec.Result{}},
		&fakeRetriever{},
		&spySynthesizer{answer: "the answer"}
}

func newOrchestrator(cls *fakeClassifier, sch *fakeSchemaProvider, gen *fakeQueryGenerator, exec *spyExecutor, ret *fakeRetriever, syn *spySynthesizer) *Orchestrator {
	return NewOrchestrator(cls, sch, gen, exec, ret, syn, testLogger())
}

func TestProcessQueryStructuredPath(t *testing.T) {
	cls, sch, gen, exec, ret, syn := newFixture()
	cls.result = &classifier.Result{Type: classifier.TypeStructured}
	gen.candidate = &sqlagent.CandidateQuery{
		Text:  "SELECT pharmacie_name FROM pharmacies WHERE UPPER(city) = 'SALE'",
		Valid: true,
	}
	exec.result = &sqlexec.Result{
		Columns: []string{"pharmacie_name"},
		Rows:    []map[string]any{{"pharmacie_name": "Pharmacie Centrale"}},
	}
	ret.fragments = []store.Fragment{{Content: "Sale is near Rabat."}}

	session := store.NewSession("s1", 5)
	envelope, err := newOrchestrator(cls, sch, gen, exec, ret, syn).ProcessQuery(context.Background(), session, Question{Text: "Are there pharmacies in Sale?"})
	if err != nil {
		t.Fatalf("ProcessQuery() error = %v", err)
	}

	if exec.calls != 1 {
		t.Errorf("executor calls = %d, want 1", exec.calls)
	}
	if exec.gotQuery != gen.candidate.Text {
		t.Errorf("executor query = %q, want %q", exec.gotQuery, gen.candidate.Text)
	}
	if !strings.Contains(syn.gotStructured, "Pharmacie Centrale") {
		t.Errorf("structured data should reach the synthesizer, got %q", syn.gotStructured)
	}
	if len(syn.gotFragments) != 1 {
		t.Errorf("fragments should reach the synthesizer even on the structured path")
	}
	if envelope.Answer != "the answer" {
		t.Errorf("Answer = %q", envelope.Answer)
	}
	if len(envelope.ThinkingProcess) == 0 {
		t.Errorf("trace should not be empty")
	}
}

// scriptedProvider replays one canned reply per Generate call and records
// every prompt it was handed.
type scriptedProvider struct {
	replies []string
	prompts []string
}

func (s *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", nil
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.prompts) > len(s.replies) {
		return "", errors.New("no scripted reply left")
	}
	return s.replies[len(s.prompts)-1], nil
}

// Drives the real classifier, query agent and synthesizer with a scripted
// backend; only the store boundaries are faked.
func TestProcessQueryPharmacyScenario(t *testing.T) {
	query := "SELECT pharmacie_name, address FROM pharmacies WHERE UPPER(city) = 'SALE'"
	backend := &scriptedProvider{replies: []string{
		"structured",
		query,
		"You can visit Pharmacie Al Amal at 12 Rue X in Sale.",
	}}

	sch := &fakeSchemaProvider{schema: &schema.Schema{Tables: []schema.Table{
		{Name: "pharmacies", Columns: []schema.Column{
			{Name: "pharmacie_name", Type: "text"},
			{Name: "address", Type: "text"},
			{Name: "city", Type: "text"},
		}},
	}}}
	exec := &spyExecutor{result: &sqlexec.Result{
		Columns: []string{"pharmacie_name", "address"},
		Rows:    []map[string]any{{"pharmacie_name": "Pharmacie Al Amal", "address": "12 Rue X"}},
	}}

	orchestrator := NewOrchestrator(
		classifier.NewClassifier(backend, testLogger()),
		sch,
		sqlagent.NewAgent(backend, testLogger()),
		exec,
		&fakeRetriever{},
		response.NewGenerator(backend, testLogger()),
		testLogger(),
	)

	session := store.NewSession("s1", 5)
	envelope, err := orchestrator.ProcessQuery(context.Background(), session, Question{Text: "Where can I find a pharmacy in Sale?"})
	if err != nil {
		t.Fatalf("ProcessQuery() error = %v", err)
	}

	if exec.calls != 1 {
		t.Fatalf("executor calls = %d, want 1", exec.calls)
	}
	if exec.gotQuery != query {
		t.Errorf("executor query = %q, want %q", exec.gotQuery, query)
	}
	if !strings.Contains(envelope.Answer, "Pharmacie Al Amal") {
		t.Errorf("answer should mention the returned pharmacy, got %q", envelope.Answer)
	}
	if len(backend.prompts) != 3 {
		t.Fatalf("backend calls = %d, want 3", len(backend.prompts))
	}
	if !strings.Contains(backend.prompts[2], "Pharmacie Al Amal") {
		t.Errorf("synthesis prompt should carry the returned row, got %q", backend.prompts[2])
	}
}

func TestProcessQueryInvalidCandidateSkipsExecution(t *testing.T) {
	cls, sch, gen, exec, ret, syn := newFixture()
	cls.result = &classifier.Result{Type: classifier.TypeStructured}
	gen.candidate = &sqlagent.CandidateQuery{Valid: false}

	session := store.NewSession("s1", 5)
	_, err := newOrchestrator(cls, sch, gen, exec, ret, syn).ProcessQuery(context.Background(), session, Question{Text: "something with no table"})
	if err != nil {
		t.Fatalf("ProcessQuery() error = %v", err)
	}

	if exec.calls != 0 {
		t.Errorf("executor calls = %d, want 0 for an invalid candidate", exec.calls)
	}
	if syn.gotStructured != "" {
		t.Errorf("structured data should be absent, got %q", syn.gotStructured)
	}
}

func TestProcessQueryClassificationErrorDegradesToGeneral(t *testing.T) {
	cls, sch, gen, exec, ret, syn := newFixture()
	cls.result = nil
	cls.err = &classifier.ClassificationError{Cause: errors.New("backend down")}

	session := store.NewSession("s1", 5)
	envelope, err := newOrchestrator(cls, sch, gen, exec, ret, syn).ProcessQuery(context.Background(), session, Question{Text: "hello"})
	if err != nil {
		t.Fatalf("ProcessQuery() should degrade, got error %v", err)
	}
	if exec.calls != 0 {
		t.Errorf("general path should never execute SQL")
	}
	if envelope.Answer != "the answer" {
		t.Errorf("Answer = %q", envelope.Answer)
	}
}

func TestProcessQueryRetrievalErrorDegradesToEmptyFragments(t *testing.T) {
	cls, sch, gen, exec, ret, syn := newFixture()
	ret.err = &retriever.RetrievalError{Cause: errors.New("index down")}

	session := store.NewSession("s1", 5)
	_, err := newOrchestrator(cls, sch, gen, exec, ret, syn).ProcessQuery(context.Background(), session, Question{Text: "hello"})
	if err != nil {
		t.Fatalf("ProcessQuery() should degrade, got error %v", err)
	}
	if len(syn.gotFragments) != 0 {
		t.Errorf("fragments should be empty after a retrieval failure")
	}
}

func TestProcessQueryExecutionErrorDegrades(t *testing.T) {
	cls, sch, gen, exec, ret, syn := newFixture()
	cls.result = &classifier.Result{Type: classifier.TypeStructured}
	gen.candidate = &sqlagent.CandidateQuery{Text: "SELECT * FROM pharmacies", Valid: true}
	exec.result = &sqlexec.Result{Err: &sqlexec.ExecutionError{Query: "SELECT * FROM pharmacies", Cause: errors.New("store down")}}

	session := store.NewSession("s1", 5)
	_, err := newOrchestrator(cls, sch, gen, exec, ret, syn).ProcessQuery(context.Background(), session, Question{Text: "pharmacies?"})
	if err != nil {
		t.Fatalf("ProcessQuery() should degrade, got error %v", err)
	}
	if syn.gotStructured != "" {
		t.Errorf("structured data should be absent after an execution failure")
	}
}

func TestProcessQueryGenerationErrorPropagates(t *testing.T) {
	cls, sch, gen, exec, ret, syn := newFixture()
	syn.answer = ""
	syn.err = &response.GenerationError{Cause: errors.New("synthesis backend unreachable")}

	session := store.NewSession("s1", 5)
	_, err := newOrchestrator(cls, sch, gen, exec, ret, syn).ProcessQuery(context.Background(), session, Question{Text: "hello"})

	var genErr *response.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("ProcessQuery() error = %v, want GenerationError", err)
	}
	if session.History.Len() != 0 {
		t.Errorf("a failed turn must not be appended to history")
	}
}

func TestProcessQueryAppendsHistory(t *testing.T) {
	cls, sch, gen, exec, ret, syn := newFixture()

	session := store.NewSession("s1", 5)
	if _, err := newOrchestrator(cls, sch, gen, exec, ret, syn).ProcessQuery(context.Background(), session, Question{Text: "first question"}); err != nil {
		t.Fatalf("ProcessQuery() error = %v", err)
	}

	if session.History.Len() != 1 {
		t.Fatalf("history length = %d, want 1", session.History.Len())
	}
	turn := session.History.Turns()[0]
	if turn.Question != "first question" || turn.Answer != "the answer" {
		t.Errorf("stored turn = %+v", turn)
	}

	// The second turn must see the first one rendered into its prompt.
	if _, err := newOrchestrator(cls, sch, gen, exec, ret, syn).ProcessQuery(context.Background(), session, Question{Text: "second question"}); err != nil {
		t.Fatalf("ProcessQuery() error = %v", err)
	}
	if !strings.Contains(syn.gotHistory, "first question") {
		t.Errorf("synthesizer history missing previous turn: %q", syn.gotHistory)
	}
}
