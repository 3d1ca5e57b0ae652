package rag

import (
	"context"
	"log"

	"afcon-assistant-be/pkg/rag/classifier"
	"afcon-assistant-be/pkg/rag/history"
	"afcon-assistant-be/pkg/rag/schema"
	"afcon-assistant-be/pkg/rag/sqlagent"
	"afcon-assistant-be/pkg/rag/sqlexec"
	"afcon-assistant-be/pkg/store"
)

// Question is one user turn entering the pipeline.
type Question struct {
	Text     string
	Language string
}

// AnswerEnvelope is what the pipeline hands back to the transport layer: the
// answer text plus the trace of decisions that produced it.
type AnswerEnvelope struct {
	Answer          string
	ThinkingProcess []string
}

// QueryClassifier decides which evidence path a question takes.
type QueryClassifier interface {
	Classify(ctx context.Context, question, history string) (*classifier.Result, error)
}

// SchemaProvider describes the relational store for query generation.
type SchemaProvider interface {
	Describe(ctx context.Context) (*schema.Schema, error)
}

// QueryGenerator turns a question into a read-only SQL candidate.
type QueryGenerator interface {
	GenerateQuery(ctx context.Context, question string, sch *schema.Schema, history string) (*sqlagent.CandidateQuery, error)
}

// QueryExecutor runs a validated candidate against the relational store.
type QueryExecutor interface {
	Execute(ctx context.Context, query string) *sqlexec.Result
}

// FragmentRetriever returns semantically relevant fragments for a question.
type FragmentRetriever interface {
	Retrieve(ctx context.Context, question string) ([]store.Fragment, error)
}

// AnswerSynthesizer produces the final answer from the gathered evidence.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question, language, structuredData string, fragments []store.Fragment, history string) (string, error)
}

// Orchestrator drives one question through classification, the structured
// path, semantic retrieval and synthesis. Every stage except synthesis
// degrades on failure instead of failing the conversation.
type Orchestrator struct {
	classifier  QueryClassifier
	schemas     SchemaProvider
	sqlAgent    QueryGenerator
	executor    QueryExecutor
	retriever   FragmentRetriever
	synthesizer AnswerSynthesizer
	logger      *log.Logger
}

func NewOrchestrator(
	cls QueryClassifier,
	schemas SchemaProvider,
	agent QueryGenerator,
	executor QueryExecutor,
	retriever FragmentRetriever,
	synthesizer AnswerSynthesizer,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier:  cls,
		schemas:     schemas,
		sqlAgent:    agent,
		executor:    executor,
		retriever:   retriever,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// ProcessQuery answers one question within a session. The session's history
// window is read before the turn and appended after a successful answer, so a
// failed turn leaves the history untouched.
func (o *Orchestrator) ProcessQuery(ctx context.Context, session *store.Session, question Question) (*AnswerEnvelope, error) {
	trace := []string{"Received question"}

	convHistory := ""
	if session.History.Len() > 0 {
		convHistory = session.History.Render()
	}

	queryType := classifier.TypeGeneral
	clsResult, err := o.classifier.Classify(ctx, question.Text, convHistory)
	if err != nil {
		o.logger.Printf("[ORCHESTRATOR] Classification failed, defaulting to general: %v", err)
		trace = append(trace, "Classification unavailable, treating question as general")
	} else {
		queryType = clsResult.Type
		trace = append(trace, clsResult.Thinking...)
	}

	structuredData := ""
	if queryType == classifier.TypeStructured {
		structuredData, trace = o.runStructuredPath(ctx, question.Text, convHistory, trace)
	}

	// Semantic retrieval runs for every question regardless of
	// classification, so structured answers still pick up document context.
	fragments, err := o.retriever.Retrieve(ctx, question.Text)
	if err != nil {
		o.logger.Printf("[ORCHESTRATOR] Retrieval failed, continuing without fragments: %v", err)
		trace = append(trace, "Document retrieval unavailable")
		fragments = nil
	} else {
		trace = append(trace, "Retrieved relevant document fragments")
	}

	answer, err := o.synthesizer.Synthesize(ctx, question.Text, question.Language, structuredData, fragments, convHistory)
	if err != nil {
		return nil, err
	}
	trace = append(trace, "Generated final answer")

	session.History.Append(history.Turn{Question: question.Text, Answer: answer})
	session.LastQuery = question.Text

	return &AnswerEnvelope{Answer: answer, ThinkingProcess: trace}, nil
}

func (o *Orchestrator) runStructuredPath(ctx context.Context, question, convHistory string, trace []string) (string, []string) {
	sch, err := o.schemas.Describe(ctx)
	if err != nil {
		o.logger.Printf("[ORCHESTRATOR] Schema introspection failed: %v", err)
		return "", append(trace, "Database schema unavailable, skipping structured lookup")
	}

	candidate, err := o.sqlAgent.GenerateQuery(ctx, question, sch, convHistory)
	if err != nil {
		o.logger.Printf("[ORCHESTRATOR] Query generation failed: %v", err)
		return "", append(trace, "Could not generate a database query")
	}
	trace = append(trace, candidate.Thinking...)

	if !candidate.Valid {
		return "", trace
	}

	result := o.executor.Execute(ctx, candidate.Text)
	if result.Err != nil {
		return "", append(trace, "Database query failed, answering without structured data")
	}
	if len(result.Rows) == 0 {
		return "", append(trace, "Database query returned no rows")
	}
	trace = append(trace, "Fetched structured data from the database")
	return result.Render(), trace
}
