package sqlagent

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"afcon-assistant-be/pkg/llm"
	"afcon-assistant-be/pkg/rag/schema"
)

// InvalidSentinel is what the generation backend is instructed to return when
// no table can answer the question.
const InvalidSentinel = "INVALID"

// CandidateQuery is the agent's output. An invalid candidate must never reach
// the executor.
type CandidateQuery struct {
	Text     string
	Valid    bool
	Thinking []string
}

// QueryGenerationError signals that the generation backend failed while
// producing a candidate query.
type QueryGenerationError struct {
	Cause error
}

func (e *QueryGenerationError) Error() string {
	return fmt.Sprintf("query generation failed: %v", e.Cause)
}

func (e *QueryGenerationError) Unwrap() error {
	return e.Cause
}

// Agent turns a natural-language question plus a schema into a read-only SQL
// candidate. The schema is embedded verbatim in the prompt so the backend
// cannot hallucinate unknown tables; a structural re-validation pass rejects
// whatever slips through anyway.
type Agent struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger

	// DomainTables maps a topic keyword to the table that must be preferred
	// when several tables could answer, e.g. "pharmacy" -> "pharmacies".
	DomainTables map[string]string
}

// DefaultDomainTables is the tie-break mapping for the AFCON 2025 dataset.
func DefaultDomainTables() map[string]string {
	return map[string]string{
		"pharmacy":   "pharmacies",
		"hotel":      "hotels",
		"match":      "match_schedule",
		"restaurant": "restaurants",
		"hospital":   "repartition_des_hopitaux_par_region_et_province_2022",
		"medicament": "ref_des_medicaments_cnops_2014",
	}
}

func NewAgent(llmProvider llm.LLMProvider, logger *log.Logger) *Agent {
	return &Agent{
		llmProvider:  llmProvider,
		logger:       logger,
		DomainTables: DefaultDomainTables(),
	}
}

var (
	fenceRe    = regexp.MustCompile("(?s)```(?:sql)?(.*?)```")
	tableRe    = regexp.MustCompile(`(?i)\bFROM\s+([A-Za-z_][A-Za-z0-9_]*)`)
	joinRe     = regexp.MustCompile(`(?i)\bJOIN\s+([A-Za-z_][A-Za-z0-9_]*)`)
	mutationRe = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|GRANT)\b`)
)

// GenerateQuery produces a candidate query, or an invalid candidate when the
// question matches no table.
func (a *Agent) GenerateQuery(ctx context.Context, question string, sch *schema.Schema, history string) (*CandidateQuery, error) {
	thinking := []string{"Understanding question and context"}

	prompt := a.buildPrompt(question, sch, history)

	response, err := a.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return nil, &QueryGenerationError{Cause: err}
	}

	query := cleanQuery(response)
	thinking = append(thinking, "Detected relevant tables from schema")

	if strings.EqualFold(query, InvalidSentinel) {
		thinking = append(thinking, "No relevant table for this question")
		return &CandidateQuery{Valid: false, Thinking: thinking}, nil
	}

	// The INVALID rule lives in the prompt, but generation backends are not
	// contractually reliable. Re-validate structurally before execution.
	if reason := validateQuery(query, sch); reason != "" {
		a.logger.Printf("[SQL-AGENT] Rejected generated query (%s): %s", reason, query)
		thinking = append(thinking, fmt.Sprintf("Rejected generated query: %s", reason))
		return &CandidateQuery{Valid: false, Thinking: thinking}, nil
	}

	thinking = append(thinking, fmt.Sprintf("Generated query: %s", query))
	return &CandidateQuery{Text: query, Valid: true, Thinking: thinking}, nil
}

func (a *Agent) buildPrompt(question string, sch *schema.Schema, history string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a SQL expert. Given the database schema:\n\n")
	prompt.WriteString(sch.Render())
	prompt.WriteString("\n\nGenerate a SQL query for: ")
	prompt.WriteString(question)
	prompt.WriteString("\n\nInstructions:\n")
	prompt.WriteString("1. First, identify which table(s) are relevant to the question\n")
	prompt.WriteString("2. Use exact column names as shown in schema\n")
	prompt.WriteString("3. Return only the raw SQL query without formatting\n")
	prompt.WriteString("4. Use UPPER() for case-insensitive text matching\n")
	prompt.WriteString("5. For questions about:\n")

	// Deterministic tie-break: the most specific domain table always wins
	// over a generic fallback. Sorted for a stable prompt.
	topics := make([]string, 0, len(a.DomainTables))
	for topic := range a.DomainTables {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	for _, topic := range topics {
		prompt.WriteString(fmt.Sprintf("   - %s questions: use the %s table\n", topic, a.DomainTables[topic]))
	}

	prompt.WriteString(fmt.Sprintf("6. Return '%s' if no relevant table exists\n", InvalidSentinel))
	prompt.WriteString("\nExample formats:\n")
	prompt.WriteString("- Pharmacies: SELECT Pharmacie_Name, address FROM pharmacies WHERE UPPER(city) = 'SALE'\n")
	prompt.WriteString("- Hotels: SELECT Hotel_Name, Address FROM hotels WHERE UPPER(City) = 'CASABLANCA'\n")
	prompt.WriteString("- Matches: SELECT * FROM match_schedule WHERE UPPER(City) = 'CASABLANCA'\n")

	if history != "" {
		prompt.WriteString("\nPrevious conversation:\n")
		prompt.WriteString(history)
	}

	return prompt.String()
}

// cleanQuery strips markdown fences and surrounding whitespace from the
// backend's reply.
func cleanQuery(response string) string {
	response = strings.TrimSpace(response)
	if m := fenceRe.FindStringSubmatch(response); m != nil {
		response = m[1]
	}
	return strings.TrimSpace(response)
}

// validateQuery returns a non-empty rejection reason unless the candidate is a
// single read-only SELECT over tables the schema actually contains.
func validateQuery(query string, sch *schema.Schema) string {
	upper := strings.ToUpper(query)
	if !strings.HasPrefix(upper, "SELECT") {
		return "not a SELECT statement"
	}
	if strings.Contains(strings.TrimRight(query, "; \n"), ";") {
		return "multiple statements"
	}
	if mutationRe.MatchString(query) {
		return "contains a mutation keyword"
	}

	tables := tableRe.FindAllStringSubmatch(query, -1)
	tables = append(tables, joinRe.FindAllStringSubmatch(query, -1)...)
	if len(tables) == 0 {
		return "no table reference"
	}
	for _, m := range tables {
		if !sch.HasTable(m[1]) {
			return fmt.Sprintf("unknown table %q", m[1])
		}
	}
	return ""
}
