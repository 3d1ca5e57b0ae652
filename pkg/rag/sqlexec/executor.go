package sqlexec

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// ExecutionError records a query that the database rejected. It is carried
// inside the Result rather than returned, so a failed query degrades into an
// answer without structured data instead of failing the conversation.
type ExecutionError struct {
	Query string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Result holds the rows a candidate query produced, or the error that
// prevented it from producing any.
type Result struct {
	Columns []string
	Rows    []map[string]any
	Err     *ExecutionError
}

// Empty reports whether the result carries no usable rows.
func (r *Result) Empty() bool {
	return r == nil || r.Err != nil || len(r.Rows) == 0
}

// Render formats the rows as "col: value" lines per row, the shape the answer
// synthesizer embeds under its database section.
func (r *Result) Render() string {
	if r.Empty() {
		return ""
	}
	var sb strings.Builder
	for i, row := range r.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, col := range r.Columns {
			sb.WriteString(fmt.Sprintf("%s: %v\n", col, row[col]))
		}
	}
	return sb.String()
}

// Executor runs validated candidate queries against the relational store
// through the shared gorm connection pool.
type Executor struct {
	db     *gorm.DB
	logger *log.Logger
}

func NewExecutor(db *gorm.DB, logger *log.Logger) *Executor {
	return &Executor{db: db, logger: logger}
}

// Execute runs the query and captures any failure inside the Result.
func (e *Executor) Execute(ctx context.Context, query string) *Result {
	rows, err := e.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		e.logger.Printf("[SQL-EXEC] Query failed: %v", err)
		return &Result{Err: &ExecutionError{Query: query, Cause: err}}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return &Result{Err: &ExecutionError{Query: query, Cause: err}}
	}

	result := &Result{Columns: columns}
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return &Result{Err: &ExecutionError{Query: query, Cause: err}}
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return &Result{Err: &ExecutionError{Query: query, Cause: err}}
	}

	return result
}
