// Package query implements the NL Query Engine (C8): question -> SQL ->
// read-only-guarded execution -> natural-language summary.
package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/chandrameenamohan/expense-tracker/internal/llm"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// CannotAnswerSentinel is the model's documented escape hatch when no
// SQL statement can answer the question (spec.md §4.8 step 1).
const CannotAnswerSentinel = "SELECT 'CANNOT_ANSWER' as error;"

const maxDisplayRows = 100

// Response is the caller-facing result of one NL query.
type Response struct {
	Answer string
	SQL    string
	Rows   *ports.QueryResult
	Error  string
}

// Engine answers natural-language questions about stored transactions.
type Engine struct {
	store   ports.Store
	gateway *llm.Gateway
}

// New constructs an Engine.
func New(store ports.Store, gateway *llm.Gateway) *Engine {
	return &Engine{store: store, gateway: gateway}
}

// Ask runs the full four-step flow from spec.md §4.8.
func (e *Engine) Ask(ctx context.Context, question string) Response {
	sqlResult := e.gateway.Run(ctx, buildSQLGenerationPrompt(question), llm.FormatText)
	if !sqlResult.OK {
		return Response{Error: "could not generate query"}
	}

	statement := stripFences(sqlResult.Output)
	if strings.TrimSpace(statement) == CannotAnswerSentinel {
		return Response{Answer: "I couldn't turn that into a query over your transactions.", SQL: statement}
	}

	if err := Guard(statement); err != nil {
		return Response{SQL: statement, Error: err.Error()}
	}

	rows, err := e.store.QueryRows(ctx, statement)
	if err != nil {
		return Response{SQL: statement, Error: err.Error()}
	}

	table := formatTable(rows, maxDisplayRows)
	interpretResult := e.gateway.Run(ctx, buildInterpretationPrompt(question, table), llm.FormatText)
	answer := table
	if interpretResult.OK && strings.TrimSpace(interpretResult.Output) != "" {
		answer = strings.TrimSpace(interpretResult.Output)
	}

	return Response{Answer: answer, SQL: statement, Rows: rows}
}

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\\s*\\n?(.*?)\\n?```\\s*$")

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// formatTable renders the first up-to-limit rows as a pipe-delimited
// table (spec.md §4.8 step 4).
func formatTable(result *ports.QueryResult, limit int) string {
	if result == nil || len(result.Columns) == 0 {
		return "(no rows)"
	}
	var b strings.Builder
	b.WriteString(strings.Join(result.Columns, " | "))
	b.WriteString("\n")

	rows := result.Rows
	truncated := false
	if len(rows) > limit {
		rows = rows[:limit]
		truncated = true
	}
	for _, row := range rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	if truncated {
		fmt.Fprintf(&b, "... (%d more rows)\n", len(result.Rows)-limit)
	}
	return b.String()
}

func buildSQLGenerationPrompt(question string) string {
	return schemaContext + "\n\nQuestion: " + question + "\n\n" +
		"Respond with a single SELECT or WITH statement answering the question, " +
		"or exactly `" + CannotAnswerSentinel + "` if it cannot be answered from this schema. " +
		"No other text.\n"
}

func buildInterpretationPrompt(question, table string) string {
	return "The user asked: " + question + "\n\n" +
		"Here is the query result as a pipe-delimited table:\n" + table + "\n\n" +
		"Write a short, direct natural-language answer to the question using this data.\n"
}

const schemaContext = `Schema (SQLite, dates as ISO 8601 strings):

transactions(
  id TEXT PRIMARY KEY,
  email_message_id TEXT,
  date TEXT,               -- ISO 8601
  amount REAL,              -- always positive, sign carried by direction
  currency TEXT,
  direction TEXT,           -- 'debit' or 'credit'
  type TEXT,                -- 'upi', 'credit_card', 'bank_transfer', 'sip', 'loan'
  merchant TEXT,
  account TEXT,
  bank TEXT,
  reference TEXT,
  description TEXT,
  category TEXT,            -- one of the closed category set, or NULL
  source TEXT,               -- 'regex' or 'ai'
  confidence REAL,
  needs_review INTEGER,      -- 0 or 1
  created_at TEXT,
  updated_at TEXT
)

category_corrections(id, merchant, description, original_category, corrected_category, created_at)
duplicate_groups(id, kept_transaction_id, duplicate_transaction_id, reason, confidence, created_at)
`
