package ingest

import (
	"fmt"
	"strings"
	"time"
)

// BuildQuery constructs the provider search query from the configured
// sender and subject-keyword allow-lists, "OR within each list, AND
// across lists" (spec.md §4.4), optionally narrowed by an after: date.
// Either list may be empty; an empty list contributes no clause.
func BuildQuery(senders, subjectKeywords []string, after *time.Time) string {
	var clauses []string

	if c := orClause("from", senders); c != "" {
		clauses = append(clauses, c)
	}
	if c := orClause("subject", subjectKeywords); c != "" {
		clauses = append(clauses, c)
	}
	if after != nil {
		clauses = append(clauses, fmt.Sprintf("after:%s", after.Format("2006/01/02")))
	}

	return strings.Join(clauses, " ")
}

func orClause(field string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%s:%s", field, v)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
