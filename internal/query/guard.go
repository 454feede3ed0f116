package query

import (
	"errors"
	"regexp"
	"strings"
)

// ErrWriteRejected is returned when the generated statement fails the
// read-only guard (spec.md §4.8 step 2). This is a hard safety boundary:
// the statement is never executed.
var ErrWriteRejected = errors.New("query: statement rejected by read-only guard")

var blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
var lineComment = regexp.MustCompile(`--[^\n]*`)

var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
	"REPLACE", "ATTACH", "DETACH", "PRAGMA", "REINDEX", "VACUUM",
}

var forbiddenPatterns = buildForbiddenPatterns()

func buildForbiddenPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(forbiddenKeywords))
	for i, kw := range forbiddenKeywords {
		patterns[i] = regexp.MustCompile(`(?i)\b` + kw + `\b`)
	}
	return patterns
}

// Guard enforces the read-only boundary: the statement must begin with
// SELECT or WITH after stripping comments, and must contain no
// word-boundaried write keyword anywhere.
func Guard(statement string) error {
	stripped := blockComment.ReplaceAllString(statement, "")
	stripped = lineComment.ReplaceAllString(stripped, "")
	stripped = strings.TrimSpace(stripped)

	upper := strings.ToUpper(stripped)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return ErrWriteRejected
	}

	for _, p := range forbiddenPatterns {
		if p.MatchString(stripped) {
			return ErrWriteRejected
		}
	}
	return nil
}
