package parse

import (
	"regexp"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// creditKeywords are checked before debit keywords: they are the more
// specific signal (spec.md §4.5), so a body mentioning both is resolved
// in favor of credit only when a credit keyword actually matches.
var creditKeywordPattern = regexp.MustCompile(`(?i)\b(credited|credit|deposited|received|refund(?:ed)?)\b`)
var debitKeywordPattern = regexp.MustCompile(`(?i)\b(debited|debit|withdrawn|paid|purchase|spent)\b`)

// DetectDirection is keyword-based, credit-class keywords checked first.
// Debit is the default when neither matches.
func DetectDirection(text string) domain.Direction {
	if creditKeywordPattern.MatchString(text) {
		return domain.Credit
	}
	if debitKeywordPattern.MatchString(text) {
		return domain.Debit
	}
	return domain.Debit
}
