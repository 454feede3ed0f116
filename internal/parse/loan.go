package parse

import (
	"context"
	"regexp"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

var loanPattern = regexp.MustCompile(`(?i)\bemi\b|loan installment|loan repayment`)

// LoanParser recognizes EMI/loan-installment debit alert emails.
type LoanParser struct{}

func (p *LoanParser) CanParse(email domain.RawEmail) bool {
	text := email.Subject + " " + email.BodyText
	return loanPattern.MatchString(text)
}

func (p *LoanParser) Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error) {
	text := email.Subject + "\n" + email.BodyText
	amount, ok := extractAmount(text)
	if !ok {
		return nil, nil
	}
	merchant := extractMerchant(text)
	account := extractMaskedAccount(text)
	bank := DetectBank(email.From, email.Subject, email.BodyText)
	reference := extractReference(text)

	tx := buildTransaction(email, amount, domain.TypeLoan, merchant, account, bank, reference)
	return []domain.Transaction{tx}, nil
}
