package parse

import (
	"context"
	"regexp"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

var upiPattern = regexp.MustCompile(`(?i)\bupi\b|unified payments interface|\bvpa\b`)

// UPIParser recognizes UPI debit/credit alert emails.
type UPIParser struct{}

func (p *UPIParser) CanParse(email domain.RawEmail) bool {
	text := email.Subject + " " + email.BodyText
	return upiPattern.MatchString(text)
}

func (p *UPIParser) Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error) {
	text := email.Subject + "\n" + email.BodyText
	amount, ok := extractAmount(text)
	if !ok {
		return nil, nil
	}
	merchant := extractMerchant(text)
	account := extractMaskedAccount(text)
	bank := DetectBank(email.From, email.Subject, email.BodyText)
	reference := extractReference(text)

	tx := buildTransaction(email, amount, domain.TypeUPI, merchant, account, bank, reference)
	return []domain.Transaction{tx}, nil
}
