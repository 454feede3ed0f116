package parse

import (
	"context"
	"regexp"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

var sipPattern = regexp.MustCompile(`(?i)\bsip\b|systematic investment plan|mutual fund installment`)

// SIPParser recognizes systematic-investment-plan debit alert emails.
type SIPParser struct{}

func (p *SIPParser) CanParse(email domain.RawEmail) bool {
	text := email.Subject + " " + email.BodyText
	return sipPattern.MatchString(text)
}

func (p *SIPParser) Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error) {
	text := email.Subject + "\n" + email.BodyText
	amount, ok := extractAmount(text)
	if !ok {
		return nil, nil
	}
	merchant := extractMerchant(text)
	account := extractMaskedAccount(text)
	bank := DetectBank(email.From, email.Subject, email.BodyText)
	reference := extractReference(text)

	tx := buildTransaction(email, amount, domain.TypeSIP, merchant, account, bank, reference)
	return []domain.Transaction{tx}, nil
}
