package parse

import (
	"context"
	"regexp"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

var creditCardPattern = regexp.MustCompile(`(?i)credit card|card ending|\bcc\b transaction`)

// CreditCardParser recognizes credit-card transaction alert emails.
type CreditCardParser struct{}

func (p *CreditCardParser) CanParse(email domain.RawEmail) bool {
	text := email.Subject + " " + email.BodyText
	return creditCardPattern.MatchString(text)
}

func (p *CreditCardParser) Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error) {
	text := email.Subject + "\n" + email.BodyText
	amount, ok := extractAmount(text)
	if !ok {
		return nil, nil
	}
	merchant := extractMerchant(text)
	account := extractMaskedAccount(text)
	bank := DetectBank(email.From, email.Subject, email.BodyText)
	reference := extractReference(text)

	tx := buildTransaction(email, amount, domain.TypeCreditCard, merchant, account, bank, reference)
	return []domain.Transaction{tx}, nil
}
