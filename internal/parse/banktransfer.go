package parse

import (
	"context"
	"regexp"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

var bankTransferPattern = regexp.MustCompile(`(?i)neft|imps|rtgs|fund transfer|bank transfer`)

// BankTransferParser recognizes NEFT/IMPS/RTGS alert emails.
type BankTransferParser struct{}

func (p *BankTransferParser) CanParse(email domain.RawEmail) bool {
	text := email.Subject + " " + email.BodyText
	return bankTransferPattern.MatchString(text)
}

func (p *BankTransferParser) Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error) {
	text := email.Subject + "\n" + email.BodyText
	amount, ok := extractAmount(text)
	if !ok {
		return nil, nil
	}
	merchant := extractMerchant(text)
	account := extractMaskedAccount(text)
	bank := DetectBank(email.From, email.Subject, email.BodyText)
	reference := extractReference(text)

	tx := buildTransaction(email, amount, domain.TypeBankTransfer, merchant, account, bank, reference)
	return []domain.Transaction{tx}, nil
}
