package parse

import (
	"time"

	"github.com/google/uuid"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// buildTransaction assembles the fields every regex parser sets
// identically: source=regex, needs_review=false, a fresh id.
func buildTransaction(email domain.RawEmail, amount float64, txType domain.TransactionType, merchant, account, bank, reference string) domain.Transaction {
	now := time.Now().UTC()
	text := email.Subject + " " + email.BodyText
	return domain.Transaction{
		ID:             uuid.NewString(),
		EmailMessageID: email.MessageID,
		Date:           email.Date,
		Amount:         amount,
		Currency:       "INR",
		Direction:      DetectDirection(text),
		Type:           txType,
		Merchant:       merchant,
		Account:        account,
		Bank:           bank,
		Reference:      reference,
		Source:         domain.SourceRegex,
		NeedsReview:    false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
