package parse

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/llm"
)

// DefaultBodyTruncationLimit matches spec.md §4.5's default.
const DefaultBodyTruncationLimit = 8000

var validTypes = map[domain.TransactionType]bool{
	domain.TypeUPI:          true,
	domain.TypeCreditCard:   true,
	domain.TypeBankTransfer: true,
	domain.TypeSIP:          true,
	domain.TypeLoan:         true,
}

type aiTransaction struct {
	Amount      any     `json:"amount"`
	Direction   string  `json:"direction"`
	Type        string  `json:"type"`
	Merchant    string  `json:"merchant"`
	Account     string  `json:"account"`
	Bank        string  `json:"bank"`
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Confidence  float64 `json:"confidence"`
}

type aiResponse struct {
	Transactions []aiTransaction `json:"transactions"`
}

// AIParser is the fallback tier: it always claims an email (CanParse
// always true) and degrades to an empty result rather than erroring
// (spec.md §4.5, §7).
type AIParser struct {
	Gateway             *llm.Gateway
	BodyTruncationLimit int
}

func NewAIParser(gateway *llm.Gateway, bodyTruncationLimit int) *AIParser {
	if bodyTruncationLimit <= 0 {
		bodyTruncationLimit = DefaultBodyTruncationLimit
	}
	return &AIParser{Gateway: gateway, BodyTruncationLimit: bodyTruncationLimit}
}

func (p *AIParser) CanParse(email domain.RawEmail) bool { return true }

func (p *AIParser) Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error) {
	body := email.BodyText
	if len(body) > p.BodyTruncationLimit {
		body = body[:p.BodyTruncationLimit]
	}

	prompt := buildAIParsePrompt(email, body)
	resp := llm.RunJSON[aiResponse](ctx, p.Gateway, prompt)
	if resp == nil {
		return nil, nil
	}

	txs := make([]domain.Transaction, 0, len(resp.Transactions))
	for _, raw := range resp.Transactions {
		tx, ok := coerceAITransaction(email, raw)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func coerceAITransaction(email domain.RawEmail, raw aiTransaction) (domain.Transaction, bool) {
	amount, ok := coerceAmount(raw.Amount)
	if !ok {
		return domain.Transaction{}, false
	}

	direction := domain.Debit
	if domain.Direction(raw.Direction) == domain.Credit {
		direction = domain.Credit
	}

	txType := domain.TypeBankTransfer
	if validTypes[domain.TransactionType(raw.Type)] {
		txType = domain.TransactionType(raw.Type)
	}

	confidence := raw.Confidence
	if confidence == 0 {
		confidence = 0.5
	}
	confidence = math.Max(0, math.Min(1, confidence))

	date := email.Date
	if raw.Date != "" {
		if t, err := time.Parse(time.RFC3339, raw.Date); err == nil {
			date = t
		} else if t, err := time.Parse("2006-01-02", raw.Date); err == nil {
			date = t
		}
	}

	now := time.Now().UTC()
	return domain.Transaction{
		ID:             uuid.NewString(),
		EmailMessageID: email.MessageID,
		Date:           date,
		Amount:         amount,
		Currency:       "INR",
		Direction:      direction,
		Type:           txType,
		Merchant:       raw.Merchant,
		Account:        raw.Account,
		Bank:           raw.Bank,
		Reference:      raw.Reference,
		Description:    raw.Description,
		Source:         domain.SourceAI,
		Confidence:     &confidence,
		NeedsReview:    domain.NeedsReviewForConfidence(domain.SourceAI, confidence),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, true
}

func coerceAmount(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if val <= 0 || math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	case string:
		amount, err := NormalizeAmount(val)
		if err != nil {
			return 0, false
		}
		return amount, true
	default:
		return 0, false
	}
}

func buildAIParsePrompt(email domain.RawEmail, body string) string {
	return "Extract every financial transaction described in this email into JSON.\n" +
		"Respond with exactly: {\"transactions\": [{\"amount\": number, \"direction\": \"debit\"|\"credit\", " +
		"\"type\": \"upi\"|\"credit_card\"|\"bank_transfer\"|\"sip\"|\"loan\", \"merchant\": string, " +
		"\"account\": string, \"bank\": string, \"reference\": string, \"description\": string, " +
		"\"date\": string, \"confidence\": number}]}\n\n" +
		"Subject: " + email.Subject + "\n" +
		"From: " + email.From + "\n" +
		"Date: " + email.Date.Format(time.RFC3339) + "\n" +
		"Body:\n" + body
}
