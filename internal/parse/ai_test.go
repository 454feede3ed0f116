package parse

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/llm"
)

type fakeRunner struct {
	stdout string
	exit   int
}

func (f *fakeRunner) Run(ctx context.Context, args []string) (int, string, string, error) {
	return f.exit, f.stdout, "", nil
}

func newTestGateway(stdout string) *llm.Gateway {
	return llm.New("fake-bin", &fakeRunner{stdout: stdout}, zerolog.Nop())
}

// TestAIParser_MultiTransactionEmail is scenario S4: a single email
// yields N > 1 transactions sharing email_message_id.
func TestAIParser_MultiTransactionEmail(t *testing.T) {
	gateway := newTestGateway(`{"transactions": [
		{"amount": 100, "direction": "debit", "type": "upi", "merchant": "Swiggy", "confidence": 0.9},
		{"amount": 250, "direction": "debit", "type": "upi", "merchant": "Zomato", "confidence": 0.85}
	]}`)
	p := NewAIParser(gateway, 0)

	email := domain.RawEmail{MessageID: "multi-1", Subject: "Weekly summary", BodyText: "two orders today"}
	txs, err := p.Parse(context.Background(), email)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	for _, tx := range txs {
		assert.Equal(t, "multi-1", tx.EmailMessageID)
		assert.Equal(t, domain.SourceAI, tx.Source)
	}
	assert.NotEqual(t, txs[0].Merchant, txs[1].Merchant)
}

// TestAIParser_LowConfidenceNeedsReview is scenario S2.
func TestAIParser_LowConfidenceNeedsReview(t *testing.T) {
	gateway := newTestGateway(`{"transactions": [
		{"amount": 500, "direction": "debit", "type": "bank_transfer", "merchant": "Unknown Corp", "confidence": 0.4}
	]}`)
	p := NewAIParser(gateway, 0)

	txs, err := p.Parse(context.Background(), domain.RawEmail{MessageID: "m1"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].NeedsReview)
	require.NotNil(t, txs[0].Confidence)
	assert.Equal(t, 0.4, *txs[0].Confidence)
}

func TestAIParser_HighConfidenceDoesNotNeedReview(t *testing.T) {
	gateway := newTestGateway(`{"transactions": [
		{"amount": 500, "direction": "credit", "type": "upi", "merchant": "Employer", "confidence": 0.95}
	]}`)
	p := NewAIParser(gateway, 0)

	txs, err := p.Parse(context.Background(), domain.RawEmail{MessageID: "m1"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.False(t, txs[0].NeedsReview)
	assert.Equal(t, domain.Credit, txs[0].Direction)
}

func TestAIParser_GatewayUnavailable_ReturnsNilNotError(t *testing.T) {
	p := NewAIParser(newTestGateway(""), 0)
	txs, err := p.Parse(context.Background(), domain.RawEmail{MessageID: "m1"})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestAIParser_InvalidDirectionDefaultsToDebit(t *testing.T) {
	gateway := newTestGateway(`{"transactions": [
		{"amount": 100, "direction": "sideways", "type": "bogus", "merchant": "X", "confidence": 0.8}
	]}`)
	p := NewAIParser(gateway, 0)

	txs, err := p.Parse(context.Background(), domain.RawEmail{MessageID: "m1"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.Debit, txs[0].Direction)
	assert.Equal(t, domain.TypeBankTransfer, txs[0].Type)
}
