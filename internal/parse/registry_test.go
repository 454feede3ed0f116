package parse

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

type stubParser struct {
	canParse bool
	result   []domain.Transaction
	err      error
}

func (s *stubParser) CanParse(email domain.RawEmail) bool { return s.canParse }
func (s *stubParser) Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error) {
	return s.result, s.err
}

// TestRegistry_EscalatesWhenClaimingParserYieldsNothing is scenario S1:
// a parser that recognizes the format but fails to extract must
// escalate rather than silently discard the email.
func TestRegistry_EscalatesWhenClaimingParserYieldsNothing(t *testing.T) {
	fallbackResult := []domain.Transaction{{ID: "from-fallback"}}
	registry := &Registry{
		parsers:  []Parser{&stubParser{canParse: true, result: nil}},
		fallback: &stubParser{canParse: true, result: fallbackResult},
		logger:   zerolog.Nop(),
	}

	got := registry.Parse(context.Background(), domain.RawEmail{MessageID: "m1"})
	require.Len(t, got, 1)
	assert.Equal(t, "from-fallback", got[0].ID)
}

func TestRegistry_FirstSuccessfulParserWinsWithoutFallback(t *testing.T) {
	want := []domain.Transaction{{ID: "from-first"}}
	registry := &Registry{
		parsers: []Parser{
			&stubParser{canParse: true, result: want},
			&stubParser{canParse: true, result: []domain.Transaction{{ID: "should-not-run"}}},
		},
		logger: zerolog.Nop(),
	}

	got := registry.Parse(context.Background(), domain.RawEmail{MessageID: "m1"})
	require.Len(t, got, 1)
	assert.Equal(t, "from-first", got[0].ID)
}

func TestRegistry_NoParserClaimsAndNoFallback_YieldsEmpty(t *testing.T) {
	registry := &Registry{
		parsers: []Parser{&stubParser{canParse: false}},
		logger:  zerolog.Nop(),
	}

	got := registry.Parse(context.Background(), domain.RawEmail{MessageID: "m1"})
	assert.Empty(t, got)
}

func TestRegistry_ParserPanicIsContained(t *testing.T) {
	panicking := &panickingParser{}
	fallbackResult := []domain.Transaction{{ID: "from-fallback"}}
	registry := &Registry{
		parsers:  []Parser{panicking},
		fallback: &stubParser{canParse: true, result: fallbackResult},
		logger:   zerolog.Nop(),
	}

	got := registry.Parse(context.Background(), domain.RawEmail{MessageID: "m1"})
	require.Len(t, got, 1)
	assert.Equal(t, "from-fallback", got[0].ID)
}

type panickingParser struct{}

func (p *panickingParser) CanParse(email domain.RawEmail) bool { return true }
func (p *panickingParser) Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error) {
	panic("boom")
}
