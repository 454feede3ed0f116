// Package parse implements the Parsing Pipeline (C5): an ordered chain
// of format-specific regex parsers, an optional AI fallback, and the
// amount/direction/bank normalization they share.
package parse

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// Parser is the capability set every tier of the pipeline implements
// (spec.md §4.5).
type Parser interface {
	// CanParse reports whether this parser recognizes the email's
	// format, without fully extracting it.
	CanParse(email domain.RawEmail) bool
	// Parse extracts zero or more transactions. A nil or empty slice
	// signals "I recognized this but could not extract it" and the
	// registry must continue to the next candidate (rule 3).
	Parse(ctx context.Context, email domain.RawEmail) ([]domain.Transaction, error)
}

// Registry holds an ordered list of deterministic parsers and an
// optional AI fallback, and implements the dispatch rules from spec.md
// §4.5.
type Registry struct {
	parsers  []Parser
	fallback Parser
	logger   zerolog.Logger
}

// NewRegistry builds the default five-parser + AI-fallback pipeline
// (SPEC_FULL.md §9 resolves the open question in favor of this as the
// default wiring).
func NewRegistry(fallback Parser, logger zerolog.Logger) *Registry {
	return &Registry{
		parsers: []Parser{
			&UPIParser{},
			&CreditCardParser{},
			&BankTransferParser{},
			&SIPParser{},
			&LoanParser{},
		},
		fallback: fallback,
		logger:   logger,
	}
}

// NewAIOnlyRegistry builds the alternate all-AI wiring: no deterministic
// parsers, every email routes straight to the fallback (SPEC_FULL.md §9).
func NewAIOnlyRegistry(fallback Parser, logger zerolog.Logger) *Registry {
	return &Registry{fallback: fallback, logger: logger}
}

// Parse implements the dispatch rules: iterate ordered parsers, escalate
// past any that claim the email but return nothing, then fall back to
// AI, and finally yield empty ("unparseable") rather than erroring.
func (r *Registry) Parse(ctx context.Context, email domain.RawEmail) []domain.Transaction {
	for _, p := range r.parsers {
		if !p.CanParse(email) {
			continue
		}
		txs, err := r.parse(ctx, p, email)
		if err != nil {
			r.logger.Warn().Err(err).Str("message_id", email.MessageID).Msg("parse: parser errored, escalating")
			continue
		}
		if len(txs) > 0 {
			return txs
		}
	}

	if r.fallback != nil {
		txs, err := r.parse(ctx, r.fallback, email)
		if err != nil {
			r.logger.Warn().Err(err).Str("message_id", email.MessageID).Msg("parse: fallback errored")
			return nil
		}
		return txs
	}

	r.logger.Debug().Str("message_id", email.MessageID).Msg("parse: unparseable")
	return nil
}

// parse contains a parser failure to this one email: a panic or error
// from a single parser must not abort the pipeline (spec.md §7 "Parser
// exception").
func (r *Registry) parse(ctx context.Context, p Parser, email domain.RawEmail) (txs []domain.Transaction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errParserPanic(rec)
		}
	}()
	return p.Parse(ctx, email)
}
