package query

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandrameenamohan/expense-tracker/internal/llm"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

func newGateway(runner ports.ProcessRunner) *llm.Gateway {
	return llm.New("fake-bin", runner, zerolog.Nop())
}

type sequencedRunner struct {
	responses []string
	calls     int
}

func (r *sequencedRunner) Run(ctx context.Context, args []string) (int, string, string, error) {
	i := r.calls
	r.calls++
	if i >= len(r.responses) {
		return 0, "", "", nil
	}
	return 0, r.responses[i], "", nil
}

type fakeQueryStore struct {
	ports.Store
	result *ports.QueryResult
	err    error
}

func (f *fakeQueryStore) QueryRows(ctx context.Context, sql string) (*ports.QueryResult, error) {
	return f.result, f.err
}

func TestEngine_Ask_HappyPath(t *testing.T) {
	runner := &sequencedRunner{responses: []string{
		"SELECT merchant, amount FROM transactions WHERE category = 'Food'",
		"You spent the most at Swiggy this month.",
	}}
	gw := newGateway(runner)
	store := &fakeQueryStore{result: &ports.QueryResult{
		Columns: []string{"merchant", "amount"},
		Rows:    [][]string{{"Swiggy", "450"}},
	}}
	e := New(store, gw)

	resp := e.Ask(context.Background(), "where did I spend the most on food?")
	require.Empty(t, resp.Error)
	assert.Equal(t, "You spent the most at Swiggy this month.", resp.Answer)
	assert.Contains(t, resp.SQL, "SELECT")
}

func TestEngine_Ask_WriteStatementRejected(t *testing.T) {
	runner := &sequencedRunner{responses: []string{"DELETE FROM transactions"}}
	gw := newGateway(runner)
	e := New(&fakeQueryStore{}, gw)

	resp := e.Ask(context.Background(), "delete everything")
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, resp.Answer)
}

func TestEngine_Ask_CannotAnswerSentinel(t *testing.T) {
	runner := &sequencedRunner{responses: []string{CannotAnswerSentinel}}
	gw := newGateway(runner)
	e := New(&fakeQueryStore{}, gw)

	resp := e.Ask(context.Background(), "what is the meaning of life")
	assert.NotEmpty(t, resp.Answer)
	require.Empty(t, resp.Error)
}

func TestEngine_Ask_InterpretationFailureFallsBackToRawTable(t *testing.T) {
	runner := &sequencedRunner{responses: []string{
		"SELECT merchant FROM transactions",
		"", // interpretation call returns empty
	}}
	gw := newGateway(runner)
	store := &fakeQueryStore{result: &ports.QueryResult{
		Columns: []string{"merchant"},
		Rows:    [][]string{{"Swiggy"}},
	}}
	e := New(store, gw)

	resp := e.Ask(context.Background(), "list merchants")
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.Answer, "merchant")
	assert.Contains(t, resp.Answer, "Swiggy")
}

func TestEngine_Ask_QueryExecutionErrorPropagated(t *testing.T) {
	runner := &sequencedRunner{responses: []string{"SELECT * FROM transactions"}}
	gw := newGateway(runner)
	store := &fakeQueryStore{err: assertQueryErr{}}
	e := New(store, gw)

	resp := e.Ask(context.Background(), "anything")
	assert.NotEmpty(t, resp.Error)
}

type assertQueryErr struct{}

func (assertQueryErr) Error() string { return "simulated query failure" }
