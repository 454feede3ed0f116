package llm

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner is a canned ports.ProcessRunner for tests.
type fakeRunner struct {
	exitCode int
	stdout   string
	stderr   string
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, args []string) (int, string, string, error) {
	return f.exitCode, f.stdout, f.stderr, f.err
}

type categoryResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantOK  bool
	}{
		{"bare json", `{"category":"Food","confidence":0.9}`, `{"category":"Food","confidence":0.9}`, true},
		{"fenced json", "```json\n{\"category\":\"Food\"}\n```", `{"category":"Food"}`, true},
		{"fenced no lang", "```\n{\"category\":\"Food\"}\n```", `{"category":"Food"}`, true},
		{"envelope", `{"result": "{\"category\":\"Food\"}"}`, `{"category":"Food"}`, true},
		{"empty", "", "", false},
		{"whitespace only", "   \n  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRunJSON_Success(t *testing.T) {
	runner := &fakeRunner{exitCode: 0, stdout: `{"category":"Food","confidence":0.8}`}
	g := New("claude", runner, zerolog.Nop())

	out := RunJSON[categoryResponse](context.Background(), g, "classify this")
	require.NotNil(t, out)
	assert.Equal(t, "Food", out.Category)
	assert.InDelta(t, 0.8, out.Confidence, 0.0001)
}

func TestRunJSON_EnvelopeWrapped(t *testing.T) {
	runner := &fakeRunner{exitCode: 0, stdout: `{"result": "{\"category\":\"Transport\",\"confidence\":0.6}"}`}
	g := New("claude", runner, zerolog.Nop())

	out := RunJSON[categoryResponse](context.Background(), g, "classify this")
	require.NotNil(t, out)
	assert.Equal(t, "Transport", out.Category)
}

func TestRunJSON_NonZeroExit_ReturnsNil(t *testing.T) {
	runner := &fakeRunner{exitCode: 1, stderr: "boom"}
	g := New("claude", runner, zerolog.Nop())

	out := RunJSON[categoryResponse](context.Background(), g, "classify this")
	assert.Nil(t, out)
}

func TestRunJSON_MalformedOutput_ReturnsNil(t *testing.T) {
	runner := &fakeRunner{exitCode: 0, stdout: "not json at all"}
	g := New("claude", runner, zerolog.Nop())

	out := RunJSON[categoryResponse](context.Background(), g, "classify this")
	assert.Nil(t, out)
}

func TestAvailable(t *testing.T) {
	ok := New("claude", &fakeRunner{exitCode: 0}, zerolog.Nop()).Available(context.Background())
	assert.True(t, ok)

	notOK := New("claude", &fakeRunner{exitCode: 0, err: assertErr{}}, zerolog.Nop()).Available(context.Background())
	assert.False(t, notOK)
}

type assertErr struct{}

func (assertErr) Error() string { return "process not found" }
