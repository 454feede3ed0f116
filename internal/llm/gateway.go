// Package llm is the single invocation surface for the external model
// process (C1). Every AI-using component (the parsing fallback, the
// categorizer, the dedup confirmer, the NL query engine) goes through a
// *Gateway rather than shelling out itself, so the envelope-unwrap and
// fence-stripping logic lives in exactly one place.
package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// Format is one of the three output shapes the external model process
// supports via --output-format.
type Format string

const (
	FormatJSON       Format = "json"
	FormatText       Format = "text"
	FormatStreamJSON Format = "stream-json"
)

// Result is the raw outcome of a single invocation, before any
// normalization.
type Result struct {
	OK     bool
	Output string
	Err    error
}

// Gateway wraps an opaque external model subprocess. It owns no state
// beyond its process-runner handle (spec.md §3 "Ownership").
type Gateway struct {
	bin    string
	runner ports.ProcessRunner
	logger zerolog.Logger
}

// New constructs a Gateway invoking bin through runner.
func New(bin string, runner ports.ProcessRunner, logger zerolog.Logger) *Gateway {
	return &Gateway{bin: bin, runner: runner, logger: logger.With().Str("component", "llm").Logger()}
}

// Run invokes the external process in the given format. It never panics
// and never returns a sentinel the caller must unwrap further than
// Result — failures are carried in Result.OK/Err, not a thrown error.
func (g *Gateway) Run(ctx context.Context, prompt string, format Format) Result {
	args := []string{"-p", prompt, "--output-format", string(format)}

	exitCode, stdout, stderr, err := g.runner.Run(ctx, args)
	if err != nil {
		g.logger.Warn().Err(err).Msg("model process failed to start")
		return Result{OK: false, Err: err}
	}
	if exitCode != 0 {
		g.logger.Warn().Int("exit_code", exitCode).Str("stderr", stderr).Msg("model process exited non-zero")
		return Result{OK: false, Err: &ExitError{Code: exitCode, Stderr: stderr}}
	}
	return Result{OK: true, Output: stdout}
}

// ExitError carries a non-zero exit code and captured stderr.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return "model process exited with code " + strconv.Itoa(e.Code) + ": " + e.Stderr
}

// Available is a cheap liveness probe.
func (g *Gateway) Available(ctx context.Context) bool {
	exitCode, _, _, err := g.runner.Run(ctx, []string{"--version"})
	return err == nil && exitCode == 0
}

// RunJSON invokes the gateway in JSON mode and normalizes + unmarshals
// the result into T. Any failure along the chain — process failure,
// fence-stripping mismatch, envelope absence, JSON decode error — yields
// a nil pointer, never a thrown error (spec.md §4.1).
func RunJSON[T any](ctx context.Context, g *Gateway, prompt string) *T {
	res := g.Run(ctx, prompt, FormatJSON)
	if !res.OK {
		return nil
	}
	normalized, ok := Normalize(res.Output)
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(normalized), &v); err != nil {
		g.logger.Debug().Err(err).Str("raw", normalized).Msg("failed to decode model JSON output")
		return nil
	}
	return &v
}

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\\s*\\n?(.*?)\\n?```\\s*$")

// stripFences removes a single fenced code block wrapper, with or
// without a language tag, if the whole string is wrapped in one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// resultEnvelope is the `{ "result": "<string>" }` wrapper some model
// invocations return instead of the bare payload.
type resultEnvelope struct {
	Result *string `json:"result"`
}

// unwrapEnvelope returns the inner payload if s parses as a result
// envelope, otherwise returns s unchanged.
func unwrapEnvelope(s string) string {
	var env resultEnvelope
	if err := json.Unmarshal([]byte(s), &env); err == nil && env.Result != nil {
		return *env.Result
	}
	return s
}

// Normalize applies the full normalization contract from spec.md §4.1:
// strip fences, unwrap the envelope if present, strip fences again (the
// inner payload may itself be fenced), and report whether anything
// usable remains.
func Normalize(raw string) (string, bool) {
	s := stripFences(raw)
	s = unwrapEnvelope(s)
	s = stripFences(s)
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
