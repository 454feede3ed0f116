package llm

import (
	"bytes"
	"context"
	"os/exec"
)

// SubprocessRunner is the production ports.ProcessRunner: it shells out
// to the real external model binary. Tests use a canned fake instead
// (see gateway_test.go), never this type.
type SubprocessRunner struct {
	bin string
}

// NewSubprocessRunner builds a runner invoking the given binary.
func NewSubprocessRunner(bin string) *SubprocessRunner {
	return &SubprocessRunner{bin: bin}
}

// Run executes the configured binary with args and captures its output.
// A non-zero exit code is reported via exitCode, not via err — err is
// reserved for failures to start the process at all.
func (r *SubprocessRunner) Run(ctx context.Context, args []string) (exitCode int, stdout string, stderr string, err error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if runErr == nil {
		return 0, stdout, stderr, nil
	}

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), stdout, stderr, nil
	}

	return -1, stdout, stderr, runErr
}
