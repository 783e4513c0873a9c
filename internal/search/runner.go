// Package search orchestrates the external homology-search tools that
// produce the tabular hits the core consumes.
package search

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner executes an external tool and returns its stdout. Implementations
// are stubbed in tests; the core never depends on the concrete tools beyond
// their input/output format.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools through os/exec.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates a runner logging each invocation through l.
func NewExecRunner(l *zap.Logger) *ExecRunner {
	if l == nil {
		l = zap.NewNop()
	}
	return &ExecRunner{logger: l}
}

// Run executes the tool, capturing stdout. A non-zero exit is an error
// carrying the full command line and stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	fullCmd := strings.Join(cmd.Args, " ")
	r.logger.Info("running external tool", zap.String("cmd", fullCmd))

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("running %q: %w\nstderr:\n%s", fullCmd, err, stderr.String())
		}
		return nil, fmt.Errorf("running %q: %w", fullCmd, err)
	}
	return stdout.Bytes(), nil
}
