package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_CapturesStdout(t *testing.T) {
	r := NewExecRunner(nil)

	out, err := r.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestExecRunner_ErrorCarriesStderr(t *testing.T) {
	r := NewExecRunner(nil)

	_, err := r.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
	assert.Contains(t, err.Error(), "sh -c")
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(nil)

	_, err := r.Run(context.Background(), "no-such-tool-anywhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-tool-anywhere")
}
