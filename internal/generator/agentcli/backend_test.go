package agentcli

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxbolgarin/taskry/internal/model"
)

func newTestBackend(t *testing.T, script string) *Backend {
	t.Helper()

	backend, err := New(context.Background(), model.BackendConfig{
		Commands:  [][]string{{"/bin/sh", "-c", script}},
		KeyEnvVar: "CURSOR_API_KEY",
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	return backend
}

func TestGenerateCollectsStdout(t *testing.T) {
	backend := newTestBackend(t, `echo "first line"; echo "second line"`)

	resp, err := backend.Generate(context.Background(), model.BackendRequest{Input: "prompt"})
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", resp.Content)
	assert.False(t, resp.CreateTime.IsZero())
}

func TestGenerateStreamsLiveOutput(t *testing.T) {
	backend := newTestBackend(t, `echo "progress"; echo "warning" >&2; echo "done"`)

	var mu sync.Mutex
	var lines []string
	resp, err := backend.Generate(context.Background(), model.BackendRequest{
		Input: "prompt",
		Output: func(line string) {
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	// stderr lines reach the callback but never the result
	assert.Equal(t, "progress\ndone", resp.Content)
	mu.Lock()
	assert.Contains(t, lines, "progress")
	assert.Contains(t, lines, "warning")
	assert.Contains(t, lines, "done")
	mu.Unlock()
}

func TestGenerateReceivesPromptAsLastArgument(t *testing.T) {
	// sh -c binds the extra argument to $0
	backend := newTestBackend(t, `echo "$0"`)

	resp, err := backend.Generate(context.Background(), model.BackendRequest{Input: "describe recent work"})
	require.NoError(t, err)
	assert.Equal(t, "describe recent work", resp.Content)
}

func TestGenerateRunsInWorkDir(t *testing.T) {
	backend := newTestBackend(t, `pwd`)

	dir := t.TempDir()
	resp, err := backend.Generate(context.Background(), model.BackendRequest{Input: "prompt", WorkDir: dir})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(resp.Content)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGeneratePassesAPIKeyEnv(t *testing.T) {
	backend, err := New(context.Background(), model.BackendConfig{
		APIKey:    "secret-token",
		KeyEnvVar: "CURSOR_API_KEY",
		Commands:  [][]string{{"/bin/sh", "-c", `printf '%s' "$CURSOR_API_KEY"`}},
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	resp, err := backend.Generate(context.Background(), model.BackendRequest{Input: "prompt"})
	require.NoError(t, err)
	assert.Equal(t, "secret-token", resp.Content)
}

func TestGenerateTimeout(t *testing.T) {
	backend, err := New(context.Background(), model.BackendConfig{
		Commands: [][]string{{"/bin/sh", "-c", `sleep 5`}},
		Timeout:  200 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = backend.Generate(context.Background(), model.BackendRequest{Input: "prompt"})
	assert.ErrorIs(t, err, model.ErrBackendTimeout)
}

func TestGenerateNonZeroExit(t *testing.T) {
	backend := newTestBackend(t, `echo "agent exploded" >&2; exit 3`)

	_, err := backend.Generate(context.Background(), model.BackendRequest{Input: "prompt"})
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
	assert.ErrorContains(t, err, "agent exploded")
}

func TestGenerateNonZeroExitFallsBackToStdout(t *testing.T) {
	backend := newTestBackend(t, `echo "detail on stdout"; exit 1`)

	_, err := backend.Generate(context.Background(), model.BackendRequest{Input: "prompt"})
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
	assert.ErrorContains(t, err, "detail on stdout")
}

func TestGenerateSkipsMissingBinaries(t *testing.T) {
	backend, err := New(context.Background(), model.BackendConfig{
		Commands: [][]string{
			{"taskry-no-such-agent-binary"},
			{"/bin/sh", "-c", `echo "fallback worked"`},
		},
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	resp, err := backend.Generate(context.Background(), model.BackendRequest{Input: "prompt"})
	require.NoError(t, err)
	assert.Equal(t, "fallback worked", resp.Content)
}

func TestGenerateNoBinaryFound(t *testing.T) {
	backend, err := New(context.Background(), model.BackendConfig{
		Commands: [][]string{{"taskry-no-such-agent-binary"}},
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)

	_, err = backend.Generate(context.Background(), model.BackendRequest{Input: "prompt"})
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
}

func TestNewRequiresCommands(t *testing.T) {
	_, err := New(context.Background(), model.BackendConfig{Timeout: time.Second})
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 10))
	assert.Equal(t, "cdef", tail("abcdef", 4))
}
