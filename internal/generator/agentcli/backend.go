package agentcli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
)

const (
	versionCheckTimeout = 5 * time.Second

	// maxScanLine bounds a single agent output line, agents sometimes dump
	// whole JSON payloads on one line
	maxScanLine = 1024 * 1024

	// maxErrOutput caps process output quoted in error messages
	maxErrOutput = 2000
)

var _ interfaces.GeneratorAPI = (*Backend)(nil)

// Backend implements the GeneratorAPI interface by running an agent CLI
// inside a repository clone. The agent reads the codebase itself, only the
// prompt travels on the command line.
type Backend struct {
	cfg    model.BackendConfig
	logger logze.Logger
}

// New creates a new agent CLI backend
func New(ctx context.Context, cfg model.BackendConfig) (*Backend, error) {
	if len(cfg.Commands) == 0 {
		return nil, errm.New("at least one agent command is required")
	}

	backend := &Backend{
		cfg:    cfg,
		logger: logze.With("component", "agentcli"),
	}

	if cfg.IsTest {
		if err := backend.testConnection(ctx); err != nil {
			return nil, errm.Wrap(err, "failed to verify agent CLI")
		}
	}

	return backend, nil
}

// Generate runs the first available agent command in the clone directory
// and returns its full stdout. Output lines stream into req.Output as the
// process produces them, the run is killed after the configured timeout.
func (b *Backend) Generate(ctx context.Context, req model.BackendRequest) (model.BackendResponse, error) {
	runCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	for _, argv := range b.cfg.Commands {
		if _, err := exec.LookPath(argv[0]); err != nil {
			continue
		}
		return b.run(runCtx, argv, req)
	}

	return model.BackendResponse{}, fmt.Errorf("%w: no agent binary found on PATH", model.ErrBackendUnavailable)
}

func (b *Backend) run(ctx context.Context, argv []string, req model.BackendRequest) (model.BackendResponse, error) {
	args := append(append([]string{}, argv[1:]...), req.Input)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Dir = req.WorkDir
	cmd.Env = os.Environ()
	if b.cfg.APIKey != "" {
		cmd.Env = append(cmd.Env, b.cfg.KeyEnvVar+"="+b.cfg.APIKey)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return model.BackendResponse{}, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return model.BackendResponse{}, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return model.BackendResponse{}, fmt.Errorf("%w: failed to start agent: %v", model.ErrBackendUnavailable, err)
	}
	b.logger.Info("running agent", "command", argv[0], "dir", req.WorkDir)

	// Both streams go to the live callback, stdout also becomes the result.
	// The callback sees lines from two goroutines and must handle that.
	var outBuf, errBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go readStream(&wg, stdout, &outBuf, req.Output)
	go readStream(&wg, stderr, &errBuf, req.Output)
	wg.Wait()

	waitErr := cmd.Wait()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.BackendResponse{}, fmt.Errorf("%w: agent run exceeded %s", model.ErrBackendTimeout, b.cfg.Timeout)
	}
	if ctx.Err() != nil {
		return model.BackendResponse{}, fmt.Errorf("agent run canceled: %w", ctx.Err())
	}
	if waitErr != nil {
		detail := strings.TrimSpace(errBuf.String())
		if detail == "" {
			detail = strings.TrimSpace(outBuf.String())
		}
		return model.BackendResponse{}, fmt.Errorf("%w: agent failed: %v: %s",
			model.ErrBackendUnavailable, waitErr, tail(detail, maxErrOutput))
	}

	b.logger.Info("agent finished", "command", argv[0], "elapsed", time.Since(started).String())

	return model.BackendResponse{
		CreateTime: started,
		Content:    strings.TrimSpace(outBuf.String()),
	}, nil
}

// testConnection verifies that one of the configured agent binaries is
// installed and answers a version probe
func (b *Backend) testConnection(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, versionCheckTimeout)
	defer cancel()

	for _, argv := range b.cfg.Commands {
		if _, err := exec.LookPath(argv[0]); err != nil {
			continue
		}
		out, err := exec.CommandContext(checkCtx, argv[0], "--version").CombinedOutput()
		if err != nil {
			continue
		}
		b.logger.Info("agent CLI available", "version", firstLine(string(out)))
		return nil
	}

	return errm.New("agent CLI not found, ensure one of the configured binaries is on PATH")
}

// readStream forwards lines to the live callback while collecting them
func readStream(wg *sync.WaitGroup, r io.Reader, buf *strings.Builder, output func(string)) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanLine)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		if output != nil {
			output(line)
		}
	}
}

// tail keeps the last max characters of s
func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}

// firstLine returns the first trimmed line of s
func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
