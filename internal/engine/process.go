// Package engine launches the external recognition engine as a child process.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/logger"
)

const (
	maxLoggedBytes = 8 << 10
	// pipeGrace bounds how long Wait keeps copying output from pipes still
	// held open by descendants of the interpreter once it has exited or
	// been killed.
	pipeGrace = 2 * time.Second
)

// ProcessEngine runs `<interpreter> <script> <absolute image path>` once per request.
type ProcessEngine struct {
	interpreter string
	script      string
	timeout     time.Duration
	log         *zap.Logger
}

// NewProcessEngine creates a ProcessEngine from engine settings.
func NewProcessEngine(cfg config.EngineConfig, log *zap.Logger) *ProcessEngine {
	return &ProcessEngine{
		interpreter: cfg.Interpreter,
		script:      cfg.Script,
		timeout:     cfg.Timeout,
		log:         logger.OrNop(log).Named("engine"),
	}
}

func (e *ProcessEngine) commandLine() string {
	return e.interpreter + " " + e.script
}

// Check verifies the interpreter resolves and the script exists.
func (e *ProcessEngine) Check(_ context.Context) error {
	if _, err := exec.LookPath(e.interpreter); err != nil {
		return &domain.ProcessSpawnError{Command: e.commandLine(), Err: err}
	}
	if _, err := os.Stat(e.script); err != nil {
		return &domain.ProcessSpawnError{Command: e.commandLine(), Err: err}
	}
	return nil
}

// Run executes the engine against imagePath and returns its captured output.
// A non-zero exit yields *domain.ProcessExitError; a process that could not be
// started yields *domain.ProcessSpawnError. Output is never parsed here.
func (e *ProcessEngine) Run(ctx context.Context, imagePath string) (*domain.RawEngineOutput, error) {
	absPath, err := filepath.Abs(imagePath)
	if err != nil {
		return nil, fmt.Errorf("resolving image path: %w", err)
	}
	if _, err := os.Stat(e.script); err != nil {
		return nil, &domain.ProcessSpawnError{Command: e.commandLine(), Err: err}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.interpreter, e.script, absPath) //nolint:gosec // interpreter and script come from server config
	cmd.Stdout = &streamWriter{buf: &stdout, stream: "stdout", log: e.log}
	cmd.Stderr = &streamWriter{buf: &stderr, stream: "stderr", log: e.log}
	cmd.WaitDelay = pipeGrace
	if err := cmd.Start(); err != nil {
		return nil, &domain.ProcessSpawnError{Command: e.commandLine(), Err: err}
	}
	e.log.Debug("engine started",
		zap.String("cmd", e.commandLine()),
		zap.String("image", absPath),
		zap.Int("pid", cmd.Process.Pid),
	)

	waitErr := cmd.Wait()
	dur := time.Since(start)
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		// The interpreter exited cleanly but a descendant kept its output open.
		e.log.Warn("engine output pipes held open after exit", zap.Duration("grace", pipeGrace))
		waitErr = nil
	}

	errText := strings.TrimSpace(stderr.String())
	if errText != "" {
		e.log.Debug("engine stderr", zap.String("stderr", truncate(errText, maxLoggedBytes)))
	}

	if ctx.Err() != nil {
		e.log.Warn("engine killed after deadline",
			zap.Duration("duration", dur),
			zap.Error(ctx.Err()),
		)
		return nil, &domain.ProcessExitError{Code: -1, Stderr: errText, TimedOut: true}
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			e.log.Error("engine exited non-zero",
				zap.Int("code", exitErr.ExitCode()),
				zap.Duration("duration", dur),
				zap.String("stderr", truncate(errText, maxLoggedBytes)),
			)
			return nil, &domain.ProcessExitError{Code: exitErr.ExitCode(), Stderr: errText}
		}
		return nil, fmt.Errorf("waiting for recognition engine: %w", waitErr)
	}

	e.log.Info("engine finished",
		zap.Duration("duration", dur),
		zap.Int("stdout_bytes", stdout.Len()),
		zap.Int("stderr_bytes", stderr.Len()),
	)
	return &domain.RawEngineOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}, nil
}

// streamWriter accumulates one output stream of the engine and logs each
// chunk the exec copier hands it.
type streamWriter struct {
	buf    *bytes.Buffer
	stream string
	log    *zap.Logger
}

func (w *streamWriter) Write(p []byte) (int, error) {
	n, _ := w.buf.Write(p)
	w.log.Debug("engine output chunk",
		zap.String("stream", w.stream),
		zap.Int("bytes", n),
		zap.Int("total", w.buf.Len()),
	)
	return n, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated)"
}
