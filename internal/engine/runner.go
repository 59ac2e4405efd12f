package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"apiflow/internal/plan"

	"github.com/Jeffail/gabs/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultExcerptLimit = 500
	DefaultTimeout      = 5 * time.Minute

	planFilePrefix = "plan-"
	// killGrace bounds how long Wait blocks on output pipes after the
	// process has been killed.
	killGrace = 2 * time.Second
)

type Config struct {
	Binary       string
	WorkDir      string
	Timeout      time.Duration
	Format       plan.Format
	ExcerptLimit int
}

// Runner invokes the engine binary. It is safe for concurrent use; runs only
// share WorkDir, and every plan file name is unique.
type Runner struct {
	cfg    Config
	logger zerolog.Logger
}

func NewRunner(cfg Config, logger zerolog.Logger) (*Runner, error) {
	if cfg.Binary == "" {
		return nil, errors.New("engine binary is required")
	}
	if cfg.WorkDir == "" {
		return nil, errors.New("engine work dir is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Format == "" {
		cfg.Format = plan.FormatJSON
	}
	if cfg.ExcerptLimit <= 0 {
		cfg.ExcerptLimit = DefaultExcerptLimit
	}
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create engine work dir: %w", err)
	}
	return &Runner{cfg: cfg, logger: logger}, nil
}

func (slf *Runner) Format() plan.Format {
	return slf.cfg.Format
}

func (slf *Runner) Timeout() time.Duration {
	return slf.cfg.Timeout
}

// Execute writes doc to a fresh plan file and runs it. A zero timeout uses
// the runner's default. The plan file is gone when Execute returns.
func (slf *Runner) Execute(ctx context.Context, doc []byte, baseURL string, timeout time.Duration) Outcome {
	start := time.Now()
	if timeout <= 0 {
		timeout = slf.cfg.Timeout
	}

	out := slf.execute(ctx, doc, baseURL, timeout)
	out.Duration = time.Since(start)
	out.DurationMs = out.Duration.Milliseconds()

	if out.Success {
		slf.logger.Info().Int("exitCode", out.ExitCode).Dur("duration", out.Duration).Msg("Engine run succeeded")
		return out
	}
	slf.logger.Warn().Str("kind", string(out.Kind)).Str("error", out.Error).Int("exitCode", out.ExitCode).Dur("duration", out.Duration).Msg("Engine run failed")
	return out
}

func (slf *Runner) execute(ctx context.Context, doc []byte, baseURL string, timeout time.Duration) Outcome {
	path, err := slf.writePlan(doc)
	if err != nil {
		return Failure(KindExecution, "failed to write plan file: %v", err)
	}
	defer slf.removePlan(path)

	args := []string{"run", "--file", path}
	if baseURL != "" {
		args = append(args, "--base-url", baseURL)
	}
	args = append(args, "--timeout", strconv.Itoa(int(math.Ceil(timeout.Seconds()))))

	res := slf.run(ctx, timeout, args)
	if res.failure != nil {
		return *res.failure
	}

	stdout := bytes.TrimSpace(res.stdout)
	if len(stdout) == 0 {
		msg := strings.TrimSpace(string(res.stderr))
		if msg == "" {
			msg = fmt.Sprintf("engine produced no output (exit status %d)", res.exitCode)
		}
		out := Failure(KindExecution, "%s", msg)
		out.ExitCode = res.exitCode
		return out
	}

	parsed, err := gabs.ParseJSON(stdout)
	if err == nil {
		if _, ok := parsed.Data().(map[string]any); !ok {
			err = errors.New("top level is not an object")
		}
	}
	if err != nil {
		out := Failure(KindParse, "failed to parse engine output: %v: %s", err, excerpt(stdout, slf.cfg.ExcerptLimit))
		out.ExitCode = res.exitCode
		return out
	}

	out := Outcome{
		Result:   parsed.Data().(map[string]any),
		Stats:    statsFrom(parsed),
		ExitCode: res.exitCode,
	}
	status, _ := parsed.Path("summary.status").Data().(string)
	out.Success = status == "success"
	if !out.Success {
		out.Kind = KindFailed
		if status == "" {
			out.Error = "engine output has no summary.status"
		} else {
			out.Error = fmt.Sprintf("engine reported status %q", status)
		}
	}
	return out
}

// Validate asks the engine whether doc is a structurally valid plan.
func (slf *Runner) Validate(ctx context.Context, doc []byte) (bool, string) {
	path, err := slf.writePlan(doc)
	if err != nil {
		return false, fmt.Sprintf("failed to write plan file: %v", err)
	}
	defer slf.removePlan(path)

	res := slf.run(ctx, slf.cfg.Timeout, []string{"validate", "--file", path})
	if res.failure != nil {
		return false, res.failure.Error
	}
	msg := strings.TrimSpace(string(res.stdout))
	if stderr := strings.TrimSpace(string(res.stderr)); stderr != "" {
		if msg != "" {
			msg += "\n"
		}
		msg += stderr
	}
	return res.exitCode == 0, msg
}

type runResult struct {
	stdout   []byte
	stderr   []byte
	exitCode int
	failure  *Outcome
}

func (slf *Runner) run(ctx context.Context, timeout time.Duration, args []string) runResult {
	binary, err := exec.LookPath(slf.cfg.Binary)
	if err != nil {
		out := notInstalled(slf.cfg.Binary)
		return runResult{exitCode: -1, failure: &out}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = killGrace
	setProcessGroup(cmd)

	slf.logger.Debug().Str("binary", binary).Strs("args", args).Msg("Starting engine")
	err = cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		out := Failure(KindTimeout, "engine run exceeded the configured timeout of %s", timeout)
		return runResult{exitCode: -1, failure: &out}
	}
	if ctx.Err() != nil {
		out := Failure(KindExecution, "engine run canceled: %v", ctx.Err())
		return runResult{exitCode: -1, failure: &out}
	}

	res := runResult{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.exitCode = exitErr.ExitCode()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		out := notInstalled(slf.cfg.Binary)
		res.failure = &out
	default:
		out := Failure(KindExecution, "failed to run engine: %v", err)
		res.failure = &out
	}
	return res
}

func notInstalled(binary string) Outcome {
	return Failure(KindEngineNotInstalled,
		"execution engine %q not found: install it or set ENGINE_BIN to its path", binary)
}

func (slf *Runner) writePlan(doc []byte) (string, error) {
	path := filepath.Join(slf.cfg.WorkDir, planFilePrefix+uuid.NewString()+slf.cfg.Format.Ext())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(doc); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (slf *Runner) removePlan(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slf.logger.Error().Err(err).Str("path", path).Msg("Failed to remove plan file")
	}
}
