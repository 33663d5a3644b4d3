// Package runner supervises child processes: it enforces a wall-clock
// timeout, captures both output streams behind a size cap, and reports
// every outcome as a uniform Result.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Runner executes argument vectors as supervised child processes.
// It holds no mutable state; concurrent Run calls are independent.
type Runner struct {
	MaxOutput int // bytes captured per stream
}

// waitDelay bounds how long Run waits for the output pipes after the
// child exits or is killed. The wrapped binary forks its own children
// (Java, CodeQL) which inherit the pipes; without this bound a killed
// process tree could hold Run open long past the timeout.
const waitDelay = 2 * time.Second

// Run executes argv as a child process. The first element is the binary
// path, the rest are arguments. cwd may be empty, in which case the
// process inherits the current working directory. The process is killed
// once timeout elapses.
//
// A Result is returned for every process that was spawned, whether it
// exited zero, non-zero, or was killed on timeout. An error is returned
// only when the process could not be started at all.
func (r *Runner) Run(ctx context.Context, argv []string, cwd string, timeout time.Duration) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runID := uuid.New().String()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = cwd
	cmd.WaitDelay = waitDelay

	// Termination on timeout is best-effort cleanup: a process that
	// already exited is not a reportable condition, but any other kill
	// failure is.
	cmd.Cancel = func() error {
		err := cmd.Process.Kill()
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return err
	}

	var stdout, stderr bytes.Buffer
	outWriter := &limitWriter{buf: &stdout, limit: r.MaxOutput}
	errWriter := &limitWriter{buf: &stderr, limit: r.MaxOutput}
	cmd.Stdout = outWriter
	cmd.Stderr = errWriter

	runErr := cmd.Run()

	if runErr != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Result{
			RunID:    runID,
			Stderr:   fmt.Sprintf("process timed out after %s", timeout),
			TimedOut: true,
		}, nil
	}

	// ErrWaitDelay means the process exited zero but left the pipes to a
	// surviving child; whatever was captured by then stands.
	if errors.Is(runErr, exec.ErrWaitDelay) {
		runErr = nil
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// The process never started: not executable, bad cwd, ...
			return nil, fmt.Errorf("executing %s: %w", argv[0], runErr)
		}
	}

	truncated := outWriter.dropped || errWriter.dropped

	return &Result{
		RunID:     runID,
		ExitCode:  &exitCode,
		Stdout:    decode(stdout.Bytes()),
		Stderr:    decode(stderr.Bytes()),
		Truncated: truncated,
	}, nil
}

// decode converts captured bytes to text, replacing malformed UTF-8
// sequences rather than failing.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// limitWriter writes up to limit bytes to buf, then silently discards
// the rest, remembering whether anything was actually discarded.
type limitWriter struct {
	buf     *bytes.Buffer
	limit   int
	dropped bool
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			w.dropped = true
		}
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		w.dropped = true
		return len(p), nil
	}
	return w.buf.Write(p)
}
