// Package command turns structured operation requests into argument
// vectors for the codeql-n1ght binary and executes them through a
// supervised runner. It is consumed by both the MCP server and the CLI.
//
// Every operation returns a fully populated runner.Result: validation
// failures and missing executables are reported through the result's
// stderr field with a nil exit code, never as Go errors.
package command

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/n1ght/qlshim/internal/config"
	"github.com/n1ght/qlshim/internal/report"
	"github.com/n1ght/qlshim/internal/runner"
)

// CommandRunner executes an argument vector as a supervised child process.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, cwd string, timeout time.Duration) (*runner.Result, error)
}

// Engine holds shared dependencies for all operations. Store is
// optional; when set, every spawned execution is recorded there.
type Engine struct {
	Config *config.Config
	Runner CommandRunner
	Store  report.Store
}

// preflight resolves the executable path and verifies it exists on disk.
// On failure it returns a ready-made result naming the missing path.
func (e *Engine) preflight(exePath string) (string, *runner.Result) {
	exe := ResolveExePath(exePath, e.Config.ExePath())
	if _, err := os.Stat(exe); err != nil {
		return "", runner.Failure(fmt.Sprintf("Executable not found: %s", exe))
	}
	return exe, nil
}

// run executes argv, records the execution, and normalizes spawn
// failures into a result, so that no error escapes an operation.
func (e *Engine) run(ctx context.Context, op string, argv []string, cwd string, timeout time.Duration) *runner.Result {
	log.Printf("running: %s", strings.Join(argv, " "))
	if cwd != "" {
		log.Printf("working directory: %s", cwd)
	}

	start := time.Now()
	res, err := e.Runner.Run(ctx, argv, cwd, timeout)
	if err != nil {
		return runner.Failure(err.Error())
	}

	if e.Store != nil {
		// History is best-effort; a broken store must not fail the call.
		_ = e.Store.Save(&report.Run{
			ID:        res.RunID,
			Tool:      op,
			Argv:      argv,
			Cwd:       cwd,
			ExitCode:  res.ExitCode,
			TimedOut:  res.TimedOut,
			Truncated: res.Truncated,
			Stdout:    res.Stdout,
			Stderr:    res.Stderr,
			StartedAt: start,
			Duration:  time.Since(start),
		})
	}

	return res
}

// timeout converts a caller-supplied fractional-second timeout into a
// duration, falling back to the operation default when absent.
func (e *Engine) timeout(requested *float64, fallback time.Duration) time.Duration {
	if requested != nil && *requested > 0 {
		return time.Duration(*requested * float64(time.Second))
	}
	return fallback
}
