package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/n1ght/qlshim/internal/runner"
)

// Decompiler choices accepted by the binary's -decompiler flag.
const (
	DecompilerProcyon    = "procyon"
	DecompilerFernflower = "fernflower"
)

// Dependency modes accepted by the binary's -deps flag. An empty Deps
// field means "let the binary decide interactively" and must not be
// translated into any flag.
const (
	DepsNone = "none"
	DepsAll  = "all"
)

// DatabaseRequest builds a CodeQL database from a JAR, WAR, or ZIP
// target.
type DatabaseRequest struct {
	Target         string // required
	Decompiler     string // procyon | fernflower | empty
	ExtraSrcDir    string
	Deps           string // none | all | empty (interactive)
	Goroutine      bool
	MaxGoroutines  *int
	Threads        *int
	CleanCache     bool
	ExePath        string
	Cwd            string
	TimeoutSeconds *float64
}

// CreateDatabase runs the binary's -database verb. Enumerated parameters
// are validated before anything is spawned; an invalid value produces a
// failure result describing the accepted set.
func (e *Engine) CreateDatabase(ctx context.Context, req DatabaseRequest) *runner.Result {
	argv, err := buildDatabaseArgs(req)
	if err != nil {
		return runner.Failure(err.Error())
	}

	exe, fail := e.preflight(req.ExePath)
	if fail != nil {
		return fail
	}

	return e.run(ctx, "database", append([]string{exe}, argv...), req.Cwd, e.timeout(req.TimeoutSeconds, e.Config.DatabaseTimeout()))
}

// buildDatabaseArgs constructs the argument vector after the executable
// path. Order matters: the binary expects the primary verb first, then
// modifier flags.
func buildDatabaseArgs(req DatabaseRequest) ([]string, error) {
	if req.Target == "" {
		return nil, fmt.Errorf("Missing required parameter: target")
	}

	argv := []string{"-database", req.Target}

	if req.Decompiler != "" {
		dec := strings.ToLower(strings.TrimSpace(req.Decompiler))
		if dec != DecompilerProcyon && dec != DecompilerFernflower {
			return nil, fmt.Errorf("Invalid decompiler: %s. Expected 'procyon' or 'fernflower'", req.Decompiler)
		}
		argv = append(argv, "-decompiler", dec)
	}

	if req.ExtraSrcDir != "" {
		argv = append(argv, "-dir", req.ExtraSrcDir)
	}

	if req.Deps != "" {
		d := strings.ToLower(strings.TrimSpace(req.Deps))
		if d != DepsNone && d != DepsAll {
			return nil, fmt.Errorf("Invalid deps: %s. Expected 'none' or 'all' or leave empty to use interactive TUI", req.Deps)
		}
		argv = append(argv, "-deps", d)
	}

	return append(argv, parallelismArgs(req.Goroutine, req.MaxGoroutines, req.Threads, req.CleanCache)...), nil
}

// parallelismArgs renders the parallelism and cache flags shared by the
// database and scan verbs. The flag names belong to the wrapped binary;
// this layer forwards them without interpreting them.
func parallelismArgs(goroutine bool, maxGoroutines, threads *int, cleanCache bool) []string {
	var argv []string
	if goroutine {
		argv = append(argv, "-goroutine")
	}
	if maxGoroutines != nil {
		argv = append(argv, "-max-goroutines", strconv.Itoa(*maxGoroutines))
	}
	if threads != nil {
		argv = append(argv, "-threads", strconv.Itoa(*threads))
	}
	if cleanCache {
		argv = append(argv, "-clean-cache")
	}
	return argv
}
