package command

import (
	"context"

	"github.com/n1ght/qlshim/internal/runner"
)

// ScanRequest runs security queries against a database. All fields are
// optional: when db or ql are omitted the binary falls back to its own
// stored defaults.
type ScanRequest struct {
	DB             string
	QL             string
	Goroutine      bool
	MaxGoroutines  *int
	Threads        *int
	CleanCache     bool
	ExePath        string
	Cwd            string
	TimeoutSeconds *float64
}

// Scan runs the binary's -scan verb.
func (e *Engine) Scan(ctx context.Context, req ScanRequest) *runner.Result {
	exe, fail := e.preflight(req.ExePath)
	if fail != nil {
		return fail
	}

	argv := []string{exe, "-scan"}
	if req.DB != "" {
		argv = append(argv, "-db", req.DB)
	}
	if req.QL != "" {
		argv = append(argv, "-ql", req.QL)
	}
	argv = append(argv, parallelismArgs(req.Goroutine, req.MaxGoroutines, req.Threads, req.CleanCache)...)

	return e.run(ctx, "scan", argv, req.Cwd, e.timeout(req.TimeoutSeconds, e.Config.ScanTimeout()))
}
