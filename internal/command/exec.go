package command

import (
	"context"

	"github.com/n1ght/qlshim/internal/runner"
)

// ExecRequest is the passthrough operation: the caller-supplied argument
// list is forwarded verbatim after the executable path, with no
// validation. This is the escape hatch for verbs the structured
// operations do not cover.
type ExecRequest struct {
	Args           []string
	ExePath        string
	Cwd            string
	TimeoutSeconds *float64
}

// Exec runs the binary with the request's argument list as-is.
func (e *Engine) Exec(ctx context.Context, req ExecRequest) *runner.Result {
	exe, fail := e.preflight(req.ExePath)
	if fail != nil {
		return fail
	}

	argv := append([]string{exe}, req.Args...)
	return e.run(ctx, "exec", argv, req.Cwd, e.timeout(req.TimeoutSeconds, e.Config.ExecTimeout()))
}
