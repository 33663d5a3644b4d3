package command

import (
	"context"

	"github.com/n1ght/qlshim/internal/runner"
)

// ProbeRequest asks for the binary's version or, failing that, its help
// text.
type ProbeRequest struct {
	ExePath        string
	TimeoutSeconds *float64
}

// Probe runs the binary with --version. If that attempt exits zero and
// produces output on stdout, its result is returned. Otherwise a single
// fallback attempt with --help is made and that result is returned
// instead. This is a fallback chain, not a retry: the two results are
// never merged.
func (e *Engine) Probe(ctx context.Context, req ProbeRequest) *runner.Result {
	exe, fail := e.preflight(req.ExePath)
	if fail != nil {
		return fail
	}

	timeout := e.timeout(req.TimeoutSeconds, e.Config.ProbeTimeout())

	res := e.run(ctx, "probe", []string{exe, "--version"}, "", timeout)
	if res.ExitCode != nil && *res.ExitCode == 0 && res.Stdout != "" {
		return res
	}

	return e.run(ctx, "probe", []string{exe, "--help"}, "", timeout)
}
