package command

import (
	"context"

	"github.com/n1ght/qlshim/internal/runner"
)

// InstallRequest provisions the toolchain the binary depends on.
// Each URL overrides the binary's built-in download source for one
// component; empty fields are simply omitted from the command line.
type InstallRequest struct {
	JDKURL         string
	AntURL         string
	CodeQLURL      string
	ExePath        string
	Cwd            string
	TimeoutSeconds *float64
}

// Install runs the binary's -install verb.
func (e *Engine) Install(ctx context.Context, req InstallRequest) *runner.Result {
	exe, fail := e.preflight(req.ExePath)
	if fail != nil {
		return fail
	}

	argv := []string{exe, "-install"}
	if req.JDKURL != "" {
		argv = append(argv, "-jdk", req.JDKURL)
	}
	if req.AntURL != "" {
		argv = append(argv, "-ant", req.AntURL)
	}
	if req.CodeQLURL != "" {
		argv = append(argv, "-codeql", req.CodeQLURL)
	}

	return e.run(ctx, "install", argv, req.Cwd, e.timeout(req.TimeoutSeconds, e.Config.InstallTimeout()))
}
