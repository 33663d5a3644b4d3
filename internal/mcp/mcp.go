// Package mcp provides the qlshim MCP server, registering all tools
// and publishing model instructions.
package mcp

import (
	_ "embed"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/n1ght/qlshim"
	"github.com/n1ght/qlshim/internal/command"
	"github.com/n1ght/qlshim/internal/report"
	"github.com/n1ght/qlshim/internal/runner"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	engine *command.Engine
	store  report.Store
}

// NewServer creates an MCP server with all qlshim tools registered.
func NewServer(engine *command.Engine, store report.Store) *mcp.Server {
	h := &handler{engine: engine, store: store}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "qlshim", Version: qlshim.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "ql_exec",
		Description: `Run codeql-n1ght with a raw argument list, forwarded verbatim.

Escape hatch for verbs the structured tools do not cover, e.g.
args=["-install"] or args=["-database", "app.jar", "-decompiler", "fernflower"].
Returns {run_id, exit_code, stdout, stderr, timed_out}.`,
	}, h.execHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "ql_version",
		Description: `Report the codeql-n1ght version, falling back to its help text.

Tries --version first; if that fails or prints nothing, returns the
--help output instead. Use this to verify the executable is reachable.`,
	}, h.versionHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "ql_install",
		Description: `Install the toolchain codeql-n1ght depends on (JDK, Ant, CodeQL CLI).

Equivalent to codeql-n1ght -install [-jdk <url>] [-ant <url>] [-codeql <url>].
Each URL overrides the default download source for one component.`,
	}, h.installHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "ql_database",
		Description: `Create a CodeQL database from a JAR, WAR, or ZIP target.

Equivalent to codeql-n1ght -database <target> [-decompiler procyon|fernflower]
[-dir <path>] [-deps none|all] [-goroutine] [-max-goroutines N] [-threads N]
[-clean-cache]. Leave deps empty to let the binary prompt interactively.
Database builds can take hours; raise timeout_seconds if needed.`,
	}, h.databaseHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "ql_scan",
		Description: `Scan a CodeQL database for security defects.

Equivalent to codeql-n1ght -scan [-db <path>] [-ql <path>] [-goroutine]
[-max-goroutines N] [-threads N] [-clean-cache]. When db or ql are
omitted the binary uses its stored defaults.`,
	}, h.scanHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "ql_inspect",
		Description: `Fetch the full stored record of a past run by run_id.

Every execution tool returns a run_id; use this to re-read output that
has scrolled out of context.`,
	}, h.inspectHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "ql_runs",
		Description: `List recent runs, newest first.

Returns run_id, tool, exit code, and timing for each; drill into one
with ql_inspect.`,
	}, h.runsHandler)

	return s
}

// runRecord is the uniform result shape returned by every execution
// tool. All fields are always present; exit_code is null when the
// process never completed.
type runRecord struct {
	RunID     string `json:"run_id,omitempty"`
	ExitCode  *int   `json:"exit_code"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	TimedOut  bool   `json:"timed_out"`
	Truncated bool   `json:"truncated,omitempty"`
}

// resultRecord renders a runner result as the uniform JSON record.
// Execution outcomes are never protocol errors: callers inspect fields.
func resultRecord(res *runner.Result) (*mcp.CallToolResult, any, error) {
	rec := runRecord{
		RunID:     res.RunID,
		ExitCode:  res.ExitCode,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		TimedOut:  res.TimedOut,
		Truncated: res.Truncated,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errorResult("encoding result: " + err.Error())
	}
	return textResult(string(data))
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
