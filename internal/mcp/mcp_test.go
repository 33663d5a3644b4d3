package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/n1ght/qlshim/internal/command"
	"github.com/n1ght/qlshim/internal/config"
	"github.com/n1ght/qlshim/internal/report"
	"github.com/n1ght/qlshim/internal/runner"
)

// setup creates a full qlshim MCP server + client over in-memory transports.
func setup(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{}
	store := report.NewLRUStore(5, report.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db")))
	engine := &command.Engine{
		Config: cfg,
		Runner: &runner.Runner{MaxOutput: cfg.MaxOutputBytes()},
		Store:  store,
	}

	server := NewServer(engine, store)

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})

	return cs
}

// fakeExe writes an executable shell script posing as codeql-n1ght.
func fakeExe(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codeql-n1ght")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultText(r *mcp.CallToolResult) string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// record mirrors the JSON shape every execution tool returns.
type record struct {
	RunID    string `json:"run_id"`
	ExitCode *int   `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimedOut bool   `json:"timed_out"`
}

func parseRecord(t *testing.T, r *mcp.CallToolResult) record {
	t.Helper()
	text := resultText(r)
	var rec record
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		t.Fatalf("parsing result record: %v\n%s", err, text)
	}
	return rec
}

// --- ql_exec ---

func TestQLExec(t *testing.T) {
	cs := setup(t)
	exe := fakeExe(t, `echo "args: $@"`)

	res := callTool(t, cs, "ql_exec", map[string]any{
		"exe_path": exe,
		"args":     []string{"-install", "-jdk", "https://example.com/jdk.zip"},
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}

	rec := parseRecord(t, res)
	if rec.ExitCode == nil || *rec.ExitCode != 0 {
		t.Errorf("exit_code = %v, want 0", rec.ExitCode)
	}
	if !strings.Contains(rec.Stdout, "-install -jdk https://example.com/jdk.zip") {
		t.Errorf("stdout = %q, want forwarded args", rec.Stdout)
	}
	if rec.RunID == "" {
		t.Error("run_id is empty")
	}
}

func TestQLExec_MissingExecutable(t *testing.T) {
	cs := setup(t)
	missing := filepath.Join(t.TempDir(), "absent.exe")

	res := callTool(t, cs, "ql_exec", map[string]any{"exe_path": missing})
	if res.IsError {
		t.Fatalf("execution outcomes must not be protocol errors: %s", resultText(res))
	}

	rec := parseRecord(t, res)
	if rec.ExitCode != nil {
		t.Errorf("exit_code = %d, want null", *rec.ExitCode)
	}
	if rec.TimedOut {
		t.Error("timed_out = true, want false")
	}
	if !strings.Contains(rec.Stderr, missing) {
		t.Errorf("stderr = %q, want to name %q", rec.Stderr, missing)
	}
}

func TestQLExec_Timeout(t *testing.T) {
	cs := setup(t)
	exe := fakeExe(t, "sleep 10")

	res := callTool(t, cs, "ql_exec", map[string]any{
		"exe_path":        exe,
		"timeout_seconds": 0.05,
	})

	rec := parseRecord(t, res)
	if !rec.TimedOut {
		t.Fatal("timed_out = false, want true")
	}
	if rec.ExitCode != nil {
		t.Errorf("exit_code = %d, want null", *rec.ExitCode)
	}
	if rec.Stdout != "" {
		t.Errorf("stdout = %q, want empty", rec.Stdout)
	}
	if !strings.Contains(rec.Stderr, "timed out") {
		t.Errorf("stderr = %q, want timeout notice", rec.Stderr)
	}
}

// --- ql_version ---

func TestQLVersion(t *testing.T) {
	cs := setup(t)
	exe := fakeExe(t, `if [ "$1" = "--version" ]; then echo "codeql-n1ght v9.9"; else echo usage; fi`)

	res := callTool(t, cs, "ql_version", map[string]any{"exe_path": exe})
	rec := parseRecord(t, res)
	if !strings.Contains(rec.Stdout, "v9.9") {
		t.Errorf("stdout = %q, want the version output", rec.Stdout)
	}
}

func TestQLVersion_FallsBackToHelp(t *testing.T) {
	cs := setup(t)
	exe := fakeExe(t, `if [ "$1" = "--version" ]; then exit 1; fi
echo "usage: codeql-n1ght ..."`)

	res := callTool(t, cs, "ql_version", map[string]any{"exe_path": exe})
	rec := parseRecord(t, res)
	if rec.ExitCode == nil || *rec.ExitCode != 0 {
		t.Errorf("exit_code = %v, want 0 from the help attempt", rec.ExitCode)
	}
	if !strings.Contains(rec.Stdout, "usage") {
		t.Errorf("stdout = %q, want help output", rec.Stdout)
	}
}

// --- ql_database ---

func TestQLDatabase_InvalidDecompiler(t *testing.T) {
	cs := setup(t)
	// The script would create a marker if it ever ran.
	dir := t.TempDir()
	marker := filepath.Join(dir, "spawned")
	exe := fakeExe(t, "touch "+marker)

	res := callTool(t, cs, "ql_database", map[string]any{
		"target":     "app.jar",
		"decompiler": "cobol",
		"exe_path":   exe,
	})

	rec := parseRecord(t, res)
	if rec.ExitCode != nil {
		t.Errorf("exit_code = %d, want null", *rec.ExitCode)
	}
	if !strings.Contains(rec.Stderr, "cobol") || !strings.Contains(rec.Stderr, "procyon") {
		t.Errorf("stderr = %q, want invalid value and accepted set", rec.Stderr)
	}
	if _, err := os.Stat(marker); err == nil {
		t.Error("process was spawned despite the validation failure")
	}
}

func TestQLDatabase_ForwardsFlags(t *testing.T) {
	cs := setup(t)
	exe := fakeExe(t, `echo "args: $@"`)

	res := callTool(t, cs, "ql_database", map[string]any{
		"target":      "app.jar",
		"deps":        "none",
		"threads":     4,
		"clean_cache": true,
		"exe_path":    exe,
	})

	rec := parseRecord(t, res)
	if rec.ExitCode == nil || *rec.ExitCode != 0 {
		t.Fatalf("exit_code = %v, want 0", rec.ExitCode)
	}
	if !strings.Contains(rec.Stdout, "-database app.jar -deps none -threads 4 -clean-cache") {
		t.Errorf("stdout = %q, want the built argument vector", rec.Stdout)
	}
}

// --- ql_scan ---

func TestQLScan_Defaults(t *testing.T) {
	cs := setup(t)
	exe := fakeExe(t, `echo "args: $@"`)

	res := callTool(t, cs, "ql_scan", map[string]any{"exe_path": exe})
	rec := parseRecord(t, res)
	if !strings.Contains(rec.Stdout, "args: -scan") {
		t.Errorf("stdout = %q, want bare -scan", rec.Stdout)
	}
}

// --- history ---

func TestQLInspect_RoundTrip(t *testing.T) {
	cs := setup(t)
	exe := fakeExe(t, "echo scan findings")

	runRes := callTool(t, cs, "ql_scan", map[string]any{"exe_path": exe})
	rec := parseRecord(t, runRes)
	if rec.RunID == "" {
		t.Fatal("run_id is empty")
	}

	inspRes := callTool(t, cs, "ql_inspect", map[string]any{"run_id": rec.RunID})
	if inspRes.IsError {
		t.Fatalf("unexpected error: %s", resultText(inspRes))
	}
	text := resultText(inspRes)
	if !strings.Contains(text, "scan findings") {
		t.Errorf("inspect output = %q, want the stored stdout", text)
	}
	if !strings.Contains(text, "-scan") {
		t.Errorf("inspect output = %q, want the stored argv", text)
	}
}

func TestQLInspect_UnknownRun(t *testing.T) {
	cs := setup(t)
	res := callTool(t, cs, "ql_inspect", map[string]any{"run_id": "nonexistent-id"})
	if !res.IsError {
		t.Error("expected IsError for unknown run_id")
	}
}

func TestQLRuns(t *testing.T) {
	cs := setup(t)
	exe := fakeExe(t, "echo ok")

	rec := parseRecord(t, callTool(t, cs, "ql_scan", map[string]any{"exe_path": exe}))

	res := callTool(t, cs, "ql_runs", nil)
	text := resultText(res)
	if !strings.Contains(text, rec.RunID) {
		t.Errorf("ql_runs output = %q, want to list run %s", text, rec.RunID)
	}
	if !strings.Contains(text, "scan") {
		t.Errorf("ql_runs output = %q, want the tool name", text)
	}
}

func TestQLRuns_Empty(t *testing.T) {
	cs := setup(t)
	res := callTool(t, cs, "ql_runs", nil)
	if !strings.Contains(resultText(res), "No runs") {
		t.Errorf("ql_runs output = %q, want empty notice", resultText(res))
	}
}
