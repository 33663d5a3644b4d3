package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/n1ght/qlshim/internal/command"
)

type execParams struct {
	Args           []string `json:"args,omitempty" jsonschema:"Argument list forwarded verbatim to the executable."`
	ExePath        string   `json:"exe_path,omitempty" jsonschema:"Override the configured executable path."`
	Cwd            string   `json:"cwd,omitempty" jsonschema:"Working directory for the child process."`
	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty" jsonschema:"Timeout in seconds. Default: 600."`
}

func (h *handler) execHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params execParams) (*sdkmcp.CallToolResult, any, error) {
	res := h.engine.Exec(ctx, command.ExecRequest{
		Args:           params.Args,
		ExePath:        params.ExePath,
		Cwd:            params.Cwd,
		TimeoutSeconds: params.TimeoutSeconds,
	})
	return resultRecord(res)
}

type versionParams struct {
	ExePath        string   `json:"exe_path,omitempty" jsonschema:"Override the configured executable path."`
	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty" jsonschema:"Timeout in seconds, applied to each attempt. Default: 60."`
}

func (h *handler) versionHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params versionParams) (*sdkmcp.CallToolResult, any, error) {
	res := h.engine.Probe(ctx, command.ProbeRequest{
		ExePath:        params.ExePath,
		TimeoutSeconds: params.TimeoutSeconds,
	})
	return resultRecord(res)
}

type installParams struct {
	JDKURL         string   `json:"jdk_url,omitempty" jsonschema:"Download URL for the JDK."`
	AntURL         string   `json:"ant_url,omitempty" jsonschema:"Download URL for Apache Ant."`
	CodeQLURL      string   `json:"codeql_url,omitempty" jsonschema:"Download URL for the CodeQL CLI bundle."`
	ExePath        string   `json:"exe_path,omitempty" jsonschema:"Override the configured executable path."`
	Cwd            string   `json:"cwd,omitempty" jsonschema:"Working directory for the child process."`
	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty" jsonschema:"Timeout in seconds. Default: 3600."`
}

func (h *handler) installHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params installParams) (*sdkmcp.CallToolResult, any, error) {
	res := h.engine.Install(ctx, command.InstallRequest{
		JDKURL:         params.JDKURL,
		AntURL:         params.AntURL,
		CodeQLURL:      params.CodeQLURL,
		ExePath:        params.ExePath,
		Cwd:            params.Cwd,
		TimeoutSeconds: params.TimeoutSeconds,
	})
	return resultRecord(res)
}

type databaseParams struct {
	Target         string   `json:"target" jsonschema:"Path to the JAR, WAR, or ZIP to build a database from."`
	Decompiler     string   `json:"decompiler,omitempty" jsonschema:"Decompiler to use: procyon or fernflower."`
	ExtraSrcDir    string   `json:"extra_src_dir,omitempty" jsonschema:"Additional source directory to include."`
	Deps           string   `json:"deps,omitempty" jsonschema:"Dependency handling: none or all. Leave empty for the binary's interactive prompt."`
	Goroutine      bool     `json:"goroutine,omitempty" jsonschema:"Enable the binary's parallel mode."`
	MaxGoroutines  *int     `json:"max_goroutines,omitempty" jsonschema:"Parallelism limit passed to the binary."`
	Threads        *int     `json:"threads,omitempty" jsonschema:"Thread count passed to the binary."`
	CleanCache     bool     `json:"clean_cache,omitempty" jsonschema:"Clear the binary's cache before running."`
	ExePath        string   `json:"exe_path,omitempty" jsonschema:"Override the configured executable path."`
	Cwd            string   `json:"cwd,omitempty" jsonschema:"Working directory for the child process."`
	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty" jsonschema:"Timeout in seconds. Default: 72000."`
}

func (h *handler) databaseHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params databaseParams) (*sdkmcp.CallToolResult, any, error) {
	res := h.engine.CreateDatabase(ctx, command.DatabaseRequest{
		Target:         params.Target,
		Decompiler:     params.Decompiler,
		ExtraSrcDir:    params.ExtraSrcDir,
		Deps:           params.Deps,
		Goroutine:      params.Goroutine,
		MaxGoroutines:  params.MaxGoroutines,
		Threads:        params.Threads,
		CleanCache:     params.CleanCache,
		ExePath:        params.ExePath,
		Cwd:            params.Cwd,
		TimeoutSeconds: params.TimeoutSeconds,
	})
	return resultRecord(res)
}

type scanParams struct {
	DB             string   `json:"db,omitempty" jsonschema:"Path to the CodeQL database to scan."`
	QL             string   `json:"ql,omitempty" jsonschema:"Path to the query set to run."`
	Goroutine      bool     `json:"goroutine,omitempty" jsonschema:"Enable the binary's parallel mode."`
	MaxGoroutines  *int     `json:"max_goroutines,omitempty" jsonschema:"Parallelism limit passed to the binary."`
	Threads        *int     `json:"threads,omitempty" jsonschema:"Thread count passed to the binary."`
	CleanCache     bool     `json:"clean_cache,omitempty" jsonschema:"Clear the binary's cache before running."`
	ExePath        string   `json:"exe_path,omitempty" jsonschema:"Override the configured executable path."`
	Cwd            string   `json:"cwd,omitempty" jsonschema:"Working directory for the child process."`
	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty" jsonschema:"Timeout in seconds. Default: 720000."`
}

func (h *handler) scanHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params scanParams) (*sdkmcp.CallToolResult, any, error) {
	res := h.engine.Scan(ctx, command.ScanRequest{
		DB:             params.DB,
		QL:             params.QL,
		Goroutine:      params.Goroutine,
		MaxGoroutines:  params.MaxGoroutines,
		Threads:        params.Threads,
		CleanCache:     params.CleanCache,
		ExePath:        params.ExePath,
		Cwd:            params.Cwd,
		TimeoutSeconds: params.TimeoutSeconds,
	})
	return resultRecord(res)
}
