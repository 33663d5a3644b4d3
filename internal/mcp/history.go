package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectParams struct {
	RunID string `json:"run_id" jsonschema:"Run identifier returned by an execution tool."`
}

func (h *handler) inspectHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params inspectParams) (*sdkmcp.CallToolResult, any, error) {
	run, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("loading run %s: %v", params.RunID, err))
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return errorResult("encoding run: " + err.Error())
	}
	return textResult(string(data))
}

type runsParams struct {
	Limit *int `json:"limit,omitempty" jsonschema:"Maximum number of runs to list. Default: 10."`
}

func (h *handler) runsHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params runsParams) (*sdkmcp.CallToolResult, any, error) {
	limit := 10
	if params.Limit != nil && *params.Limit > 0 {
		limit = *params.Limit
	}

	sums, err := h.store.Recent(limit)
	if err != nil {
		return errorResult("listing runs: " + err.Error())
	}
	if len(sums) == 0 {
		return textResult("No runs recorded yet.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Runs (%d):\n", len(sums))
	for _, s := range sums {
		status := "exit ?"
		switch {
		case s.TimedOut:
			status = "timed out"
		case s.ExitCode != nil:
			status = fmt.Sprintf("exit %d", *s.ExitCode)
		}
		fmt.Fprintf(&b, "  %s  %-9s %-10s %s (%s)\n",
			s.StartedAt.Format("2006-01-02 15:04:05"), s.Tool, status, s.ID, s.Duration.Round(10*time.Millisecond))
	}
	return textResult(b.String())
}
