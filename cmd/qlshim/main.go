// Command qlshim exposes the codeql-n1ght binary as MCP tools.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/n1ght/qlshim"
	"github.com/n1ght/qlshim/internal/command"
	"github.com/n1ght/qlshim/internal/config"
	qlmcp "github.com/n1ght/qlshim/internal/mcp"
	"github.com/n1ght/qlshim/internal/report"
	"github.com/n1ght/qlshim/internal/runner"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("qlshim: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "mcp":
		err = mcpMain(args)
	case "exec":
		err = execMain(args)
	case "probe":
		err = probeMain(args)
	case "version":
		fmt.Println(qlshim.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "qlshim: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: qlshim <command> [flags] [args]

Commands:
  mcp         Start the MCP server
  exec        Run codeql-n1ght with the given arguments
  probe       Print the codeql-n1ght version (or help text)
  version     Print the qlshim version
  help        Show this help

Use "qlshim <command> -h" for command-specific flags.`)
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(qlmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return serve(ctx, *httpAddr)
}

func serve(ctx context.Context, httpAddr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sqlite := report.NewSQLiteStore(cfg.History.Path)
	defer sqlite.Close()
	store := report.NewLRUStore(cfg.HistorySize(), sqlite)

	engine := &command.Engine{
		Config: cfg,
		Runner: &runner.Runner{MaxOutput: cfg.MaxOutputBytes()},
		Store:  store,
	}

	server := qlmcp.NewServer(engine, store)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- exec ---

func execMain(args []string) error {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	exePath := fs.String("exe", "", "override the configured executable path")
	cwd := fs.String("cwd", "", "working directory for the child process")
	timeout := fs.Duration("timeout", 0, "override the default timeout (e.g. 30m)")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := newEngine()
	if err != nil {
		return err
	}

	res := engine.Exec(ctx, command.ExecRequest{
		Args:           fs.Args(),
		ExePath:        *exePath,
		Cwd:            *cwd,
		TimeoutSeconds: durationSeconds(*timeout),
	})
	return emit(res)
}

// --- probe ---

func probeMain(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	exePath := fs.String("exe", "", "override the configured executable path")
	timeout := fs.Duration("timeout", 0, "override the default timeout (e.g. 2m)")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := newEngine()
	if err != nil {
		return err
	}

	res := engine.Probe(ctx, command.ProbeRequest{
		ExePath:        *exePath,
		TimeoutSeconds: durationSeconds(*timeout),
	})
	return emit(res)
}

// --- shared ---

func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newEngine() (*command.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return &command.Engine{
		Config: cfg,
		Runner: &runner.Runner{MaxOutput: cfg.MaxOutputBytes()},
	}, nil
}

// durationSeconds converts a flag duration into the engine's
// fractional-second timeout override; zero means "use the default".
func durationSeconds(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	s := d.Seconds()
	return &s
}

// emit prints a result the way the wrapped binary would have, and
// exits non-zero when the process failed or never ran.
func emit(res *runner.Result) error {
	fmt.Print(res.Stdout)
	fmt.Fprint(os.Stderr, res.Stderr)

	if status := exitStatus(res); status != 0 {
		os.Exit(status)
	}
	return nil
}

// exitStatus maps a result to the shell exit status: the child's own
// code when it has one, 1 for timeouts, spawn failures, and
// signal-killed children (whose reported code is negative).
func exitStatus(res *runner.Result) int {
	switch {
	case res.TimedOut:
		return 1
	case res.ExitCode == nil:
		return 1
	case *res.ExitCode < 0:
		return 1
	default:
		return *res.ExitCode
	}
}
