package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikihop/wikihop/internal/mcp"
	"github.com/wikihop/wikihop/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API or MCP server",
	Long: `Start the wikihop server.

By default this starts the HTTP API, which exposes:

  POST /paths    Find all shortest paths between two pages
  GET  /ok       Health check
  GET  /metrics  Prometheus metrics

With --mcp, it instead starts an MCP (Model Context Protocol) server on
stdio, so AI agents can query the graph through tools:

  wh_paths     Find all shortest paths between two pages
  wh_resolve   Resolve a title to its canonical page
  wh_status    Graph database statistics

Examples:
  wikihop serve                          # HTTP API on the configured address
  wikihop serve --addr :9000             # Override the listen address
  wikihop serve --mcp                    # MCP server with default tools
  wikihop serve --mcp --tools wh_paths   # Expose specific tools only
  wikihop serve --mcp --timeout 30m      # Auto-stop after 30 minutes idle
  wikihop serve --list-tools             # Show available MCP tools`,
	RunE: runServe,
}

var (
	serveAddr      string
	serveMCP       bool
	serveTools     string
	serveTimeout   string
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address for the HTTP API (default: config value)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of MCP tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "0", "MCP inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available MCP tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		fmt.Println("Available MCP tools:")
		fmt.Println()
		fmt.Println("  wh_paths     Find all shortest paths between two pages")
		fmt.Println("  wh_resolve   Resolve a title to its canonical page")
		fmt.Println("  wh_status    Graph database statistics")
		return nil
	}

	if serveMCP {
		return runServeMCP()
	}
	return runServeHTTP()
}

func runServeHTTP() error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := newLogger()
	srv := server.New(cfg, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting http server", "addr", cfg.Server.Addr, "database", st.Path())
	return srv.Run(ctx)
}

func runServeMCP() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	timeout, err := parseServeTimeout(serveTimeout)
	if err != nil {
		return err
	}

	var tools []string
	if serveTools != "" {
		for _, t := range strings.Split(serveTools, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tools = append(tools, t)
			}
		}
	}

	s, err := mcp.New(mcp.Config{
		DatabasePath: resolveDBPath(cfg),
		MaxPaths:     cfg.Search.MaxPaths,
		Tools:        tools,
		Timeout:      timeout,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(os.Stderr, "wikihop MCP server: tools=%s\n", strings.Join(s.ListTools(), ","))
	return s.ServeStdio()
}

func parseServeTimeout(value string) (time.Duration, error) {
	if value == "" || value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid --timeout %q: %w", value, err)
	}
	return d, nil
}
