package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/server"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/watch"
)

// Environment variables read by `serve mcp` when the matching flag is unset.
const (
	EnvMCPAllowTools = "CSVVIEW_MCP_ALLOW_TOOLS"
	EnvMCPDenyTools  = "CSVVIEW_MCP_DENY_TOOLS"
)

var (
	serveHost     string
	servePort     int
	serveToken    string
	mcpPort       int
	mcpAllowTools []string
	mcpDenyTools  []string
)

var serveCmd = &cobra.Command{
	Use:   "serve FILES...",
	Short: "Serve files over a read-only HTTP API",
	Long: `Load FILES and serve them over HTTP.

Endpoints:
  GET /v1/datasets                  List loaded files
  GET /v1/datasets/columns?path=    Column profiles
  GET /v1/datasets/rows?path=       Filtered, sorted window of rows
  GET /v1/health                    Liveness
  GET /metrics                      Prometheus metrics

Authentication:
  Pass --token, set [server] token in the config, or export
  CSVVIEW_SERVER_TOKEN. Clients send "Authorization: Bearer <token>".
  Generate a token with: csvview serve token

Examples:
  csvview serve sales.csv
  csvview serve *.csv --port 9000 --token $(csvview serve token)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

var serveMcpCmd = &cobra.Command{
	Use:   "mcp FILES...",
	Short: "Start an MCP server for AI tool integration",
	Long: `Start an MCP (Model Context Protocol) server over FILES.

By default, runs on stdio for use with desktop MCP clients.
Use --port to serve over HTTP (SSE) instead.

Tools: list_datasets, describe_columns, query_rows

Examples:
  csvview serve mcp sales.csv
  csvview serve mcp sales.csv --port 8791 --token xyz
  csvview serve mcp sales.csv --deny-tools query_rows`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServeMCP,
}

var serveTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a secure authentication token",
	Long: `Generate a cryptographically secure random token for API/MCP authentication.

Examples:
  csvview serve token
  export CSVVIEW_SERVER_TOKEN=$(csvview serve token)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := server.GenerateSecureToken()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	serveCmd.PersistentFlags().StringVar(&serveHost, "host", "", "server host (default from config)")
	serveCmd.PersistentFlags().StringVar(&serveToken, "token", "", "bearer token (default: config or CSVVIEW_SERVER_TOKEN)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "server port (default from config)")

	serveMcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "run MCP over HTTP on this port")
	serveMcpCmd.Flags().StringSliceVar(&mcpAllowTools, "allow-tools", nil, "only register these tools")
	serveMcpCmd.Flags().StringSliceVar(&mcpDenyTools, "deny-tools", nil, "never register these tools")

	serveCmd.AddCommand(serveMcpCmd)
	serveCmd.AddCommand(serveTokenCmd)
}

// serverAuth picks the token source: flag, then config, then environment.
func serverAuth() server.Auth {
	return server.ResolveAuth(serveToken, cfg.Server.Token)
}

func serverConfig() server.Config {
	c := server.Config{Host: cfg.Server.Host, Port: cfg.Server.Port, Auth: serverAuth()}
	if serveHost != "" {
		c.Host = serveHost
	}
	if servePort != 0 {
		c.Port = servePort
	}
	return c
}

// interruptContext is canceled on the first interrupt.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt)
	go func() {
		<-ctx.Done()
		tuilog.Log.Info("Received interrupt signal, shutting down")
	}()
	return ctx, cancel
}

// loadCatalog loads paths and, when enabled, keeps them fresh until ctx ends.
func loadCatalog(ctx context.Context, paths []string) (*server.Catalog, error) {
	catalog := server.NewCatalog(datasetOptions(cfg), cfg.Profile.MaxUnique)
	if err := catalog.LoadAll(ctx, paths); err != nil {
		return nil, err
	}
	if cfg.Watch.Enabled {
		w, err := watch.New(cfg.Watch.DebounceDuration())
		if err != nil {
			tuilog.Log.Warn("File watching disabled", "error", err)
			return catalog, nil
		}
		go func() {
			defer w.Stop()
			catalog.Watch(ctx, w)
		}()
	}
	return catalog, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := interruptContext(cmd.Context())
	defer cancel()

	catalog, err := loadCatalog(ctx, args)
	if err != nil {
		return err
	}
	srvConfig := serverConfig()
	if err := srvConfig.Validate(); err != nil {
		return err
	}
	srv := server.NewHTTPServer(catalog, srvConfig)
	fmt.Fprintf(cmd.ErrOrStderr(), "Serving %d file(s)\n", len(catalog.Datasets()))
	if srvConfig.Auth.Enabled() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Authentication: bearer token required (from %s)\n", srvConfig.Auth.Source)
	}
	return srv.ListenAndServe(ctx)
}

// toolList returns flag values, falling back to a comma-separated env var.
func toolList(flag []string, env string) []string {
	if len(flag) > 0 {
		return flag
	}
	if v := os.Getenv(env); v != "" {
		return strings.Split(v, ",")
	}
	return nil
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := interruptContext(cmd.Context())
	defer cancel()

	catalog, err := loadCatalog(ctx, args)
	if err != nil {
		return err
	}
	ms := server.NewMCPServer(catalog)
	ms.SetToolFilters(toolList(mcpAllowTools, EnvMCPAllowTools), toolList(mcpDenyTools, EnvMCPDenyTools))

	if mcpPort > 0 {
		host := cfg.Server.Host
		if serveHost != "" {
			host = serveHost
		}
		return ms.RunHTTP(ctx, host, mcpPort, serverAuth())
	}
	tuilog.Log.Info("Starting MCP server on stdio", "files", len(args))
	return ms.RunStdio(ctx)
}
