package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wethinkt/go-csvview/internal/profile"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/version"
)

// Tool names.
const (
	ToolListDatasets    = "list_datasets"
	ToolDescribeColumns = "describe_columns"
	ToolQueryRows       = "query_rows"
)

// MCPServer exposes a catalog as MCP tools.
type MCPServer struct {
	server     *mcp.Server
	catalog    *Catalog
	allowTools map[string]bool
	denyTools  map[string]bool
}

// NewMCPServer creates an MCP server over catalog. Tools are registered by
// SetToolFilters.
func NewMCPServer(catalog *Catalog) *MCPServer {
	tuilog.Log.Info("NewMCPServer: creating MCP server")
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "csvview",
		Version: version.Get(),
	}, nil)

	return &MCPServer{
		server:  server,
		catalog: catalog,
	}
}

// SetToolFilters configures which tools are allowed or denied and then registers the tools.
func (ms *MCPServer) SetToolFilters(allow, deny []string) {
	if len(allow) > 0 {
		ms.allowTools = make(map[string]bool)
		for _, t := range allow {
			ms.allowTools[strings.TrimSpace(t)] = true
		}
	}
	if len(deny) > 0 {
		ms.denyTools = make(map[string]bool)
		for _, t := range deny {
			ms.denyTools[strings.TrimSpace(t)] = true
		}
	}

	ms.registerTools()
}

// isToolAllowed checks if a tool should be registered.
func (ms *MCPServer) isToolAllowed(name string) bool {
	if ms.denyTools != nil && ms.denyTools[name] {
		return false
	}
	if ms.allowTools != nil && !ms.allowTools[name] {
		return false
	}
	return true
}

func (ms *MCPServer) registerTools() {
	if ms.isToolAllowed(ToolListDatasets) {
		mcp.AddTool(ms.server, &mcp.Tool{
			Name:        ToolListDatasets,
			Description: "List the loaded datasets with their row counts and header columns",
		}, ms.handleListDatasets)
	}

	if ms.isToolAllowed(ToolDescribeColumns) {
		mcp.AddTool(ms.server, &mcp.Tool{
			Name:        ToolDescribeColumns,
			Description: "Describe the columns of a dataset: inferred type, distinct values, empty count and range",
		}, ms.handleDescribeColumns)
	}

	if ms.isToolAllowed(ToolQueryRows) {
		mcp.AddTool(ms.server, &mcp.Tool{
			Name: ToolQueryRows,
			Description: "Filter and sort a dataset and return a window of rows. " +
				"filter is a case-sensitive substring; column and sort take a header name or 0-based index. " +
				"At most 1000 rows are returned per call.",
		}, ms.handleQueryRows)
	}
}

type listDatasetsInput struct{}

type describeColumnsInput struct {
	Path string `json:"path"`
}

type describeColumnsOutput struct {
	Path    string           `json:"path"`
	Columns []profile.Column `json:"columns"`
}

type queryRowsInput struct {
	Path   string `json:"path"`
	Filter string `json:"filter,omitempty"`
	Column string `json:"column,omitempty"`
	Sort   string `json:"sort,omitempty"`
	Desc   bool   `json:"desc,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func (ms *MCPServer) handleListDatasets(ctx context.Context, req *mcp.CallToolRequest, _ listDatasetsInput) (*mcp.CallToolResult, DatasetsResponse, error) {
	output := DatasetsResponse{Datasets: ms.catalog.Datasets()}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleDescribeColumns(ctx context.Context, req *mcp.CallToolRequest, input describeColumnsInput) (*mcp.CallToolResult, describeColumnsOutput, error) {
	if input.Path == "" {
		return nil, describeColumnsOutput{}, errors.New("path is required")
	}
	cols, err := ms.catalog.Profile(input.Path)
	if err != nil {
		return nil, describeColumnsOutput{}, err
	}
	store, err := ms.catalog.Store(input.Path)
	if err != nil {
		return nil, describeColumnsOutput{}, err
	}
	output := describeColumnsOutput{Path: store.Path, Columns: cols}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleQueryRows(ctx context.Context, req *mcp.CallToolRequest, input queryRowsInput) (*mcp.CallToolResult, RowsResponse, error) {
	if input.Path == "" {
		return nil, RowsResponse{}, errors.New("path is required")
	}
	if input.Offset < 0 || input.Limit < 0 {
		return nil, RowsResponse{}, errors.New("offset and limit must be non-negative")
	}
	store, err := ms.catalog.Store(input.Path)
	if err != nil {
		return nil, RowsResponse{}, err
	}
	q, err := buildQuery(store, input.Filter, input.Column, input.Sort, input.Desc)
	if err != nil {
		return nil, RowsResponse{}, err
	}
	rows, err := ms.catalog.Query(input.Path, q)
	if err != nil {
		return nil, RowsResponse{}, err
	}
	end := 0
	if input.Limit > 0 {
		end = input.Offset + input.Limit
	}
	start, end := clampRange(input.Offset, end)
	output := buildRows(rows, q, start, end, 0)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

// RunStdio serves MCP over stdin/stdout, logging the protocol to stderr.
func (ms *MCPServer) RunStdio(ctx context.Context) error {
	return ms.server.Run(ctx, &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr})
}

// RunHTTP serves MCP over SSE on host:port until ctx is canceled.
func (ms *MCPServer) RunHTTP(ctx context.Context, host string, port int, auth Auth) error {
	sseHandler := mcp.NewSSEHandler(func(req *http.Request) *mcp.Server { return ms.server }, nil)
	handler := auth.Middleware(sseHandler)

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	tuilog.Log.Info("MCP server listening", "addr", addr)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Server returns the underlying MCP server.
func (ms *MCPServer) Server() *mcp.Server { return ms.server }

func formatJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
