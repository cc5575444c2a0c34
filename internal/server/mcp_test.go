package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wethinkt/go-csvview/internal/dataset"
)

func newTestMCPServer(t *testing.T, allow, deny []string) (*MCPServer, string) {
	t.Helper()
	c, paths := newTestCatalog(t, map[string]string{"people.csv": peopleCSV})
	ms := NewMCPServer(c)
	ms.SetToolFilters(allow, deny)
	return ms, paths["people.csv"]
}

// callToolMayError connects a fresh client to ms and calls one tool.
// It returns nil if a transport-level error occurs (tool not found, etc.).
func callToolMayError(t *testing.T, ms *MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()

	ct, st := mcp.NewInMemoryTransports()
	if _, err := ms.server.Connect(ctx, st, nil); err != nil {
		t.Fatalf("server.Connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })

	result, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil
	}
	return result
}

func callTool(t *testing.T, ms *MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result := callToolMayError(t, ms, name, args)
	if result == nil {
		t.Fatalf("CallTool(%s) failed", name)
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) returned a tool error: %+v", name, result.Content)
	}
	return result
}

// parseToolResult extracts the JSON text from a CallToolResult and unmarshals it into v.
func parseToolResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	if err := json.Unmarshal([]byte(tc.Text), v); err != nil {
		t.Fatalf("unmarshal result: %v\nraw: %s", err, tc.Text)
	}
}

func TestMCP_ListDatasets(t *testing.T) {
	ms, path := newTestMCPServer(t, nil, nil)

	var out DatasetsResponse
	parseToolResult(t, callTool(t, ms, ToolListDatasets, nil), &out)
	if len(out.Datasets) != 1 {
		t.Fatalf("got %d datasets, want 1", len(out.Datasets))
	}
	if out.Datasets[0].Path != dataset.ID(path) || out.Datasets[0].Rows != 4 {
		t.Errorf("unexpected dataset %+v", out.Datasets[0])
	}
}

func TestMCP_DescribeColumns(t *testing.T) {
	ms, path := newTestMCPServer(t, nil, nil)

	var out describeColumnsOutput
	parseToolResult(t, callTool(t, ms, ToolDescribeColumns, map[string]any{"path": path}), &out)
	if len(out.Columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(out.Columns))
	}
	if out.Columns[2].Name != "city" || out.Columns[2].UniqueCount != 3 {
		t.Errorf("unexpected city profile %+v", out.Columns[2])
	}
}

func TestMCP_QueryRows(t *testing.T) {
	ms, path := newTestMCPServer(t, nil, nil)

	var out RowsResponse
	parseToolResult(t, callTool(t, ms, ToolQueryRows, map[string]any{
		"path":   path,
		"filter": "Paris",
		"sort":   "id",
		"desc":   true,
		"limit":  1,
	}), &out)

	if out.Total != 2 {
		t.Errorf("total = %d, want 2", out.Total)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(out.Rows))
	}
	if diff := cmp.Diff([]string{"4", "Dee", "Paris"}, out.Rows[0].Values); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if out.Rows[0].Index != 3 {
		t.Errorf("row index = %d, want 3", out.Rows[0].Index)
	}
}

func TestMCP_QueryRowsErrors(t *testing.T) {
	ms, path := newTestMCPServer(t, nil, nil)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing path", map[string]any{}},
		{"unknown dataset", map[string]any{"path": path + ".nope"}},
		{"unknown column", map[string]any{"path": path, "sort": "age"}},
		{"negative offset", map[string]any{"path": path, "offset": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callToolMayError(t, ms, ToolQueryRows, tt.args)
			if result != nil && !result.IsError {
				t.Error("expected a tool error")
			}
		})
	}
}

func TestMCP_ToolFilter_AllowList(t *testing.T) {
	ms, _ := newTestMCPServer(t, []string{ToolListDatasets}, nil)

	if result := callToolMayError(t, ms, ToolListDatasets, nil); result == nil || result.IsError {
		t.Error("list_datasets should be allowed")
	}
	if result := callToolMayError(t, ms, ToolDescribeColumns, nil); result != nil && !result.IsError {
		t.Error("describe_columns should not be allowed when only list_datasets is in allow list")
	}
}

func TestMCP_ToolFilter_DenyList(t *testing.T) {
	ms, path := newTestMCPServer(t, nil, []string{ToolQueryRows})

	if result := callToolMayError(t, ms, ToolDescribeColumns, map[string]any{"path": path}); result == nil || result.IsError {
		t.Error("describe_columns should be allowed")
	}
	if result := callToolMayError(t, ms, ToolQueryRows, map[string]any{"path": path}); result != nil && !result.IsError {
		t.Error("query_rows should be denied")
	}
}
