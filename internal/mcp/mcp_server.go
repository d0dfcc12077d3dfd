// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer configures the stepviz MCP server without starting it.
func NewMCPServer(baseCfg *contract.Config, src contract.RecordSource) *server.MCPServer {
	s := server.NewMCPServer(
		"stepviz Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		src:     src,
	}

	s.AddTool(mcp.NewTool("list_experiments",
		mcp.WithDescription("List every experiment in the record source with its record count, metrics and step range."),
	), h.handleListExperiments)

	s.AddTool(mcp.NewTool("list_metrics",
		mcp.WithDescription("List every metric in the record source with its value and step ranges."),
	), h.handleListMetrics)

	s.AddTool(mcp.NewTool("get_chart_data",
		mcp.WithDescription("Compute downsampled per-step chart data for the selected experiments, one chart per metric."),
		mcp.WithString("experiment_ids", mcp.Description("Comma-separated experiment ids to compare."), mcp.Required()),
		mcp.WithString("metric", mcp.Description("Only return the chart for this metric.")),
		mcp.WithNumber("threshold", mcp.Description("Maximum points per chart. Defaults to the configured threshold.")),
	), h.handleGetChartData)

	return s
}

// StartMCPServer serves the stepviz MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, src contract.RecordSource) error {
	s := NewMCPServer(baseCfg, src)
	return server.ServeStdio(s)
}
