package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/stepviz/core"
	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	src     contract.RecordSource
}

func (h *toolHandler) load(ctx context.Context) ([]schema.ExperimentDataPoint, error) {
	return core.LoadRecords(core.WithSuppressHeader(ctx), h.src)
}

func jsonResult(data any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleListExperiments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading records failed: %v", err)), nil
	}
	summaries := core.SummarizeExperiments(records)
	if summaries == nil {
		summaries = []schema.ExperimentSummary{}
	}
	return jsonResult(summaries), nil
}

func (h *toolHandler) handleListMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading records failed: %v", err)), nil
	}
	summaries := core.SummarizeMetrics(records)
	if summaries == nil {
		summaries = []schema.MetricSummary{}
	}
	return jsonResult(summaries), nil
}

func (h *toolHandler) handleGetChartData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := core.NormalizeSelection(contract.SplitList(request.GetString("experiment_ids", "")))
	if len(ids) == 0 {
		return mcp.NewToolResultError("experiment_ids is required"), nil
	}

	threshold := h.baseCfg.Threshold
	if _, ok := request.GetArguments()["threshold"]; ok {
		threshold = request.GetInt("threshold", 0)
		if threshold <= 0 || threshold > contract.MaxThreshold {
			return mcp.NewToolResultError(fmt.Sprintf("threshold must be between 1 and %d", contract.MaxThreshold)), nil
		}
	}

	records, err := h.load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading records failed: %v", err)), nil
	}

	ch := core.NewChannel(ctx, core.ChannelOptions{Threshold: threshold, QueueSize: h.baseCfg.QueueSize})
	defer ch.Close()

	state, err := ch.Wait(ctx, ch.Request(records, ids))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chart computation failed: %v", err)), nil
	}
	if state.Status == core.StatusError {
		return mcp.NewToolResultError(fmt.Sprintf("chart computation failed: %v", state.Err)), nil
	}

	if metric := request.GetString("metric", ""); metric != "" {
		series, ok := state.Result.Lookup(metric)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("metric '%s' has no data for the selected experiments", metric)), nil
		}
		return jsonResult([]schema.ChartRenderInput{core.BuildChartInput(series, state.Selection)}), nil
	}
	return jsonResult(core.BuildDashboard(state.Result, state.Selection)), nil
}
