package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jansen-zhang20/covid-dashy-personal/core"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	src     contract.RecordSource
}

// requestConfig clones the base config and applies the overrides common to pipeline tools.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	cfg.Location = request.GetString("location", cfg.Location)
	cfg.Window = request.GetInt("window", cfg.Window)
	cfg.LagDays = request.GetInt("lag", cfg.LagDays)
	cfg.HorizonDays = request.GetInt("horizon", cfg.HorizonDays)
	return cfg
}

func (h *toolHandler) handleGetProjection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	if err := contract.RevalidatePipeline(cfg, request.GetString("rate", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid projection parameters: %v", err)), nil
	}

	records, err := h.src.Fetch(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load case data: %v", err)), nil
	}
	params, records := cfg.PipelineParams(cfg.Location, records)
	out, err := core.Run(records, params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("projection failed: %v", err)), nil
	}
	return jsonResult(out)
}

func (h *toolHandler) handleEstimateReff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	if m := request.GetString("mode", ""); m != "" {
		cfg.ReffMode = schema.ReffMode(strings.ToLower(strings.TrimSpace(m)))
	}
	if _, ok := schema.ValidReffModes[cfg.ReffMode]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid mode %q. must be point, series", cfg.ReffMode)), nil
	}
	if err := contract.RevalidatePipeline(cfg, ""); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid estimate parameters: %v", err)), nil
	}

	records, err := h.src.Fetch(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load case data: %v", err)), nil
	}
	params, records := cfg.PipelineParams(cfg.Location, records)
	series, est, err := core.Estimate(records, params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("estimate failed: %v", err)), nil
	}
	if params.ReffMode == schema.SeriesReff {
		return jsonResult(series)
	}
	return jsonResult(est)
}

func (h *toolHandler) handleListLocations(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.src.Fetch(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load case data: %v", err)), nil
	}
	return jsonResult(core.Locations(records))
}

func (h *toolHandler) handleListScenarios(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.baseCfg.Scenarios)
}

// jsonResult wraps v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
