// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the casetrack MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, src contract.RecordSource) *server.MCPServer {
	s := server.NewMCPServer(
		"Casetrack Projection Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		src:     src,
	}

	// --- 1. Tool: get_projection ---
	s.AddTool(mcp.NewTool("get_projection",
		mcp.WithDescription("Project daily COVID-19 cases for an Australian state or territory."),
		mcp.WithString("location", mcp.Description("State code such as NSW or VIC."), mcp.Required()),
		mcp.WithString("rate", mcp.Description("Growth rate source: estimated, custom:<value>, or a scenario name. Defaults to estimated.")),
		mcp.WithNumber("horizon", mcp.Description("Number of days to project.")),
		mcp.WithNumber("window", mcp.Description("Trailing smoothing window in days.")),
		mcp.WithNumber("lag", mcp.Description("Lag between infection generations in days.")),
	), h.handleGetProjection)

	// --- 2. Tool: estimate_reff ---
	s.AddTool(mcp.NewTool("estimate_reff",
		mcp.WithDescription("Estimate the effective reproduction number from smoothed case counts."),
		mcp.WithString("location", mcp.Description("State code such as NSW or VIC."), mcp.Required()),
		mcp.WithNumber("lag", mcp.Description("Lag between infection generations in days.")),
		mcp.WithString("mode", mcp.Description("point for the latest estimate, series for one per day."), mcp.Enum("point", "series")),
	), h.handleEstimateReff)

	// --- 3. Tool: list_locations ---
	s.AddTool(mcp.NewTool("list_locations",
		mcp.WithDescription("List the locations present in the case data with their date ranges."),
	), h.handleListLocations)

	// --- 4. Tool: list_scenarios ---
	s.AddTool(mcp.NewTool("list_scenarios",
		mcp.WithDescription("List the named growth rate scenarios that can be used as a rate."),
	), h.handleListScenarios)

	return s
}

// StartMCPServer starts the casetrack MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, src contract.RecordSource) error {
	s := NewMCPServer(baseCfg, src)
	return server.ServeStdio(s)
}
