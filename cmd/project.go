package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/core"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/iocache"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/outwriter"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// projectCmd runs the full pipeline for one location.
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project daily cases for a state or territory",
	Long: `Smooth confirmed cases, estimate R_eff and project cases forward.

The growth rate comes from --rate:
  estimated        the R_eff estimated from the last smoothed days (default)
  custom:<value>   any positive value, for example custom:1.2
  <scenario>       a named scenario such as stable or worse

Every projection is stored when a run backend is configured.

Examples:
  # Project NSW two weeks ahead with the estimated R_eff
  casetrack project --location NSW

  # Project VIC a month ahead under the worse scenario
  casetrack project --location VIC --horizon 30 --rate worse

  # Write the merged series as JSON
  casetrack project --output json --output-file nsw.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		out, err := runProjection(rootCtx, cfg, newSource())
		if err != nil {
			contract.LogFatal("Projection failed", err)
		}

		runID, err := iocache.RecordForecastRun(iocache.Manager.GetRunStore(), out, cfg)
		if err != nil {
			contract.LogWarn("Failed to record forecast run", err)
		} else if runID != "" {
			zap.L().Debug("recorded forecast run", zap.String("run_id", runID))
		}

		if err := outwriter.NewOutWriter().WriteProjection(out, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Error writing projection output", err)
		}
	},
}

// runProjection fetches the case table and evaluates the pipeline for cfg.Location.
func runProjection(ctx context.Context, cfg *contract.Config, src contract.RecordSource) (schema.OutputSeries, error) {
	records, err := src.Fetch(ctx)
	if err != nil {
		return schema.OutputSeries{}, fmt.Errorf("load case data: %w", err)
	}
	params, records := cfg.PipelineParams(cfg.Location, records)
	return core.Run(records, params)
}

// runEstimate fetches the case table and estimates R_eff for cfg.Location.
func runEstimate(ctx context.Context, cfg *contract.Config, src contract.RecordSource) (schema.Series, schema.ReffEstimate, error) {
	records, err := src.Fetch(ctx)
	if err != nil {
		return schema.Series{}, schema.ReffEstimate{}, fmt.Errorf("load case data: %w", err)
	}
	params, records := cfg.PipelineParams(cfg.Location, records)
	return core.Estimate(records, params)
}
