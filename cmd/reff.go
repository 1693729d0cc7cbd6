package cmd

import (
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/outwriter"
	"github.com/spf13/cobra"
)

// reffCmd prints the R_eff estimate without projecting.
var reffCmd = &cobra.Command{
	Use:   "reff",
	Short: "Estimate the effective reproduction number",
	Long: `Estimate R_eff from smoothed confirmed cases as (s[t]/s[t-lag])^(1/lag).

Modes:
  point   one estimate at the latest smoothed date (default)
  series  one estimate per date; see --reff-convention

Examples:
  # Latest NSW estimate
  casetrack reff --location NSW

  # Daily series for QLD as CSV
  casetrack reff --location QLD --reff-mode series --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		series, est, err := runEstimate(rootCtx, cfg, newSource())
		if err != nil {
			contract.LogFatal("Estimation failed", err)
		}
		if err := outwriter.NewOutWriter().WriteReff(series, est, cfg); err != nil {
			contract.LogFatal("Error writing estimate output", err)
		}
	},
}
