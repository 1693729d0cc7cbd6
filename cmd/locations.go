package cmd

import (
	"github.com/jansen-zhang20/covid-dashy-personal/core"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/outwriter"
	"github.com/spf13/cobra"
)

// locationsCmd lists the locations present in the source data.
var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List locations in the case data with row counts and date ranges",
	Long: `Show every state or territory code present in the source table,
with the number of daily rows and the first and last dates.

Examples:
  casetrack locations
  casetrack locations --source ./COVID_AU_state.csv --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		records, err := newSource().Fetch(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to load case data", err)
		}
		if err := outwriter.NewOutWriter().WriteLocations(core.Locations(records), cfg); err != nil {
			contract.LogFatal("Error writing locations output", err)
		}
	},
}

// scenariosCmd lists the configured scenario rates.
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the named growth rate scenarios",
	Long: `Show the named scenarios usable with --rate.

Scenarios are defined under "scenarios" in .casetrack.yaml and extend the
built-in stable (1.02) and worse (1.35) rates.

Examples:
  casetrack scenarios`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.NewOutWriter().WriteScenarios(cfg.Scenarios, cfg); err != nil {
			contract.LogFatal("Error writing scenarios output", err)
		}
	},
}
