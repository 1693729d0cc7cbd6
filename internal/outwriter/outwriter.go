// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteProjection prints a projection using the configured output format.
func (ow *OutWriter) WriteProjection(out schema.OutputSeries, cfg *contract.Config, duration time.Duration) error {
	return WriteProjectionResults(out, cfg, duration)
}

// WriteReff prints an R_eff series using the configured output format.
func (ow *OutWriter) WriteReff(series schema.Series, est schema.ReffEstimate, cfg *contract.Config) error {
	return WriteReffResults(series, est, cfg)
}

// WriteLocations prints the location summaries using the configured output format.
func (ow *OutWriter) WriteLocations(summaries []schema.LocationSummary, cfg *contract.Config) error {
	return WriteLocationResults(summaries, cfg)
}

// WriteScenarios prints the configured growth rate scenarios.
func (ow *OutWriter) WriteScenarios(scenarios map[string]float64, cfg *contract.Config) error {
	return WriteScenarioResults(scenarios, cfg)
}

// GetMaxCaptionWidth calculates how wide the caption under a table may run
// based on the terminal width.
func GetMaxCaptionWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	if termWidth < 40 {
		return 40
	}
	if termWidth > 120 {
		return 120
	}
	return termWidth
}
