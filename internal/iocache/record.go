package iocache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// runParams is the subset of settings stored with each run for reproducibility.
type runParams struct {
	Source     string `json:"source"`
	Smoothing  string `json:"smoothing"`
	ReffMode   string `json:"reff_mode"`
	Convention string `json:"reff_convention"`
	CutoffDays int    `json:"cutoff_days"`
	RateSpec   string `json:"rate"`
}

// NewRunRecord builds the run header stored for a projection.
func NewRunRecord(out schema.OutputSeries, cfg *contract.Config, now time.Time) schema.ForecastRunRecord {
	run := schema.ForecastRunRecord{
		Location:    out.Location,
		CreatedAt:   now.UTC(),
		Window:      int32(out.Window),
		LagDays:     int32(out.LagDays),
		HorizonDays: int32(out.HorizonDays),
		RateSource:  string(out.Rate.Source),
		RateUsed:    out.Rate.Value,
	}
	if last, ok := out.LastHistorical(); ok {
		run.AsOf = last.Date
	}
	if out.Rate.Scenario != "" {
		scenario := out.Rate.Scenario
		run.Scenario = &scenario
	}
	run.EstimatedReff = schema.CloneFloat64(out.Estimate.Value)

	params, err := json.Marshal(runParams{
		Source:     cfg.Source,
		Smoothing:  string(cfg.Smoothing),
		ReffMode:   string(cfg.ReffMode),
		Convention: string(cfg.Convention),
		CutoffDays: cfg.CutoffDays,
		RateSpec:   cfg.RateSpec,
	})
	if err == nil {
		s := string(params)
		run.ConfigParams = &s
	}
	return run
}

// RecordForecastRun stores the run header and all of its rows. A nil store is a no-op.
func RecordForecastRun(store contract.RunStore, out schema.OutputSeries, cfg *contract.Config) (string, error) {
	if store == nil {
		return "", nil
	}
	runID, err := store.BeginRun(NewRunRecord(out, cfg, time.Now()))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	if err := store.RecordPoints(runID, out.Rows); err != nil {
		return runID, fmt.Errorf("record points for run %s: %w", runID, err)
	}
	return runID, nil
}
