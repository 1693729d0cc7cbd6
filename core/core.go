// Package core has the case pipeline: loading, smoothing, R_eff estimation, projection and assembly.
// Every function is a pure transform of its inputs and never mutates a caller's series.
package core

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// Params is the full set of knobs for one pipeline evaluation.
type Params struct {
	Location    string
	Window      int
	LagDays     int
	HorizonDays int
	Smoothing   schema.SmoothingMode
	ReffMode    schema.ReffMode
	Convention  schema.ReffConvention
	Cutoff      time.Time
	Selection   schema.Selection
	Scenarios   map[string]float64
}

// DefaultParams returns the canonical dashboard settings for a location.
func DefaultParams(location string) Params {
	return Params{
		Location:    location,
		Window:      schema.DefaultWindow,
		LagDays:     schema.DefaultLagDays,
		HorizonDays: schema.DefaultHorizonDays,
		Smoothing:   schema.DropSmoothing,
		ReffMode:    schema.PointReff,
		Convention:  schema.IncubationConvention,
		Selection:   schema.DefaultSelection(),
		Scenarios:   maps.Clone(schema.DefaultScenarios),
	}
}

// Run evaluates the whole pipeline for one location. Either a complete series or an error is returned.
//
// When the selected rate is not the estimate, missing history for the estimate is tolerated and reported as a nil
// Estimate.Value, since the projection does not depend on it.
func Run(records []schema.RawRecord, p Params) (schema.OutputSeries, error) {
	smoothed, err := prepare(records, p)
	if err != nil {
		return schema.OutputSeries{}, err
	}

	withReff, est, err := estimate(smoothed, p)
	estimated := p.Selection.Source == schema.EstimatedRate || p.Selection.Source == ""
	if err != nil {
		// Only missing history is tolerated when the projection does not use the estimate.
		if estimated || !errors.Is(err, ErrInsufficientHistory) {
			return schema.OutputSeries{}, err
		}
		withReff = smoothed
		last := smoothed.Rows[smoothed.LastSmoothed()]
		est = schema.ReffEstimate{Date: last.Date, LagDays: p.LagDays}
	}

	rate, err := ResolveRate(p.Selection, est, p.Scenarios)
	if err != nil {
		return schema.OutputSeries{}, err
	}

	projected, err := Project(withReff, rate.Value, p.HorizonDays, p.LagDays)
	if err != nil {
		return schema.OutputSeries{}, err
	}
	rows, err := Assemble(withReff, projected)
	if err != nil {
		return schema.OutputSeries{}, err
	}

	out := schema.OutputSeries{
		Location:    smoothed.Location,
		Title:       Title(smoothed.Location),
		Window:      p.Window,
		LagDays:     p.LagDays,
		HorizonDays: p.HorizonDays,
		Estimate:    est,
		Rate:        rate,
		Rows:        rows,
	}
	out.Caption = Caption(out)
	return out, nil
}

// Estimate loads, smooths and estimates R_eff for one location without projecting.
func Estimate(records []schema.RawRecord, p Params) (schema.Series, schema.ReffEstimate, error) {
	smoothed, err := prepare(records, p)
	if err != nil {
		return schema.Series{}, schema.ReffEstimate{}, err
	}
	return estimate(smoothed, p)
}

// prepare loads and smooths one location, requiring at least one smoothed row.
func prepare(records []schema.RawRecord, p Params) (schema.Series, error) {
	series, err := Load(records, p.Location)
	if err != nil {
		return schema.Series{}, err
	}
	smoothed, err := Smooth(series, SmoothOptions{Window: p.Window, Mode: p.Smoothing, Cutoff: p.Cutoff})
	if err != nil {
		return schema.Series{}, err
	}
	if smoothed.LastSmoothed() < 0 {
		return schema.Series{}, fmt.Errorf("%w: %s has fewer than %d observations in range",
			ErrInsufficientHistory, smoothed.Location, p.Window)
	}
	return smoothed, nil
}

// estimate attaches R_eff to the smoothed series according to the configured mode.
func estimate(smoothed schema.Series, p Params) (schema.Series, schema.ReffEstimate, error) {
	if p.ReffMode == schema.SeriesReff {
		withReff, err := EstimateSeries(smoothed, p.LagDays, p.Convention)
		if err != nil {
			return schema.Series{}, schema.ReffEstimate{}, err
		}
		last := withReff.Rows[withReff.LastSmoothed()]
		return withReff, schema.ReffEstimate{
			Date:    last.Date,
			LagDays: p.LagDays,
			Value:   schema.CloneFloat64(last.Reff),
		}, nil
	}

	est, err := EstimatePoint(smoothed, p.LagDays)
	if err != nil {
		return schema.Series{}, schema.ReffEstimate{}, err
	}
	withReff := smoothed.Clone()
	withReff.Rows[withReff.LastSmoothed()].Reff = schema.CloneFloat64(est.Value)
	return withReff, est, nil
}
