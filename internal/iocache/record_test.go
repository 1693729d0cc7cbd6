package iocache

import (
	"errors"
	"testing"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleOutput() schema.OutputSeries {
	est := 1.08
	return schema.OutputSeries{
		Location:    "NSW",
		Window:      7,
		LagDays:     5,
		HorizonDays: 1,
		Estimate:    schema.ReffEstimate{Date: day(10), LagDays: 5, Value: &est},
		Rate:        schema.RateChoice{Source: schema.ScenarioRate, Scenario: "stable", Value: 1.02},
		Rows: []schema.OutputRow{
			{Date: day(10), RawCases: schema.Int64Ptr(100), SmoothCases: schema.Int64Ptr(98), Reff: &est},
			{Date: day(11), ProjectedCases: schema.Int64Ptr(100)},
		},
	}
}

func TestNewRunRecord(t *testing.T) {
	cfg := &contract.Config{Source: "data.csv", Smoothing: schema.DropSmoothing, RateSpec: "stable"}
	now := time.Date(2022, 3, 20, 8, 0, 0, 0, time.FixedZone("AEDT", 11*3600))

	run := NewRunRecord(sampleOutput(), cfg, now)
	assert.Equal(t, "NSW", run.Location)
	assert.Equal(t, now.UTC(), run.CreatedAt)
	assert.Equal(t, day(10), run.AsOf)
	assert.Equal(t, int32(7), run.Window)
	assert.Equal(t, string(schema.ScenarioRate), run.RateSource)
	require.NotNil(t, run.Scenario)
	assert.Equal(t, "stable", *run.Scenario)
	require.NotNil(t, run.EstimatedReff)
	assert.InDelta(t, 1.08, *run.EstimatedReff, 1e-9)
	require.NotNil(t, run.ConfigParams)
	assert.Contains(t, *run.ConfigParams, `"rate":"stable"`)
}

func TestRecordForecastRun(t *testing.T) {
	out := sampleOutput()
	cfg := &contract.Config{}

	store := &MockRunStore{}
	store.On("BeginRun", mock.AnythingOfType("schema.ForecastRunRecord")).Return("run-1", nil)
	store.On("RecordPoints", "run-1", out.Rows).Return(nil)

	runID, err := RecordForecastRun(store, out, cfg)
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
	store.AssertExpectations(t)
}

func TestRecordForecastRunErrors(t *testing.T) {
	out := sampleOutput()
	cfg := &contract.Config{}

	runID, err := RecordForecastRun(nil, out, cfg)
	require.NoError(t, err)
	assert.Empty(t, runID)

	failing := &MockRunStore{}
	failing.On("BeginRun", mock.Anything).Return("", errors.New("locked"))
	_, err = RecordForecastRun(failing, out, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin run")
	failing.AssertNotCalled(t, "RecordPoints", mock.Anything, mock.Anything)
}
