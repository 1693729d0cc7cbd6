package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2022, 3, d, 0, 0, 0, 0, time.UTC)
}

func sampleOutput() schema.OutputSeries {
	return schema.OutputSeries{
		Location:    "NSW",
		Title:       "Projected NSW COVID-19 cases",
		Caption:     "Projected cases are based on an estimated current R_eff of 1.04 as at 10 March 2022.",
		Window:      7,
		LagDays:     5,
		HorizonDays: 1,
		Estimate:    schema.ReffEstimate{Date: day(10), LagDays: 5, Value: schema.Float64Ptr(1.04)},
		Rate:        schema.RateChoice{Source: schema.EstimatedRate, Value: 1.04},
		Rows: []schema.OutputRow{
			{Date: day(9), RawCases: schema.Int64Ptr(90)},
			{Date: day(10), RawCases: schema.Int64Ptr(120), SmoothCases: schema.Int64Ptr(100), Reff: schema.Float64Ptr(1.04)},
			{Date: day(11), ProjectedCases: schema.Int64Ptr(101), ProjectedReff: schema.Float64Ptr(1.04)},
		},
	}
}

func TestWriteCSVResultsForProjection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForProjection(&buf, sampleOutput().Rows, createFormatters(2)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,raw_cases,smooth_cases,reff,projected_cases,projected_reff", lines[0])
	assert.Equal(t, "2022-03-09,90,,,,", lines[1])
	assert.Equal(t, "2022-03-10,120,100,1.04,,", lines[2])
	assert.Equal(t, "2022-03-11,,,,101,1.04", lines[3])
}

func TestToJSONProjection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, toJSONProjection(sampleOutput())))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "NSW", doc["location"])
	assert.Equal(t, "2022-03-10", doc["estimate_at"])
	assert.InDelta(t, 1.04, doc["estimate"], 1e-9)

	rows := doc["rows"].([]any)
	require.Len(t, rows, 3)
	first := rows[0].(map[string]any)
	assert.Equal(t, "2022-03-09", first["date"])
	assert.Nil(t, first["smooth_cases"])
	last := rows[2].(map[string]any)
	assert.InDelta(t, 101, last["projected_cases"], 1e-9)
}

func TestWriteProjectionTable(t *testing.T) {
	cfg := &contract.Config{Precision: 2, Width: 60, CacheBackend: schema.NoneBackend}
	var buf bytes.Buffer
	require.NoError(t, writeProjectionTable(&buf, sampleOutput(), cfg, createFormatters(2), time.Second))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Projected NSW COVID-19 cases\n"))
	assert.Contains(t, out, "2022-03-11")
	assert.Contains(t, out, "101")
	assert.Contains(t, out, "Stable")

	// The caption wraps at the configured width.
	flat := strings.Join(strings.Fields(out), " ")
	assert.Contains(t, flat, "estimated current R_eff of 1.04")
	assert.Contains(t, flat, "Cache backend: none")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "R_eff of") || strings.Contains(line, "as at") {
			assert.LessOrEqual(t, len(line), 60, line)
		}
	}
}

func TestWriteProjectionResultsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	cfg := &contract.Config{Precision: 1, Output: schema.CSVOut, OutputFile: path}
	require.NoError(t, WriteProjectionResults(sampleOutput(), cfg, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2022-03-10,120,100,1.0,,")
}

func TestWriteProjectionResultsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path}
	require.NoError(t, WriteProjectionResults(sampleOutput(), cfg, 0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteReffTable(t *testing.T) {
	series := schema.Series{Location: "VIC", Rows: []schema.SeriesRow{
		{Date: day(9), RawCases: 10},
		{Date: day(10), RawCases: 12, SmoothCases: schema.Int64Ptr(11), Reff: schema.Float64Ptr(1.3)},
	}}

	var buf bytes.Buffer
	est := schema.ReffEstimate{Date: day(10), LagDays: 5, Value: schema.Float64Ptr(1.3)}
	require.NoError(t, writeReffTable(&buf, series, est, createFormatters(2)))
	assert.Contains(t, buf.String(), "Surging")
	assert.Contains(t, buf.String(), "VIC R_eff is 1.30 as at 10 March 2022 (5 day lag)")

	buf.Reset()
	require.NoError(t, writeReffTable(&buf, series, schema.ReffEstimate{Date: day(10), LagDays: 5}, createFormatters(2)))
	assert.Contains(t, buf.String(), "VIC R_eff is undefined as at 10 March 2022")
}

func TestWriteCSVResultsForReff(t *testing.T) {
	series := schema.Series{Location: "VIC", Rows: []schema.SeriesRow{
		{Date: day(9), RawCases: 10},
		{Date: day(10), RawCases: 12, SmoothCases: schema.Int64Ptr(11), Reff: schema.Float64Ptr(1.256)},
	}}
	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForReff(&buf, series, createFormatters(2)))
	assert.Equal(t, "date,raw_cases,smooth_cases,reff\n2022-03-09,10,,\n2022-03-10,12,11,1.26\n", buf.String())
}

func TestWriteLocationAndScenarioResults(t *testing.T) {
	dir := t.TempDir()
	summaries := []schema.LocationSummary{{Location: "NSW", Rows: 3, FirstDate: day(1), LastDate: day(3)}}

	locPath := filepath.Join(dir, "locations.json")
	require.NoError(t, WriteLocationResults(summaries, &contract.Config{Output: schema.JSONOut, OutputFile: locPath}))
	data, err := os.ReadFile(locPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"first_date": "2022-03-01"`)

	scenPath := filepath.Join(dir, "scenarios.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: scenPath, Precision: 2}
	require.NoError(t, WriteScenarioResults(map[string]float64{"worse": 1.35, "stable": 1.02}, cfg))
	data, err = os.ReadFile(scenPath)
	require.NoError(t, err)
	assert.Equal(t, "name,value\nstable,1.02\nworse,1.35\n", string(data))

	assert.Error(t, WriteLocationResults(summaries, &contract.Config{Output: schema.ParquetOut, OutputFile: locPath}))
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "", wrapText("   ", 10))
	assert.Equal(t, "one two\nthree", wrapText("one two three", 8))
	assert.Equal(t, "unbreakableword", wrapText("unbreakableword", 4))
}

func TestGetMaxCaptionWidth(t *testing.T) {
	assert.Equal(t, 40, GetMaxCaptionWidth(&contract.Config{Width: 20}))
	assert.Equal(t, 100, GetMaxCaptionWidth(&contract.Config{Width: 100}))
	assert.Equal(t, 120, GetMaxCaptionWidth(&contract.Config{Width: 300}))
}
