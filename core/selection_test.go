package core

import (
	"testing"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplySelection tests the rate-source state transitions.
func TestApplySelection(t *testing.T) {
	scenarios := schema.DefaultScenarios
	state := schema.DefaultSelection()
	assert.Equal(t, schema.EstimatedRate, state.Source)

	state = ApplySelection(state, schema.SelectionEvent{Kind: schema.SelectCustom, Value: 1.5}, scenarios)
	assert.Equal(t, schema.Selection{Source: schema.CustomRate, CustomValue: 1.5}, state)

	state = ApplySelection(state, schema.SelectionEvent{Kind: schema.SelectScenario, Scenario: "worse"}, scenarios)
	assert.Equal(t, schema.Selection{Source: schema.ScenarioRate, Scenario: "worse"}, state)

	t.Run("invalid events keep state", func(t *testing.T) {
		invalid := []schema.SelectionEvent{
			{Kind: schema.SelectCustom, Value: 0},
			{Kind: schema.SelectCustom, Value: -3},
			{Kind: schema.SelectScenario, Scenario: "apocalypse"},
			{Kind: "reset"},
		}
		for _, ev := range invalid {
			assert.Equal(t, state, ApplySelection(state, ev, scenarios))
			assert.ErrorIs(t, ValidateSelectionEvent(ev, scenarios), ErrInvalidSelection)
		}
	})

	state = ApplySelection(state, schema.SelectionEvent{Kind: schema.SelectEstimated}, scenarios)
	assert.Equal(t, schema.DefaultSelection(), state)
}

// TestResolveRate tests turning a selection into a number.
func TestResolveRate(t *testing.T) {
	scenarios := map[string]float64{"stable": 1.02, "broken": -1}
	est := schema.ReffEstimate{Value: schema.Float64Ptr(1.08)}

	t.Run("estimated", func(t *testing.T) {
		got, err := ResolveRate(schema.DefaultSelection(), est, scenarios)
		require.NoError(t, err)
		assert.Equal(t, schema.RateChoice{Source: schema.EstimatedRate, Value: 1.08}, got)
	})

	t.Run("estimated but undefined", func(t *testing.T) {
		_, err := ResolveRate(schema.DefaultSelection(), schema.ReffEstimate{}, scenarios)
		assert.ErrorIs(t, err, ErrUndefinedEstimate)
	})

	t.Run("estimated zero", func(t *testing.T) {
		_, err := ResolveRate(schema.DefaultSelection(), schema.ReffEstimate{Value: schema.Float64Ptr(0)}, scenarios)
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("custom ignores estimate", func(t *testing.T) {
		got, err := ResolveRate(schema.Selection{Source: schema.CustomRate, CustomValue: 2}, schema.ReffEstimate{}, scenarios)
		require.NoError(t, err)
		assert.Equal(t, 2.0, got.Value)
		assert.Equal(t, schema.CustomRate, got.Source)
	})

	t.Run("scenario", func(t *testing.T) {
		got, err := ResolveRate(schema.Selection{Source: schema.ScenarioRate, Scenario: "stable"}, est, scenarios)
		require.NoError(t, err)
		assert.Equal(t, schema.RateChoice{Source: schema.ScenarioRate, Scenario: "stable", Value: 1.02}, got)
	})

	t.Run("unknown scenario", func(t *testing.T) {
		_, err := ResolveRate(schema.Selection{Source: schema.ScenarioRate, Scenario: "nope"}, est, scenarios)
		assert.ErrorIs(t, err, ErrUnknownScenario)
	})

	t.Run("scenario with invalid rate", func(t *testing.T) {
		_, err := ResolveRate(schema.Selection{Source: schema.ScenarioRate, Scenario: "broken"}, est, scenarios)
		assert.ErrorIs(t, err, ErrInvalidRate)
	})
}

// TestParseRateSource tests the rate flag syntax.
func TestParseRateSource(t *testing.T) {
	tests := []struct {
		in      string
		want    schema.Selection
		wantErr error
	}{
		{"", schema.DefaultSelection(), nil},
		{"estimated", schema.DefaultSelection(), nil},
		{"custom", schema.Selection{Source: schema.CustomRate, CustomValue: 2}, nil},
		{"custom:1.2", schema.Selection{Source: schema.CustomRate, CustomValue: 1.2}, nil},
		{"Custom: 0.9", schema.Selection{Source: schema.CustomRate, CustomValue: 0.9}, nil},
		{"stable", schema.Selection{Source: schema.ScenarioRate, Scenario: "stable"}, nil},
		{"Worse", schema.Selection{Source: schema.ScenarioRate, Scenario: "worse"}, nil},
		{"scenario:worse", schema.Selection{Source: schema.ScenarioRate, Scenario: "worse"}, nil},
		{"custom:abc", schema.Selection{}, ErrInvalidRate},
		{"custom:-1", schema.Selection{}, ErrInvalidRate},
		{"custom:0", schema.Selection{}, ErrInvalidRate},
		{"bogus", schema.Selection{}, ErrUnknownScenario},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRateSource(tt.in, schema.DefaultScenarios)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestScenarioNames tests scenario ordering.
func TestScenarioNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ScenarioNames(map[string]float64{"c": 1, "a": 1, "b": 1}))
}
