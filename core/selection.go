package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// ValidateSelectionEvent reports why an event cannot be applied, if it cannot.
func ValidateSelectionEvent(ev schema.SelectionEvent, scenarios map[string]float64) error {
	switch ev.Kind {
	case schema.SelectEstimated:
		return nil
	case schema.SelectCustom:
		if err := ValidateRate(ev.Value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
		}
		return nil
	case schema.SelectScenario:
		if _, ok := scenarios[ev.Scenario]; !ok {
			return fmt.Errorf("%w: %w %q", ErrInvalidSelection, ErrUnknownScenario, ev.Scenario)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSelection, ev.Kind)
	}
}

// ApplySelection returns the selection that results from ev. Events that fail
// validation leave the state as it was.
func ApplySelection(state schema.Selection, ev schema.SelectionEvent, scenarios map[string]float64) schema.Selection {
	if ValidateSelectionEvent(ev, scenarios) != nil {
		return state
	}
	switch ev.Kind {
	case schema.SelectCustom:
		return schema.Selection{Source: schema.CustomRate, CustomValue: ev.Value}
	case schema.SelectScenario:
		return schema.Selection{Source: schema.ScenarioRate, Scenario: ev.Scenario}
	default:
		return schema.DefaultSelection()
	}
}

// ResolveRate turns a selection into the numeric rate handed to the projector.
func ResolveRate(sel schema.Selection, est schema.ReffEstimate, scenarios map[string]float64) (schema.RateChoice, error) {
	switch sel.Source {
	case schema.EstimatedRate, "":
		if est.Value == nil {
			return schema.RateChoice{}, ErrUndefinedEstimate
		}
		if err := ValidateRate(*est.Value); err != nil {
			return schema.RateChoice{}, fmt.Errorf("estimated rate: %w", err)
		}
		return schema.RateChoice{Source: schema.EstimatedRate, Value: *est.Value}, nil
	case schema.CustomRate:
		if err := ValidateRate(sel.CustomValue); err != nil {
			return schema.RateChoice{}, err
		}
		return schema.RateChoice{Source: schema.CustomRate, Value: sel.CustomValue}, nil
	case schema.ScenarioRate:
		v, ok := scenarios[sel.Scenario]
		if !ok {
			return schema.RateChoice{}, fmt.Errorf("%w %q", ErrUnknownScenario, sel.Scenario)
		}
		if err := ValidateRate(v); err != nil {
			return schema.RateChoice{}, fmt.Errorf("scenario %q: %w", sel.Scenario, err)
		}
		return schema.RateChoice{Source: schema.ScenarioRate, Scenario: sel.Scenario, Value: v}, nil
	default:
		return schema.RateChoice{}, fmt.Errorf("unknown rate source %q", sel.Source)
	}
}

// ParseRateSource parses the rate flag: "estimated", "custom", "custom:<value>",
// "scenario:<name>" or a bare scenario name.
func ParseRateSource(s string, scenarios map[string]float64) (schema.Selection, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	switch {
	case lower == "" || lower == string(schema.EstimatedRate):
		return schema.DefaultSelection(), nil
	case lower == string(schema.CustomRate):
		return schema.Selection{Source: schema.CustomRate, CustomValue: schema.DefaultCustomRate}, nil
	case strings.HasPrefix(lower, "custom:"):
		v, err := strconv.ParseFloat(strings.TrimSpace(s[len("custom:"):]), 64)
		if err != nil {
			return schema.Selection{}, fmt.Errorf("%w: %q is not a number", ErrInvalidRate, s[len("custom:"):])
		}
		if err := ValidateRate(v); err != nil {
			return schema.Selection{}, err
		}
		return schema.Selection{Source: schema.CustomRate, CustomValue: v}, nil
	case strings.HasPrefix(lower, "scenario:"):
		lower = strings.TrimSpace(lower[len("scenario:"):])
	}

	if _, ok := scenarios[lower]; !ok {
		return schema.Selection{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownScenario, lower,
			strings.Join(ScenarioNames(scenarios), ", "))
	}
	return schema.Selection{Source: schema.ScenarioRate, Scenario: lower}, nil
}

// ScenarioNames returns the scenario names in sorted order.
func ScenarioNames(scenarios map[string]float64) []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
