package schema

// SelectionEventKind names the user actions that change the rate source.
type SelectionEventKind string

// All selection events supported.
const (
	SelectEstimated SelectionEventKind = "select_estimated"
	SelectCustom    SelectionEventKind = "select_custom"
	SelectScenario  SelectionEventKind = "select_scenario"
)

// Selection is the user's current choice of growth rate source.
// CustomValue is only meaningful for CustomRate and Scenario only for ScenarioRate.
type Selection struct {
	Source      RateSource `json:"source"`
	CustomValue float64    `json:"custom_value,omitempty"`
	Scenario    string     `json:"scenario,omitempty"`
}

// DefaultSelection starts every session on the estimated rate.
func DefaultSelection() Selection {
	return Selection{Source: EstimatedRate}
}

// SelectionEvent is a single user action.
type SelectionEvent struct {
	Kind     SelectionEventKind `json:"kind"`
	Value    float64            `json:"value,omitempty"`
	Scenario string             `json:"scenario,omitempty"`
}
