package core

import "errors"

// Pipeline errors. Callers should match them with errors.Is since most are wrapped with context.
var (
	ErrUnknownLocation       = errors.New("unknown location")
	ErrDuplicateDate         = errors.New("duplicate date")
	ErrInvalidWindow         = errors.New("window must be a positive number of days")
	ErrInvalidLag            = errors.New("lag must be a positive number of days")
	ErrInsufficientHistory   = errors.New("insufficient history")
	ErrEmptySeries           = errors.New("series has no smoothed values")
	ErrInvalidRate           = errors.New("growth rate must be a positive finite number")
	ErrInvalidHorizon        = errors.New("horizon must not be negative")
	ErrUndefinedEstimate     = errors.New("estimated R_eff is undefined for this series")
	ErrOverlappingProjection = errors.New("projection overlaps historical dates")
	ErrUnknownScenario       = errors.New("unknown scenario")
	ErrInvalidSelection      = errors.New("invalid selection event")
	ErrInvalidConvention     = errors.New("invalid R_eff convention")
	ErrProjectionOverflow    = errors.New("projected cases exceed the representable range")
)
