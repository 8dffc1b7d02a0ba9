package domain

import "github.com/shopspring/decimal"

// RotationState is a state of the pre-trade balance rotation machine.
type RotationState string

const (
	RotationCheckBalance RotationState = "CHECK_BALANCE"
	RotationSeekSource   RotationState = "SEEK_SOURCE"
	RotationTransferIn   RotationState = "TRANSFER_IN"
	RotationDone         RotationState = "DONE"
	RotationFailed       RotationState = "FAILED"
)

// Terminal reports whether the state ends the machine.
func (s RotationState) Terminal() bool {
	return s == RotationDone || s == RotationFailed
}

// RotationResult is the outcome of one rotation run for one opportunity.
type RotationResult struct {
	State RotationState
	// Path lists the states the machine passed through, terminal state last.
	Path []RotationState
	// SourceVenue is set when a transfer was attempted, successful or not.
	SourceVenue string
	// Shortfall is the amount that had to be moved to the sell venue;
	// zero when the balance was already sufficient.
	Shortfall decimal.Decimal
	// Reason explains a FAILED terminal state.
	Reason string
}

// Succeeded reports whether the sell venue ended up funded.
func (r RotationResult) Succeeded() bool {
	return r.State == RotationDone
}
