package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the definite outcome of one transfer call.
type TransferStatus string

const (
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
	// TransferUnresolved marks a call whose outcome could not be
	// determined (deadline hit mid-flight); it needs manual reconciliation.
	TransferUnresolved TransferStatus = "unresolved"
	// TransferSkipped marks a dry-run: the transfer was planned but not sent.
	TransferSkipped TransferStatus = "skipped"
)

// TransferRecord is one journaled transfer attempt, execution or rotation.
type TransferRecord struct {
	ID         int64
	Symbol     string
	FromVenue  string
	ToVenue    string
	Amount     decimal.Decimal
	Address    string
	Status     TransferStatus
	Reason     string
	NetProfit  decimal.Decimal
	ExecutedAt time.Time
}
