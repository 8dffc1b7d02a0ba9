package infra

import (
	"context"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
)

// NoopJournal is used when no journal database is configured.
type NoopJournal struct{}

// NewNoopJournal creates a NoopJournal.
func NewNoopJournal() *NoopJournal {
	return &NoopJournal{}
}

// Record implements app.Journal.
func (NoopJournal) Record(context.Context, domain.TransferRecord) error {
	return nil
}

// Close implements app.Journal.
func (NoopJournal) Close() error {
	return nil
}
