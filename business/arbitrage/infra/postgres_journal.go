package infra

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	"github.com/crossarb/crossarb/internal/apperror"
)

const createTransfersTable = `
CREATE TABLE IF NOT EXISTS transfers (
	id BIGSERIAL PRIMARY KEY,
	executed_at TIMESTAMPTZ NOT NULL,
	symbol VARCHAR(20) NOT NULL,
	from_venue VARCHAR(50) NOT NULL,
	to_venue VARCHAR(50) NOT NULL,
	amount NUMERIC(30, 12) NOT NULL,
	address TEXT NOT NULL,
	status VARCHAR(20) NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	net_profit_usd NUMERIC(30, 12) NOT NULL DEFAULT 0
)`

const insertTransfer = `
INSERT INTO transfers
	(executed_at, symbol, from_venue, to_venue, amount, address, status, reason, net_profit_usd)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// PostgresJournal persists transfer records with pgx.
type PostgresJournal struct {
	pool *pgxpool.Pool
}

// NewPostgresJournal connects to the database and ensures the transfers
// table exists.
func NewPostgresJournal(ctx context.Context, databaseURL string) (*PostgresJournal, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, apperror.New(apperror.CodeJournalWriteFailed,
			apperror.WithCause(err),
			apperror.WithContext("connect to journal database"))
	}

	if _, err := pool.Exec(ctx, createTransfersTable); err != nil {
		pool.Close()
		return nil, apperror.New(apperror.CodeJournalWriteFailed,
			apperror.WithCause(err),
			apperror.WithContext("create transfers table"))
	}

	return &PostgresJournal{pool: pool}, nil
}

// Record implements app.Journal.
func (j *PostgresJournal) Record(ctx context.Context, rec domain.TransferRecord) error {
	_, err := j.pool.Exec(ctx, insertTransfer,
		rec.ExecutedAt,
		rec.Symbol,
		rec.FromVenue,
		rec.ToVenue,
		rec.Amount,
		rec.Address,
		string(rec.Status),
		rec.Reason,
		rec.NetProfit,
	)
	if err != nil {
		return apperror.New(apperror.CodeJournalWriteFailed, apperror.WithCause(err))
	}
	return nil
}

// Close releases the connection pool.
func (j *PostgresJournal) Close() error {
	j.pool.Close()
	return nil
}
