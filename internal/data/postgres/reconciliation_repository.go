// Package postgres provides the PostgreSQL implementation of the
// reconciliation repository. Compensation failures are written here so
// operators have a durable, queryable queue instead of grepping logs.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/reconciliation"
	"github.com/currency-swap-engine/internal/platform/persistence"
)

// ReconciliationRepository implements the reconciliation.Repository interface for PostgreSQL
type ReconciliationRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewReconciliationRepository creates a new PostgreSQL reconciliation repository
func NewReconciliationRepository(logger *slog.Logger, db *persistence.PostgresDB) reconciliation.Repository {
	return &ReconciliationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *ReconciliationRepository) WithTx(tx pgx.Tx) reconciliation.Repository {
	return &ReconciliationRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new unresolved reconciliation record
func (r *ReconciliationRepository) Create(ctx context.Context, record *reconciliation.Record) error {
	query := `
		INSERT INTO swap_reconciliation (user_id, correlation_id, reference, source_currency, source_balance, target_currency, target_balance, reason, detail, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		record.UserID,
		record.CorrelationID,
		record.Reference,
		string(record.SourceCurrency),
		record.SourceBalance.String(),
		string(record.TargetCurrency),
		record.TargetBalance.String(),
		record.Reason,
		record.Detail,
		record.Resolved,
		record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		r.logger.Error("Failed to create reconciliation record",
			"user_id", record.UserID.String(),
			"correlation_id", record.CorrelationID,
			"error", err,
		)
		return fmt.Errorf("failed to create reconciliation record: %w", err)
	}

	return nil
}

// GetUnresolved retrieves a batch of unresolved records ordered by creation
// time, oldest first, so the longest-outstanding inconsistencies surface
// first.
func (r *ReconciliationRepository) GetUnresolved(ctx context.Context, limit int) ([]*reconciliation.Record, error) {
	query := `
		SELECT id, user_id, correlation_id, reference, source_currency, source_balance::text, target_currency, target_balance::text, reason, detail, resolved, created_at, resolved_at
		FROM swap_reconciliation
		WHERE resolved = false
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.querier.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to get unresolved reconciliation records", "error", err)
		return nil, fmt.Errorf("failed to get unresolved reconciliation records: %w", err)
	}
	defer rows.Close()

	var records []*reconciliation.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			r.logger.Error("Failed to scan reconciliation record", "error", err)
			return nil, fmt.Errorf("failed to scan reconciliation record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reconciliation records: %w", err)
	}

	return records, nil
}

// MarkResolved flags a record as manually reconciled.
// Returns ErrRecordNotFound if the record doesn't exist.
func (r *ReconciliationRepository) MarkResolved(ctx context.Context, id int64) error {
	query := `
		UPDATE swap_reconciliation
		SET resolved = true, resolved_at = $2
		WHERE id = $1
	`

	tag, err := r.querier.Exec(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark reconciliation record resolved",
			"id", id,
			"error", err,
		)
		return fmt.Errorf("failed to mark reconciliation record resolved: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return reconciliation.ErrRecordNotFound{ID: id}
	}

	return nil
}

func scanRecord(rows pgx.Rows) (*reconciliation.Record, error) {
	var (
		record        reconciliation.Record
		sourceBalance string
		targetBalance string
	)
	err := rows.Scan(
		&record.ID,
		&record.UserID,
		&record.CorrelationID,
		&record.Reference,
		&record.SourceCurrency,
		&sourceBalance,
		&record.TargetCurrency,
		&targetBalance,
		&record.Reason,
		&record.Detail,
		&record.Resolved,
		&record.CreatedAt,
		&record.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if record.SourceBalance, err = decimal.NewFromString(sourceBalance); err != nil {
		return nil, fmt.Errorf("invalid source balance %q: %w", sourceBalance, err)
	}
	if record.TargetBalance, err = decimal.NewFromString(targetBalance); err != nil {
		return nil, fmt.Errorf("invalid target balance %q: %w", targetBalance, err)
	}

	return &record, nil
}
