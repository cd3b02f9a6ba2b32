// Package postgres provides PostgreSQL implementations of the domain
// repositories. All writes that resolve a match are conditional updates, so
// concurrent committers degrade to typed errors instead of double links.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/transaction"
	"github.com/inbox-reconciler/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const transactionColumns = `
	id, team_id, booking_date, value_date,
	amount_kind, amount_number, amount_raw, amount_currency,
	currency, description, matched_document_id, created_at, updated_at
`

// Create stores a newly observed transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, team_id, booking_date, value_date,
			amount_kind, amount_number, amount_raw, amount_currency,
			currency, description, matched_document_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		tx.ID,
		tx.TeamID,
		tx.BookingDate,
		tx.ValueDate,
		int16(tx.Amount.Kind),
		tx.Amount.Number,
		tx.Amount.Raw,
		tx.Amount.Currency,
		tx.Currency,
		tx.Description,
		tx.MatchedDocumentID,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID within a team
func (r *TransactionRepository) GetByID(ctx context.Context, teamID, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE team_id = $1 AND id = $2
	`

	tx, err := r.scanOne(r.querier.QueryRow(ctx, query, teamID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// GetByIDs retrieves a batch of transactions. Missing ids are silently
// absent from the result; the caller decides whether that matters.
func (r *TransactionRepository) GetByIDs(ctx context.Context, teamID uuid.UUID, ids []uuid.UUID) ([]*transaction.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE team_id = $1 AND id = ANY($2)
		ORDER BY created_at, id
	`

	rows, err := r.querier.Query(ctx, query, teamID, ids)
	if err != nil {
		r.logger.Error("Failed to get transactions by ids", "error", err)
		return nil, fmt.Errorf("failed to get transactions by ids: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ListUnmatched returns the team's candidate pool for the reverse pass:
// transactions not yet linked to a document, newest first.
func (r *TransactionRepository) ListUnmatched(ctx context.Context, teamID uuid.UUID, since time.Time) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE team_id = $1
		  AND matched_document_id IS NULL
		  AND COALESCE(booking_date, value_date, created_at::date) >= $2::date
		ORDER BY COALESCE(booking_date, value_date, created_at::date) DESC, id
	`

	rows, err := r.querier.Query(ctx, query, teamID, since)
	if err != nil {
		r.logger.Error("Failed to list unmatched transactions", "error", err)
		return nil, fmt.Errorf("failed to list unmatched transactions: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ListRecent returns the team's transactions observed since the given time,
// used as the existing side of an ingestion merge.
func (r *TransactionRepository) ListRecent(ctx context.Context, teamID uuid.UUID, since time.Time) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE team_id = $1 AND created_at >= $2
		ORDER BY created_at, id
	`

	rows, err := r.querier.Query(ctx, query, teamID, since)
	if err != nil {
		r.logger.Error("Failed to list recent transactions", "error", err)
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// LinkDocument records the terminal match link. The update is conditional on
// the transaction being unlinked; a concurrent committer winning the race
// surfaces as ErrAlreadyLinked.
func (r *TransactionRepository) LinkDocument(ctx context.Context, teamID, id, documentID uuid.UUID) error {
	query := `
		UPDATE transactions
		SET matched_document_id = $1, updated_at = NOW()
		WHERE team_id = $2 AND id = $3 AND matched_document_id IS NULL
	`

	result, err := r.querier.Exec(ctx, query, documentID, teamID, id)
	if err != nil {
		r.logger.Error("Failed to link transaction to document", "id", id.String(), "error", err)
		return fmt.Errorf("failed to link transaction to document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrAlreadyLinked{ID: id}
	}

	return nil
}

func (r *TransactionRepository) scanOne(row pgx.Row) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	var kind int16
	err := row.Scan(
		&tx.ID,
		&tx.TeamID,
		&tx.BookingDate,
		&tx.ValueDate,
		&kind,
		&tx.Amount.Number,
		&tx.Amount.Raw,
		&tx.Amount.Currency,
		&tx.Currency,
		&tx.Description,
		&tx.MatchedDocumentID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Amount.Kind = transaction.AmountKind(kind)
	return &tx, nil
}

func (r *TransactionRepository) scanAll(rows pgx.Rows) ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction
	for rows.Next() {
		tx, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return txs, nil
}
