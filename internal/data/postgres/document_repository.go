package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/document"
	"github.com/inbox-reconciler/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// DocumentRepository implements the document.Repository interface for PostgreSQL
type DocumentRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewDocumentRepository creates a new PostgreSQL inbox document repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewDocumentRepository(logger *slog.Logger, db *persistence.PostgresDB) document.Repository {
	return &DocumentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *DocumentRepository) WithTx(tx pgx.Tx) document.Repository {
	return &DocumentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new inbox document
func (r *DocumentRepository) Create(ctx context.Context, doc *document.InboxItem) error {
	query := `
		INSERT INTO inbox_items (
			id, team_id, amount, currency, item_date, description,
			status, matched_transaction_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		doc.ID,
		doc.TeamID,
		doc.Amount,
		doc.Currency,
		doc.Date,
		doc.Description,
		doc.Status,
		doc.MatchedTransactionID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create inbox document", "error", err)
		return fmt.Errorf("failed to create inbox document: %w", err)
	}

	return nil
}

// GetByID retrieves an inbox document by its ID within a team
func (r *DocumentRepository) GetByID(ctx context.Context, teamID, id uuid.UUID) (*document.InboxItem, error) {
	query := `
		SELECT id, team_id, amount, currency, item_date, description,
		       status, matched_transaction_id, created_at, updated_at
		FROM inbox_items
		WHERE team_id = $1 AND id = $2
	`

	var doc document.InboxItem
	err := r.querier.QueryRow(ctx, query, teamID, id).Scan(
		&doc.ID,
		&doc.TeamID,
		&doc.Amount,
		&doc.Currency,
		&doc.Date,
		&doc.Description,
		&doc.Status,
		&doc.MatchedTransactionID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrNotFound{ID: id}
		}
		r.logger.Error("Failed to get inbox document", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get inbox document: %w", err)
	}

	return &doc, nil
}

// ListPending returns the team's documents still awaiting reconciliation,
// oldest first so long-waiting documents are evaluated before fresh arrivals.
func (r *DocumentRepository) ListPending(ctx context.Context, teamID uuid.UUID) ([]*document.InboxItem, error) {
	query := `
		SELECT id, team_id, amount, currency, item_date, description,
		       status, matched_transaction_id, created_at, updated_at
		FROM inbox_items
		WHERE team_id = $1 AND status = $2
		ORDER BY created_at, id
	`

	rows, err := r.querier.Query(ctx, query, teamID, document.StatusPending)
	if err != nil {
		r.logger.Error("Failed to list pending documents", "error", err)
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.InboxItem
	for rows.Next() {
		var doc document.InboxItem
		err := rows.Scan(
			&doc.ID,
			&doc.TeamID,
			&doc.Amount,
			&doc.Currency,
			&doc.Date,
			&doc.Description,
			&doc.Status,
			&doc.MatchedTransactionID,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inbox document row: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inbox document rows: %w", err)
	}

	return docs, nil
}

// MarkDone transitions a pending document to done and links the matched
// transaction. The update is conditional on the document still being pending;
// losing the race to a concurrent committer surfaces as ErrAlreadyDone.
func (r *DocumentRepository) MarkDone(ctx context.Context, teamID, id, transactionID uuid.UUID) error {
	query := `
		UPDATE inbox_items
		SET status = $1, matched_transaction_id = $2, updated_at = NOW()
		WHERE team_id = $3 AND id = $4 AND status = $5
	`

	result, err := r.querier.Exec(ctx, query,
		document.StatusDone,
		transactionID,
		teamID,
		id,
		document.StatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to mark document done", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark document done: %w", err)
	}

	if result.RowsAffected() == 0 {
		return document.ErrAlreadyDone{ID: id}
	}

	return nil
}
