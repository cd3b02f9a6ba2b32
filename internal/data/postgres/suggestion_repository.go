package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/suggestion"
	"github.com/inbox-reconciler/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// SuggestionRepository implements the suggestion.Repository interface for PostgreSQL
type SuggestionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewSuggestionRepository creates a new PostgreSQL suggestion repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewSuggestionRepository(logger *slog.Logger, db *persistence.PostgresDB) suggestion.Repository {
	return &SuggestionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *SuggestionRepository) WithTx(tx pgx.Tx) suggestion.Repository {
	return &SuggestionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create persists a suggestion. The (transaction, document) pair is unique;
// inserting an existing pair is a no-op and returns false.
func (r *SuggestionRepository) Create(ctx context.Context, s *suggestion.Suggestion) (bool, error) {
	query := `
		INSERT INTO match_suggestions (
			id, team_id, transaction_id, document_id, combined_score,
			amount_score, currency_score, date_score, semantic_score,
			pass, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (transaction_id, document_id) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		s.ID,
		s.TeamID,
		s.TransactionID,
		s.DocumentID,
		s.CombinedScore,
		s.SubScores.Amount,
		s.SubScores.Currency,
		s.SubScores.Date,
		s.SubScores.Semantic,
		s.Pass,
		s.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create suggestion", "error", err)
		return false, fmt.Errorf("failed to create suggestion: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

const suggestionColumns = `
	id, team_id, transaction_id, document_id, combined_score,
	amount_score, currency_score, date_score, semantic_score,
	pass, created_at
`

// ListByTeam returns a page of the team's suggestions, strongest first
func (r *SuggestionRepository) ListByTeam(ctx context.Context, teamID uuid.UUID, limit, offset int) ([]*suggestion.Suggestion, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM match_suggestions
		WHERE team_id = $1
		ORDER BY combined_score DESC, created_at, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, teamID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list suggestions", "error", err)
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// CountByTeam returns the team's total suggestion count, for pagination
func (r *SuggestionRepository) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM match_suggestions WHERE team_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, teamID).Scan(&count); err != nil {
		r.logger.Error("Failed to count suggestions", "error", err)
		return 0, fmt.Errorf("failed to count suggestions: %w", err)
	}

	return count, nil
}

// ListByDocument returns a document's outstanding suggestions, strongest first
func (r *SuggestionRepository) ListByDocument(ctx context.Context, teamID, documentID uuid.UUID) ([]*suggestion.Suggestion, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM match_suggestions
		WHERE team_id = $1 AND document_id = $2
		ORDER BY combined_score DESC, created_at, id
	`

	rows, err := r.querier.Query(ctx, query, teamID, documentID)
	if err != nil {
		r.logger.Error("Failed to list suggestions by document", "error", err)
		return nil, fmt.Errorf("failed to list suggestions by document: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// DeleteByDocument removes a resolved document's outstanding suggestions
func (r *SuggestionRepository) DeleteByDocument(ctx context.Context, teamID, documentID uuid.UUID) error {
	query := `DELETE FROM match_suggestions WHERE team_id = $1 AND document_id = $2`

	if _, err := r.querier.Exec(ctx, query, teamID, documentID); err != nil {
		r.logger.Error("Failed to delete suggestions by document", "error", err)
		return fmt.Errorf("failed to delete suggestions by document: %w", err)
	}

	return nil
}

func (r *SuggestionRepository) scanAll(rows pgx.Rows) ([]*suggestion.Suggestion, error) {
	var suggestions []*suggestion.Suggestion
	for rows.Next() {
		var s suggestion.Suggestion
		err := rows.Scan(
			&s.ID,
			&s.TeamID,
			&s.TransactionID,
			&s.DocumentID,
			&s.CombinedScore,
			&s.SubScores.Amount,
			&s.SubScores.Currency,
			&s.SubScores.Date,
			&s.SubScores.Semantic,
			&s.Pass,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion row: %w", err)
		}
		suggestions = append(suggestions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestion rows: %w", err)
	}
	return suggestions, nil
}
