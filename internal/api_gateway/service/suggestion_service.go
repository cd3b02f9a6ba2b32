package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/suggestion"
)

// SuggestionServiceImpl implements the SuggestionService interface
type SuggestionServiceImpl struct {
	sugRepo suggestion.Repository
	logger  *slog.Logger
}

// NewSuggestionService creates a new suggestion read service
func NewSuggestionService(logger *slog.Logger, sugRepo suggestion.Repository) SuggestionService {
	return &SuggestionServiceImpl{
		sugRepo: sugRepo,
		logger:  logger,
	}
}

// ListSuggestions returns one page of the team's suggestions plus the total count
func (s *SuggestionServiceImpl) ListSuggestions(ctx context.Context, teamID uuid.UUID, page, perPage int) ([]*suggestion.Suggestion, int64, error) {
	offset := (page - 1) * perPage

	suggestions, err := s.sugRepo.ListByTeam(ctx, teamID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.sugRepo.CountByTeam(ctx, teamID)
	if err != nil {
		return nil, 0, err
	}

	return suggestions, total, nil
}
