package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/api_gateway/middleware"
	"github.com/inbox-reconciler/internal/api_gateway/service"
	"github.com/inbox-reconciler/internal/domain/suggestion"
)

// MatchingHandler handles HTTP requests for matching runs and suggestions
type MatchingHandler struct {
	runService        service.RunService
	suggestionService service.SuggestionService
	logger            *slog.Logger
}

// NewMatchingHandler creates a new matching handler
func NewMatchingHandler(logger *slog.Logger, runService service.RunService, suggestionService service.SuggestionService) *MatchingHandler {
	return &MatchingHandler{
		runService:        runService,
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// RequestRun enqueues a matching run for the team. The run executes
// asynchronously in the match processor; the response only acknowledges the
// request.
func (h *MatchingHandler) RequestRun(c *gin.Context) {
	teamID, ok := h.teamID(c)
	if !ok {
		return
	}

	var req RunMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	transactionIDs := make([]uuid.UUID, 0, len(req.TransactionIDs))
	for _, raw := range req.TransactionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondBadRequest(c, "Invalid transaction ID: "+raw)
			return
		}
		transactionIDs = append(transactionIDs, id)
	}

	correlationID := middleware.GetCorrelationID(c)
	if err := h.runService.RequestRun(c.Request.Context(), teamID, transactionIDs, correlationID); err != nil {
		h.logger.Error("Failed to request matching run", "team_id", teamID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, gin.H{
		"team_id":           teamID.String(),
		"transaction_count": len(transactionIDs),
		"status":            "queued",
	})
}

// ListSuggestions returns a page of the team's match suggestions
func (h *MatchingHandler) ListSuggestions(c *gin.Context) {
	teamID, ok := h.teamID(c)
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	suggestions, total, err := h.suggestionService.ListSuggestions(
		c.Request.Context(),
		teamID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to list suggestions", "team_id", teamID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		responses = append(responses, mapSuggestionToResponse(s))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

func (h *MatchingHandler) teamID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("team_id")
	teamID, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Error("Invalid team ID", "team_id", raw, "error", err)
		RespondBadRequest(c, "Invalid team ID")
		return uuid.Nil, false
	}
	return teamID, true
}

// mapSuggestionToResponse maps a suggestion to its API representation
func mapSuggestionToResponse(s *suggestion.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:            s.ID.String(),
		TransactionID: s.TransactionID.String(),
		DocumentID:    s.DocumentID.String(),
		CombinedScore: s.CombinedScore,
		SubScores: SubScores{
			Amount:   s.SubScores.Amount,
			Currency: s.SubScores.Currency,
			Date:     s.SubScores.Date,
			Semantic: s.SubScores.Semantic,
		},
		Pass:      string(s.Pass),
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}
