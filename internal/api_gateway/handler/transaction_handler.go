package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/api_gateway/middleware"
	"github.com/inbox-reconciler/internal/api_gateway/service"
	"github.com/inbox-reconciler/internal/domain/transaction"
)

// TransactionHandler handles HTTP requests for transaction ingestion
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Import ingests a batch of transactions from the banking feed, deduplicating
// against recently observed ones, and requests a matching run over the new
// arrivals.
func (h *TransactionHandler) Import(c *gin.Context) {
	teamIDParam := c.Param("team_id")
	teamID, err := uuid.Parse(teamIDParam)
	if err != nil {
		h.logger.Error("Invalid team ID", "team_id", teamIDParam, "error", err)
		RespondBadRequest(c, "Invalid team ID")
		return
	}

	var req ImportTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	incoming := make([]*transaction.Transaction, 0, len(req.Transactions))
	for i := range req.Transactions {
		tx, err := req.Transactions[i].toDomain(teamID)
		if err != nil {
			RespondBadRequest(c, err.Error())
			return
		}
		incoming = append(incoming, tx)
	}

	correlationID := middleware.GetCorrelationID(c)
	result, err := h.transactionService.ImportBatch(c.Request.Context(), teamID, incoming, correlationID)
	if err != nil && result == nil {
		h.logger.Error("Failed to import transaction batch", "team_id", teamIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	importedIDs := make([]string, 0, len(result.Imported))
	for _, tx := range result.Imported {
		importedIDs = append(importedIDs, tx.ID.String())
	}

	RespondAccepted(c, ImportTransactionsResponse{
		ImportedCount:  len(result.Imported),
		DuplicateCount: result.DuplicateCount,
		FailedCount:    result.FailedCount,
		ImportedIDs:    importedIDs,
		RunRequested:   err == nil,
	})
}

// DuplicateKeys reports the dedup keys occurring more than once within the
// posted batch. Diagnostic only: nothing is persisted.
func (h *TransactionHandler) DuplicateKeys(c *gin.Context) {
	var req DuplicateKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	list := make([]*transaction.Transaction, 0, len(req.Transactions))
	for i := range req.Transactions {
		tx, err := req.Transactions[i].toDomain(uuid.Nil)
		if err != nil {
			RespondBadRequest(c, err.Error())
			return
		}
		list = append(list, tx)
	}

	keys := transaction.FindDuplicateKeys(list)
	if keys == nil {
		keys = []string{}
	}

	RespondOK(c, DuplicateKeysResponse{DuplicateKeys: keys})
}
