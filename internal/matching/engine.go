package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/config"
	"github.com/inbox-reconciler/internal/domain/document"
	"github.com/inbox-reconciler/internal/domain/matchaudit"
	"github.com/inbox-reconciler/internal/domain/shared"
	"github.com/inbox-reconciler/internal/domain/suggestion"
	"github.com/inbox-reconciler/internal/domain/transaction"
	"github.com/jackc/pgx/v5"
	"github.com/panjf2000/ants/v2"
)

// TxRunner executes a function inside a database transaction. It is the
// atomicity boundary of a single pair commit: the document transition and the
// transaction link either both happen or neither does.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Engine is the bidirectional matcher. One call to Run is one unit of work:
// a forward pass over newly observed transactions, then a reverse pass over
// the pending documents the forward pass did not consume. The engine holds no
// state between runs; re-running with unchanged data changes nothing.
type Engine struct {
	db         TxRunner
	txRepo     transaction.Repository
	docRepo    document.Repository
	sugRepo    suggestion.Repository
	auditRepo  matchaudit.Repository
	scorer     *Scorer
	policy     Policy
	dispatcher NotificationDispatcher
	pool       *ants.Pool
	cfg        config.MatchingConfig
	logger     *slog.Logger
}

// NewEngine creates an engine and its bounded worker pool
func NewEngine(
	db TxRunner,
	txRepo transaction.Repository,
	docRepo document.Repository,
	sugRepo suggestion.Repository,
	auditRepo matchaudit.Repository,
	similarity SimilarityProvider,
	dispatcher NotificationDispatcher,
	cfg config.MatchingConfig,
	poolSize int,
	logger *slog.Logger,
) (*Engine, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Engine{
		db:         db,
		txRepo:     txRepo,
		docRepo:    docRepo,
		sugRepo:    sugRepo,
		auditRepo:  auditRepo,
		scorer:     NewScorer(cfg, similarity),
		policy:     NewPolicy(cfg),
		dispatcher: dispatcher,
		pool:       pool,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Close releases the worker pool
func (e *Engine) Close() {
	e.pool.Release()
}

// Run executes one matching run for a team over an already-deduplicated batch
// of newly observed transactions. The returned error is a run-level failure;
// individual item failures are logged, counted in the summary, and left for
// the next scheduled run.
func (e *Engine) Run(ctx context.Context, teamID uuid.UUID, newTransactionIDs []uuid.UUID, correlationID string) (*RunSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RunTimeout)
	defer cancel()

	logger := e.logger.With("team_id", teamID.String())
	if correlationID != "" {
		logger = logger.With("correlation_id", correlationID)
	}

	summary := &RunSummary{
		TeamID:    teamID,
		StartedAt: time.Now().UTC(),
	}

	logger.Info("Matching run started", "new_transactions", len(newTransactionIDs))

	newTxs, err := e.txRepo.GetByIDs(ctx, teamID, newTransactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load new transactions: %w", err)
	}

	pendingDocs, err := e.docRepo.ListPending(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending documents: %w", err)
	}

	state := newRunState()

	if err := e.forwardPass(ctx, logger, newTxs, pendingDocs, state, summary, correlationID); err != nil {
		return nil, fmt.Errorf("forward pass failed: %w", err)
	}

	if err := e.reversePass(ctx, logger, teamID, pendingDocs, state, summary, correlationID); err != nil {
		return nil, fmt.Errorf("reverse pass failed: %w", err)
	}

	summary.TotalProcessed = summary.TransactionsProcessed + summary.DocumentsProcessed
	summary.CompletedAt = time.Now().UTC()

	logger.Info("Matching run completed",
		"transactions_processed", summary.TransactionsProcessed,
		"documents_processed", summary.DocumentsProcessed,
		"auto_matched", summary.AutoMatched(),
		"suggested", summary.Suggested(),
		"no_matches", summary.NoMatches,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

// forwardPass walks the new transactions sequentially, searching the team's
// pending documents for each one.
func (e *Engine) forwardPass(
	ctx context.Context,
	logger *slog.Logger,
	newTxs []*transaction.Transaction,
	pendingDocs []*document.InboxItem,
	state *runState,
	summary *RunSummary,
	correlationID string,
) error {
	for _, tx := range newTxs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if tx.IsMatched() {
			// Already resolved in a previous run; re-delivery of the id is
			// harmless but there is nothing left to decide.
			summary.TransactionsProcessed++
			continue
		}

		candidates := e.scoreForwardCandidates(ctx, logger, tx, pendingDocs, state, summary)
		e.resolveForward(ctx, logger, tx, candidates, state, summary, correlationID)
		summary.TransactionsProcessed++
	}

	return nil
}

// scoreForwardCandidates scores one transaction against every still-pending
// document. A pair whose scoring fails is logged and dropped from the
// candidate set; it does not fail the transaction's evaluation.
func (e *Engine) scoreForwardCandidates(
	ctx context.Context,
	logger *slog.Logger,
	tx *transaction.Transaction,
	pendingDocs []*document.InboxItem,
	state *runState,
	summary *RunSummary,
) []Candidate {
	var candidates []Candidate
	for i, doc := range pendingDocs {
		if state.documentConsumed(doc.ID) {
			continue
		}

		scores, combined, err := e.scorer.Score(ctx, tx, doc)
		if err != nil {
			logger.Error("Failed to score pair, skipping candidate",
				"transaction_id", tx.ID.String(),
				"document_id", doc.ID.String(),
				"error", err,
			)
			summary.Skipped++
			continue
		}

		candidates = append(candidates, NewCandidate(tx, doc, scores, combined, doc.Date, i))
	}

	return candidates
}

// resolveForward applies the threshold policy to a transaction's ranked
// candidates and commits the winning outcome.
func (e *Engine) resolveForward(
	ctx context.Context,
	logger *slog.Logger,
	tx *transaction.Transaction,
	candidates []Candidate,
	state *runState,
	summary *RunSummary,
	correlationID string,
) {
	for _, cand := range RankCandidates(candidates) {
		switch e.policy.Classify(cand.Combined) {
		case shared.OutcomeAutoMatched:
			committed, err := e.commitAutoMatch(ctx, logger, cand, shared.PassForward, correlationID)
			if err != nil {
				logger.Error("Failed to commit auto-match, skipping transaction",
					"transaction_id", tx.ID.String(),
					"document_id", cand.Document.ID.String(),
					"error", err,
				)
				summary.Skipped++
				return
			}
			// Either way the document is terminal now: consumed by this
			// commit or by the concurrent writer that beat it.
			state.consumeDocument(cand.Document.ID)
			if !committed {
				continue
			}
			state.claimTransaction(tx.ID)
			summary.AutoMatchedForward++
			return

		case shared.OutcomeSuggested:
			created, err := e.commitSuggestion(ctx, logger, cand, shared.PassForward, correlationID)
			if err != nil {
				logger.Error("Failed to persist suggestion, skipping transaction",
					"transaction_id", tx.ID.String(),
					"document_id", cand.Document.ID.String(),
					"error", err,
				)
				summary.Skipped++
				return
			}
			if created {
				summary.SuggestedForward++
			}
			return

		default:
			summary.NoMatches++
			return
		}
	}

	// No candidates at all, e.g. every pending document already consumed
	summary.NoMatches++
}

// reverseItemResult is the per-document outcome of a reverse-pass evaluation.
// Failures are values, not propagated errors, so one document cannot poison
// its batch siblings.
type reverseItemResult struct {
	autoMatched bool
	suggested   bool
	err         error
}

// reversePass evaluates the pending documents the forward pass did not
// consume, in fixed-size batches dispatched concurrently on the worker pool.
// The remaining set is computed once, up front, before any batch runs.
func (e *Engine) reversePass(
	ctx context.Context,
	logger *slog.Logger,
	teamID uuid.UUID,
	pendingDocs []*document.InboxItem,
	state *runState,
	summary *RunSummary,
	correlationID string,
) error {
	// Set difference against the forward pass's consumed set, computed once
	// per run. Re-querying mid-pass would race concurrent writers.
	var remaining []*document.InboxItem
	for _, doc := range pendingDocs {
		if !state.documentConsumed(doc.ID) {
			remaining = append(remaining, doc)
		}
	}

	if len(remaining) == 0 {
		logger.Info("Reverse pass has no documents to evaluate")
		return nil
	}

	horizon := time.Now().AddDate(0, 0, -2*e.cfg.DateWindowDays)
	txPool, err := e.txRepo.ListUnmatched(ctx, teamID, horizon)
	if err != nil {
		return fmt.Errorf("failed to load candidate transactions: %w", err)
	}

	logger.Info("Reverse pass starting",
		"documents", len(remaining),
		"candidate_transactions", len(txPool),
		"batch_size", e.cfg.ReverseBatchSize,
	)

	for start := 0; start < len(remaining); start += e.cfg.ReverseBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + e.cfg.ReverseBatchSize
		if end > len(remaining) {
			end = len(remaining)
		}
		batch := remaining[start:end]

		results := make([]reverseItemResult, len(batch))
		var wg sync.WaitGroup
		for i, doc := range batch {
			i, doc := i, doc
			wg.Add(1)
			submitErr := e.pool.Submit(func() {
				defer wg.Done()
				results[i] = e.evaluateDocument(ctx, logger, doc, txPool, state, correlationID)
			})
			if submitErr != nil {
				wg.Done()
				results[i] = reverseItemResult{err: submitErr}
			}
		}
		wg.Wait()

		for i, result := range results {
			summary.DocumentsProcessed++
			switch {
			case result.err != nil:
				logger.Error("Document evaluation failed, skipping",
					"document_id", batch[i].ID.String(),
					"error", result.err,
				)
				summary.Skipped++
			case result.autoMatched:
				summary.AutoMatchedReverse++
			case result.suggested:
				summary.SuggestedReverse++
			default:
				summary.NoMatches++
			}
		}
	}

	return nil
}

// evaluateDocument scores one pending document against the team's unmatched
// transaction pool and commits the outcome; the symmetric twin of the forward
// pass's per-transaction evaluation.
func (e *Engine) evaluateDocument(
	ctx context.Context,
	logger *slog.Logger,
	doc *document.InboxItem,
	txPool []*transaction.Transaction,
	state *runState,
	correlationID string,
) reverseItemResult {
	var candidates []Candidate
	for i, tx := range txPool {
		if state.transactionConsumed(tx.ID) {
			continue
		}

		scores, combined, err := e.scorer.Score(ctx, tx, doc)
		if err != nil {
			return reverseItemResult{err: err}
		}

		candidates = append(candidates, NewCandidate(tx, doc, scores, combined, tx.Date(), i))
	}

	for _, cand := range RankCandidates(candidates) {
		switch e.policy.Classify(cand.Combined) {
		case shared.OutcomeAutoMatched:
			// Claim before committing so two documents in the same batch
			// cannot link the same transaction.
			if !state.claimTransaction(cand.Transaction.ID) {
				continue
			}
			committed, err := e.commitAutoMatch(ctx, logger, cand, shared.PassReverse, correlationID)
			if err != nil {
				return reverseItemResult{err: err}
			}
			if !committed {
				// Lost to a concurrent writer outside this run; the claim
				// stays because the transaction is linked either way.
				continue
			}
			state.consumeDocument(doc.ID)
			return reverseItemResult{autoMatched: true}

		case shared.OutcomeSuggested:
			created, err := e.commitSuggestion(ctx, logger, cand, shared.PassReverse, correlationID)
			if err != nil {
				return reverseItemResult{err: err}
			}
			return reverseItemResult{suggested: created}

		default:
			return reverseItemResult{}
		}
	}

	return reverseItemResult{}
}

// commitAutoMatch atomically transitions the document to done and links the
// transaction. A false return with nil error means a concurrent writer
// already resolved one side; first committer wins and the pair is a no-op
// here, not an error.
func (e *Engine) commitAutoMatch(
	ctx context.Context,
	logger *slog.Logger,
	cand Candidate,
	pass shared.Pass,
	correlationID string,
) (bool, error) {
	tx := cand.Transaction
	doc := cand.Document

	err := e.db.ExecuteTx(ctx, func(pgTx pgx.Tx) error {
		if err := e.docRepo.WithTx(pgTx).MarkDone(ctx, doc.TeamID, doc.ID, tx.ID); err != nil {
			return err
		}
		if err := e.txRepo.WithTx(pgTx).LinkDocument(ctx, tx.TeamID, tx.ID, doc.ID); err != nil {
			return err
		}
		// A resolved document's outstanding suggestions are dead weight
		return e.sugRepo.WithTx(pgTx).DeleteByDocument(ctx, doc.TeamID, doc.ID)
	})
	if err != nil {
		if errors.Is(err, document.ErrAlreadyDone{}) || errors.Is(err, transaction.ErrAlreadyLinked{}) {
			logger.Info("Auto-match lost the commit race, treating as no-op",
				"transaction_id", tx.ID.String(),
				"document_id", doc.ID.String(),
			)
			return false, nil
		}
		return false, err
	}

	logger.Info("Auto-matched transaction to document",
		"transaction_id", tx.ID.String(),
		"document_id", doc.ID.String(),
		"combined_score", cand.Combined,
		"pass", string(pass),
	)

	e.recordAndDispatch(ctx, logger, cand, shared.OutcomeAutoMatched, pass, correlationID)
	return true, nil
}

// commitSuggestion persists the pair for manual review without touching the
// document's status. Returns false when the suggestion already existed.
func (e *Engine) commitSuggestion(
	ctx context.Context,
	logger *slog.Logger,
	cand Candidate,
	pass shared.Pass,
	correlationID string,
) (bool, error) {
	s := suggestion.New(cand.Transaction.TeamID, cand.Transaction.ID, cand.Document.ID, cand.Combined, cand.SubScores, pass)

	created, err := e.sugRepo.Create(ctx, s)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	logger.Info("Suggestion persisted for review",
		"transaction_id", cand.Transaction.ID.String(),
		"document_id", cand.Document.ID.String(),
		"combined_score", cand.Combined,
		"pass", string(pass),
	)

	e.recordAndDispatch(ctx, logger, cand, shared.OutcomeSuggested, pass, correlationID)
	return true, nil
}

// recordAndDispatch writes the audit record and reports the outcome to the
// notification dispatcher. Both are best-effort: the match is already
// committed, so failures here are logged and swallowed.
func (e *Engine) recordAndDispatch(
	ctx context.Context,
	logger *slog.Logger,
	cand Candidate,
	outcome shared.Outcome,
	pass shared.Pass,
	correlationID string,
) {
	record := &matchaudit.Record{
		TeamID:        cand.Transaction.TeamID,
		TransactionID: cand.Transaction.ID,
		DocumentID:    cand.Document.ID,
		Outcome:       outcome,
		Pass:          pass,
		CombinedScore: cand.Combined,
		SubScores:     cand.SubScores,
		CorrelationID: correlationID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.auditRepo.Create(ctx, record); err != nil {
		logger.Error("Failed to write match audit record",
			"transaction_id", cand.Transaction.ID.String(),
			"document_id", cand.Document.ID.String(),
			"error", err,
		)
	}

	event := &shared.OutcomeEvent{
		TeamID:        cand.Transaction.TeamID,
		TransactionID: cand.Transaction.ID,
		DocumentID:    cand.Document.ID,
		Outcome:       outcome,
		Pass:          pass,
		CombinedScore: cand.Combined,
		SubScores:     cand.SubScores,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
	}
	if err := e.dispatcher.Dispatch(ctx, event); err != nil {
		logger.Error("Failed to dispatch match outcome",
			"transaction_id", cand.Transaction.ID.String(),
			"document_id", cand.Document.ID.String(),
			"error", err,
		)
	}
}
