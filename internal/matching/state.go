package matching

import (
	"sync"

	"github.com/google/uuid"
)

// runState tracks which documents and transactions have been consumed by an
// auto-match within a single run. It is explicit run-local state handed from
// the forward pass into the reverse pass, never ambient, so runs stay
// independently testable. The mutex exists for the reverse pass, whose batch
// items evaluate concurrently.
type runState struct {
	mu           sync.Mutex
	consumedDocs map[uuid.UUID]struct{}
	consumedTxs  map[uuid.UUID]struct{}
}

func newRunState() *runState {
	return &runState{
		consumedDocs: make(map[uuid.UUID]struct{}),
		consumedTxs:  make(map[uuid.UUID]struct{}),
	}
}

// consumeDocument marks a document as resolved for the rest of the run
func (s *runState) consumeDocument(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumedDocs[id] = struct{}{}
}

// documentConsumed reports whether a document was already resolved in this run
func (s *runState) documentConsumed(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.consumedDocs[id]
	return ok
}

// claimTransaction atomically claims a transaction for an auto-match attempt.
// The first claimant wins; a false return means another evaluation in this
// run already took it.
func (s *runState) claimTransaction(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.consumedTxs[id]; taken {
		return false
	}
	s.consumedTxs[id] = struct{}{}
	return true
}

// transactionConsumed reports whether a transaction was claimed in this run
func (s *runState) transactionConsumed(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.consumedTxs[id]
	return ok
}
