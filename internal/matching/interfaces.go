package matching

import (
	"context"

	"github.com/inbox-reconciler/internal/domain/shared"
)

// SimilarityProvider computes the semantic similarity of two descriptive
// texts, normalized to [0, 1]. Implementations typically embed both texts and
// compare the vectors; the engine only consumes the scalar.
type SimilarityProvider interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// NotificationDispatcher receives every auto-matched or suggested pair with
// enough detail to render a human-readable explanation. Delivery and
// formatting are the dispatcher's concern; the engine treats dispatch errors
// as operational noise, never as run failures.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event *shared.OutcomeEvent) error
}
