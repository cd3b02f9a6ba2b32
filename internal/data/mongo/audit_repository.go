// Package mongo provides the MongoDB implementation of the match audit
// repository. Audit records are append-only; nothing updates or deletes them.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inbox-reconciler/internal/domain/matchaudit"
)

const (
	// AuditCollectionName is the name of the match audit collection in MongoDB
	AuditCollectionName = "match_audit_records"
)

// AuditRepository implements the matchaudit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB match audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) matchaudit.Repository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a match audit record
func (r *AuditRepository) Create(ctx context.Context, record *matchaudit.Record) error {
	collection := r.db.Collection(AuditCollectionName)

	if _, err := collection.InsertOne(ctx, record); err != nil {
		r.logger.Error("Failed to create match audit record",
			"transaction_id", record.TransactionID.String(),
			"document_id", record.DocumentID.String(),
			"error", err)
		return fmt.Errorf("failed to create match audit record: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a transaction's audit records, newest first
func (r *AuditRepository) GetByTransactionID(ctx context.Context, teamID, transactionID uuid.UUID) ([]*matchaudit.Record, error) {
	filter := bson.M{"team_id": teamID, "transaction_id": transactionID}
	return r.find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
}

// GetByDocumentID retrieves a document's audit records, newest first
func (r *AuditRepository) GetByDocumentID(ctx context.Context, teamID, documentID uuid.UUID) ([]*matchaudit.Record, error) {
	filter := bson.M{"team_id": teamID, "document_id": documentID}
	return r.find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
}

// ListByTeam retrieves a page of the team's audit records, newest first
func (r *AuditRepository) ListByTeam(ctx context.Context, teamID uuid.UUID, limit, offset int) ([]*matchaudit.Record, error) {
	filter := bson.M{"team_id": teamID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *AuditRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*matchaudit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query match audit records", "error", err)
		return nil, fmt.Errorf("failed to query match audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*matchaudit.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode match audit records", "error", err)
		return nil, fmt.Errorf("failed to decode match audit records: %w", err)
	}

	return records, nil
}
