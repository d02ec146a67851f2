package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/currency-swap-engine/internal/domain/ledger"
)

const (
	// LedgerCollectionName is the name of the ledger collection in MongoDB
	LedgerCollectionName = "ledger_entries"
)

// LedgerRepository implements the ledger.Repository interface for MongoDB
type LedgerRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewLedgerRepository creates a new MongoDB ledger repository
func NewLedgerRepository(logger *slog.Logger, db *mongo.Database) ledger.Repository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

// CreatePair stores both legs of a double-entry pair with one ordered
// InsertMany. Inside a transactional session the insert is atomic with the
// rest of the transaction; outside one, an ordered insert stops at the first
// failure so a half-written pair is only possible if the second leg alone
// fails, and the caller compensates on any error.
func (r *LedgerRepository) CreatePair(ctx context.Context, entries []*ledger.Entry) error {
	if len(entries) != 2 {
		return fmt.Errorf("ledger pair must contain exactly 2 entries, got %d", len(entries))
	}
	if entries[0].Reference != entries[1].Reference {
		return fmt.Errorf("ledger pair legs carry different references: %s vs %s",
			entries[0].Reference, entries[1].Reference)
	}

	collection := r.db.Collection(LedgerCollectionName)

	docs := make([]interface{}, len(entries))
	for i, entry := range entries {
		docs[i] = entry
	}

	_, err := collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		r.logger.Error("Failed to create ledger pair",
			"reference", entries[0].Reference,
			"error", err)
		return fmt.Errorf("failed to create ledger pair: %w", err)
	}

	return nil
}

// GetByReference retrieves the entries sharing one swap reference.
// Returns ErrPairNotFound if no entries exist for the reference.
func (r *LedgerRepository) GetByReference(ctx context.Context, reference string) ([]*ledger.Entry, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"reference": reference}
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to get ledger entries by reference",
			"reference", reference,
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entries by reference: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode ledger entries",
			"reference", reference,
			"error", err)
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	if len(entries) == 0 {
		return nil, ledger.ErrPairNotFound{Reference: reference}
	}

	return entries, nil
}

// GetByUserID retrieves paginated ledger entries for a user.
// Results are sorted by creation time in descending order (newest first).
func (r *LedgerRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get ledger entries",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode ledger entries",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	return entries, nil
}

// CountByUserID counts the total number of ledger entries for a user
func (r *LedgerRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"user_id": userID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count ledger entries",
			"user_id", userID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}
