// Package mongo provides MongoDB implementations of the user and ledger
// repositories. Every operation reads the session (if any) off the caller's
// context, so the same code path serves both transactional and
// non-transactional execution.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/currency-swap-engine/internal/domain/shared"
	"github.com/currency-swap-engine/internal/domain/swap"
	"github.com/currency-swap-engine/internal/domain/user"
)

const (
	// UsersCollectionName is the name of the users collection in MongoDB
	UsersCollectionName = "users"
)

// UserRepository implements the user.Repository interface for MongoDB
type UserRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewUserRepository creates a new MongoDB user repository
func NewUserRepository(logger *slog.Logger, db *mongo.Database) user.Repository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// balanceField is the document path of one currency's balance. The stringly
// path exists only here at the datastore boundary; everything above it works
// with the typed Currency set.
func balanceField(c shared.Currency) string {
	return "balances." + string(c)
}

// GetByID retrieves a user with all balances.
// Returns ErrUserNotFound if no user exists for the given id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	collection := r.db.Collection(UsersCollectionName)

	filter := bson.M{"_id": id}
	var u user.User
	err := collection.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrUserNotFound{UserID: id}
		}
		r.logger.Error("Failed to get user",
			"user_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// ApplySwap performs the single conditional atomic update that serializes
// concurrent swaps per user: debit source, credit target, guarded by
// "source balance >= amount" evaluated by the datastore in the same
// operation. No match means the guard rejected the debit, which surfaces as
// an InsufficientBalanceError with no write performed.
func (r *UserRepository) ApplySwap(ctx context.Context, id uuid.UUID, source shared.Currency, amount decimal.Decimal, target shared.Currency, amountReceived decimal.Decimal) (*user.User, error) {
	collection := r.db.Collection(UsersCollectionName)

	now := time.Now().UTC()
	filter := bson.M{
		"_id":                id,
		balanceField(source): bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{
			balanceField(source): amount.Neg(),
			balanceField(target): amountReceived,
		},
		"$set": bson.M{
			"last_balance_update":    now,
			"portfolio_last_updated": now,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated user.User
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Guard miss: either the balance is short or the user is gone.
			// Both mean no mutation happened.
			return nil, swap.InsufficientBalanceError{
				UserID:    id,
				Currency:  source,
				Requested: amount,
			}
		}
		r.logger.Error("Failed to apply swap mutation",
			"user_id", id.String(),
			"source", string(source),
			"target", string(target),
			"error", err)
		return nil, fmt.Errorf("failed to apply swap mutation: %w", err)
	}

	return &updated, nil
}

// RestoreBalances overwrites the two swapped balances and both timestamps
// with the exact snapshot values. This is a compensation primitive: a direct
// overwrite, not a relative re-increment.
func (r *UserRepository) RestoreBalances(ctx context.Context, snapshot *user.BalanceSnapshot) error {
	collection := r.db.Collection(UsersCollectionName)

	filter := bson.M{"_id": snapshot.UserID}
	update := bson.M{
		"$set": bson.M{
			balanceField(snapshot.SourceCurrency): snapshot.SourceBalance,
			balanceField(snapshot.TargetCurrency): snapshot.TargetBalance,
			"last_balance_update":                 snapshot.LastBalanceUpdate,
			"portfolio_last_updated":              snapshot.PortfolioLastUpdated,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to restore balances",
			"user_id", snapshot.UserID.String(),
			"error", err)
		return fmt.Errorf("failed to restore balances: %w", err)
	}

	if result.MatchedCount == 0 {
		return user.ErrUserNotFound{UserID: snapshot.UserID}
	}

	return nil
}
