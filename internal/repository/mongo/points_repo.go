package mongo

import (
	"context"
	"fmt"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoPointsRepository keeps the ledger in points_ledger and the running
// total on the user document.
type mongoPointsRepository struct {
	ledger *mongo.Collection
	users  *mongo.Collection
}

func NewMongoPointsRepository(db *mongo.Database) repository.PointsRepository {
	return &mongoPointsRepository{
		ledger: db.Collection(pointsCollectionName),
		users:  db.Collection(userCollectionName),
	}
}

// Award appends entry to the ledger and increments the user's total.
func (r *mongoPointsRepository) Award(ctx context.Context, entry domain.PointsEntry) error {
	if entry.Amount == 0 {
		return nil
	}
	result, err := r.users.UpdateOne(ctx,
		bson.M{"_id": entry.UserID},
		bson.M{"$inc": bson.M{"points": entry.Amount}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("increment points: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	entry.ID = primitive.NewObjectID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := r.ledger.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// History returns the user's latest ledger entries.
func (r *mongoPointsRepository) History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.PointsEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.ledger.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []domain.PointsEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Leaderboard ranks users by total points.
func (r *mongoPointsRepository) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}, {Key: "name", Value: 1}}).
		SetProjection(bson.M{"name": 1, "points": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []domain.LeaderboardEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func pointsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
}
