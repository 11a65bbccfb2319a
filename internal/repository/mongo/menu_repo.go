package mongo

import (
	"context"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoMenuRepository keys menu days by their ISO date (_id), so a date can
// only ever have one default protein.
type mongoMenuRepository struct {
	collection *mongo.Collection
}

func NewMongoMenuRepository(db *mongo.Database) repository.MenuRepository {
	return &mongoMenuRepository{
		collection: db.Collection(menuCollectionName),
	}
}

// UpsertMany replaces the default protein of each given day and returns how
// many days were inserted or changed.
func (r *mongoMenuRepository) UpsertMany(ctx context.Context, days []domain.MenuDay) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(days))
	for _, day := range days {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": day.Date}).
			SetUpdate(bson.M{"$set": bson.M{
				"defaultProtein": day.DefaultProtein,
				"updatedAt":      now,
			}}).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return int(result.UpsertedCount + result.ModifiedCount), nil
}

// GetRange returns menu days within [from, to], ascending.
func (r *mongoMenuRepository) GetRange(ctx context.Context, from, to domain.Date) ([]domain.MenuDay, error) {
	filter := bson.M{"_id": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	days := []domain.MenuDay{}
	if err := cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}
