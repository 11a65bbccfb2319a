package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/exchange"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoExchangeRepository implements repository.ExchangeRepository.
// A unique (userId, date) index makes concurrent submissions last-write-wins.
type mongoExchangeRepository struct {
	collection *mongo.Collection
}

func NewMongoExchangeRepository(db *mongo.Database) repository.ExchangeRepository {
	return &mongoExchangeRepository{
		collection: db.Collection(exchangeCollectionName),
	}
}

// GetByUserAndRange returns the user's exchanges with dates in [from, to].
func (r *mongoExchangeRepository) GetByUserAndRange(ctx context.Context, userID primitive.ObjectID, from, to domain.Date) ([]domain.Exchange, error) {
	filter := bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exchanges := []domain.Exchange{}
	if err := cursor.All(ctx, &exchanges); err != nil {
		return nil, err
	}
	return exchanges, nil
}

// UpsertMany writes one upsert per selection in a single unordered bulk call.
// Failures are reported per date; the remaining records are still written.
func (r *mongoExchangeRepository) UpsertMany(ctx context.Context, userID primitive.ObjectID, selections []exchange.Selection) (*repository.UpsertResult, error) {
	result := &repository.UpsertResult{Failed: map[domain.Date]error{}}
	if len(selections) == 0 {
		return result, nil
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(selections))
	for _, sel := range selections {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"userId": userID, "date": sel.Date}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"originalProtein": sel.OriginalProtein,
					"newProtein":      sel.NewProtein,
					"updatedAt":       now,
				},
				"$setOnInsert": bson.M{"createdAt": now},
			}).
			SetUpsert(true))
	}

	bulk, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
			return nil, err
		}
		for _, we := range bwe.WriteErrors {
			if we.Index >= 0 && we.Index < len(selections) {
				result.Failed[selections[we.Index].Date] = fmt.Errorf("write error %d: %s", we.Code, we.Message)
			}
		}
	}

	for i, sel := range selections {
		if _, failed := result.Failed[sel.Date]; failed {
			continue
		}
		if bulk != nil {
			if _, inserted := bulk.UpsertedIDs[int64(i)]; inserted {
				result.Inserted = append(result.Inserted, sel.Date)
				continue
			}
		}
		result.Updated = append(result.Updated, sel.Date)
	}
	return result, nil
}

// Tally groups exchanges in [from, to] by date and new protein.
func (r *mongoExchangeRepository) Tally(ctx context.Context, from, to domain.Date) ([]domain.ExchangeTally, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"date": "$date", "newProtein": "$newProtein"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":        0,
			"date":       "$_id.date",
			"newProtein": "$_id.newProtein",
			"count":      1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}, {Key: "newProtein", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tallies := []domain.ExchangeTally{}
	if err := cursor.All(ctx, &tallies); err != nil {
		return nil, err
	}
	return tallies, nil
}

func exchangeIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "date", Value: 1}}, // kitchen-side daily counts
		},
	}
}
