package mongo

import (
	"context"
	"errors"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoReservationRepository struct {
	collection *mongo.Collection
}

func NewMongoReservationRepository(db *mongo.Database) repository.ReservationRepository {
	return &mongoReservationRepository{
		collection: db.Collection(reservationCollectionName),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, res *domain.Reservation) (primitive.ObjectID, error) {
	if res.UserID == primitive.NilObjectID || res.Resource == "" {
		return primitive.NilObjectID, errors.New("reservation requires userId and resource")
	}
	res.ID = primitive.NewObjectID()
	res.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, res); err != nil {
		return primitive.NilObjectID, err
	}
	return res.ID, nil
}

func (r *mongoReservationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// FindOverlapping uses the half-open interval test start < other.end && end > other.start.
func (r *mongoReservationRepository) FindOverlapping(ctx context.Context, kind domain.ReservationKind, resource string, start, end time.Time) ([]domain.Reservation, error) {
	filter := bson.M{
		"kind":     kind,
		"resource": resource,
		"start":    bson.M{"$lt": end},
		"end":      bson.M{"$gt": start},
	}
	return r.find(ctx, filter)
}

// ListRange returns reservations of kind intersecting [start, end); an empty kind lists all kinds.
func (r *mongoReservationRepository) ListRange(ctx context.Context, kind domain.ReservationKind, start, end time.Time) ([]domain.Reservation, error) {
	filter := bson.M{
		"start": bson.M{"$lt": end},
		"end":   bson.M{"$gt": start},
	}
	if kind != "" {
		filter["kind"] = kind
	}
	return r.find(ctx, filter)
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M) ([]domain.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reservations := []domain.Reservation{}
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func reservationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "resource", Value: 1}, {Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}
}
