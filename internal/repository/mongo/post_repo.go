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

const maxPostPage = 100

type mongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates the mural repository.
func NewMongoPostRepository(db *mongo.Database) repository.PostRepository {
	return &mongoPostRepository{
		collection: db.Collection(postCollectionName),
	}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *domain.Post) (primitive.ObjectID, error) {
	if post.AuthorID == primitive.NilObjectID || (post.Content == "" && post.ImageKey == "") {
		return primitive.NilObjectID, repository.ErrInvalidPost
	}

	post.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []domain.Comment{}
	}

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return primitive.NilObjectID, err
	}
	return post.ID, nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	var post domain.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List returns the newest posts first. before, when set, pages past older posts.
func (r *mongoPostRepository) List(ctx context.Context, limit int, before *time.Time) ([]domain.Post, error) {
	if limit <= 0 || limit > maxPostPage {
		limit = maxPostPage
	}
	filter := bson.M{}
	if before != nil {
		filter["createdAt"] = bson.M{"$lt": *before}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []domain.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *mongoPostRepository) SetLike(ctx context.Context, postID, userID primitive.ObjectID, liked bool) (bool, error) {
	// Only match posts whose likes set would actually change.
	filter := bson.M{"_id": postID, "likes": userID}
	update := bson.M{"$pull": bson.M{"likes": userID}}
	if liked {
		filter = bson.M{"_id": postID, "likes": bson.M{"$ne": userID}}
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	}
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if result.MatchedCount > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, postID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *mongoPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment domain.Comment) error {
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func postIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "authorId", Value: 1}}},
	}
}
