package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names
const (
	userCollectionName        = "users"
	menuCollectionName        = "menu_days"
	exchangeCollectionName    = "protein_exchanges"
	postCollectionName        = "mural_posts"
	reservationCollectionName = "reservations"
	pointsCollectionName      = "points_ledger"
)

// ConnectDB establishes a connection to MongoDB and verifies it with a ping.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connect may succeed against an unresponsive server.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every portal collection. Failures are
// logged and do not stop the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sets := map[string][]mongo.IndexModel{
		userCollectionName:        userIndexes(),
		exchangeCollectionName:    exchangeIndexes(),
		postCollectionName:        postIndexes(),
		reservationCollectionName: reservationIndexes(),
		pointsCollectionName:      pointsIndexes(),
	}
	for name, indexes := range sets {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			logger.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
			continue
		}
		logger.Debug("indexes ensured", zap.String("collection", name), zap.Int("count", len(indexes)))
	}
}
