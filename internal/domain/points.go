package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PointsReason names the action that produced a ledger entry.
type PointsReason string

const (
	PointsForPost       PointsReason = "mural_post"
	PointsForComment    PointsReason = "mural_comment"
	PointsForLike       PointsReason = "mural_like"
	PointsForExchange   PointsReason = "protein_exchange"
	PointsForAdjustment PointsReason = "admin_adjustment"
)

// PointsEntry is one row of the gamification ledger.
type PointsEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Amount    int                `bson:"amount" json:"amount"`
	Reason    PointsReason       `bson:"reason" json:"reason"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// LeaderboardEntry is a projection of a user for ranking.
type LeaderboardEntry struct {
	UserID primitive.ObjectID `bson:"_id" json:"userId"`
	Name   string             `bson:"name" json:"name"`
	Points int                `bson:"points" json:"points"`
}
