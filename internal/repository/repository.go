package repository

import (
	"context"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/exchange"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrInvalidPost  = RepositoryError("post requires an author and content or an image")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error
	LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID string) error
}

// MenuRepository stores the published cafeteria calendar.
type MenuRepository interface {
	UpsertMany(ctx context.Context, days []domain.MenuDay) (int, error)
	GetRange(ctx context.Context, from, to domain.Date) ([]domain.MenuDay, error)
}

// UpsertResult reports a bulk exchange write per record.
type UpsertResult struct {
	Inserted []domain.Date
	Updated  []domain.Date
	Failed   map[domain.Date]error
}

// ExchangeRepository stores protein exchanges, one per (user, date).
type ExchangeRepository interface {
	GetByUserAndRange(ctx context.Context, userID primitive.ObjectID, from, to domain.Date) ([]domain.Exchange, error)
	UpsertMany(ctx context.Context, userID primitive.ObjectID, selections []exchange.Selection) (*UpsertResult, error)
	// Tally counts exchanges per (date, new protein) across all users in [from, to].
	Tally(ctx context.Context, from, to domain.Date) ([]domain.ExchangeTally, error)
}

// PostRepository stores mural posts with their embedded likes and comments.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	List(ctx context.Context, limit int, before *time.Time) ([]domain.Post, error)
	// SetLike adds or removes userID from the likes set. It returns true when the set changed.
	SetLike(ctx context.Context, postID, userID primitive.ObjectID, liked bool) (bool, error)
	AddComment(ctx context.Context, postID primitive.ObjectID, comment domain.Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ReservationRepository stores room and visitor reservations.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Reservation, error)
	// FindOverlapping returns reservations of kind/resource intersecting [start, end).
	FindOverlapping(ctx context.Context, kind domain.ReservationKind, resource string, start, end time.Time) ([]domain.Reservation, error)
	ListRange(ctx context.Context, kind domain.ReservationKind, start, end time.Time) ([]domain.Reservation, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PointsRepository records ledger entries and keeps users.points in sync.
type PointsRepository interface {
	Award(ctx context.Context, entry domain.PointsEntry) error
	History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.PointsEntry, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}
