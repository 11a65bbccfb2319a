package service

import (
	"context"
	"errors"
	"fmt"

	"corpintranet/portal/internal/config"
	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultLeaderboardSize = 10

// PointsService is the gamification layer.
type PointsService interface {
	// Award credits the configured amount for reason and returns it.
	Award(ctx context.Context, userID primitive.ObjectID, reason domain.PointsReason, note string) (int, error)
	Adjust(ctx context.Context, userID primitive.ObjectID, amount int, note string) error
	History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.PointsEntry, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type pointsService struct {
	pointsRepo repository.PointsRepository
	rules      config.PointsConfig
	logger     *zap.Logger
}

func NewPointsService(pointsRepo repository.PointsRepository, rules config.PointsConfig, logger *zap.Logger) PointsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pointsService{pointsRepo: pointsRepo, rules: rules, logger: logger}
}

func (s *pointsService) amountFor(reason domain.PointsReason) int {
	switch reason {
	case domain.PointsForPost:
		return s.rules.Post
	case domain.PointsForComment:
		return s.rules.Comment
	case domain.PointsForLike:
		return s.rules.Like
	case domain.PointsForExchange:
		return s.rules.Exchange
	default:
		return 0
	}
}

func (s *pointsService) Award(ctx context.Context, userID primitive.ObjectID, reason domain.PointsReason, note string) (int, error) {
	amount := s.amountFor(reason)
	if amount == 0 {
		return 0, nil
	}
	err := s.pointsRepo.Award(ctx, domain.PointsEntry{UserID: userID, Amount: amount, Reason: reason, Note: note})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("award points: %w", err)
	}
	s.logger.Debug("points awarded", zap.String("user", userID.Hex()), zap.String("reason", string(reason)), zap.Int("amount", amount))
	return amount, nil
}

// Adjust applies a manual correction; amount may be negative.
func (s *pointsService) Adjust(ctx context.Context, userID primitive.ObjectID, amount int, note string) error {
	if amount == 0 {
		return fmt.Errorf("%w: amount must not be zero", ErrInvalidInput)
	}
	err := s.pointsRepo.Award(ctx, domain.PointsEntry{UserID: userID, Amount: amount, Reason: domain.PointsForAdjustment, Note: note})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err == nil {
		s.logger.Info("points adjusted", zap.String("user", userID.Hex()), zap.Int("amount", amount), zap.String("note", note))
	}
	return err
}

func (s *pointsService) History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.PointsEntry, error) {
	return s.pointsRepo.History(ctx, userID, limit)
}

func (s *pointsService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	return s.pointsRepo.Leaderboard(ctx, limit)
}
