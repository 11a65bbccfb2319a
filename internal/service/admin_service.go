package service

import (
	"context"
	"errors"
	"fmt"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AdminService backs the role-gated admin panel.
type AdminService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetRole(ctx context.Context, actorID, userID primitive.ObjectID, role domain.Role) error
	AdjustPoints(ctx context.Context, userID primitive.ObjectID, amount int, note string) error
}

type adminService struct {
	userRepo repository.UserRepository
	points   PointsService
	logger   *zap.Logger
}

func NewAdminService(userRepo repository.UserRepository, points PointsService, logger *zap.Logger) AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adminService{userRepo: userRepo, points: points, logger: logger}
}

func (s *adminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// SetRole changes a user's role. Admins cannot demote themselves, so the
// panel always keeps at least the acting admin.
func (s *adminService) SetRole(ctx context.Context, actorID, userID primitive.ObjectID, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if actorID == userID && role != domain.RoleAdmin {
		return fmt.Errorf("%w: cannot demote yourself", ErrInvalidInput)
	}
	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Info("role changed", zap.String("user", userID.Hex()), zap.String("role", string(role)), zap.String("by", actorID.Hex()))
	return nil
}

func (s *adminService) AdjustPoints(ctx context.Context, userID primitive.ObjectID, amount int, note string) error {
	return s.points.Adjust(ctx, userID, amount, note)
}
