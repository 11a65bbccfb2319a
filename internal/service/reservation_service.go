package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxReservationSpan = 31 * 24 * time.Hour

var (
	ErrReservationConflict = errors.New("resource already reserved for part of this period")
	ErrReservationNotFound = errors.New("reservation not found")
)

// ReservationRequest is the input for a new reservation.
type ReservationRequest struct {
	Kind        domain.ReservationKind
	Resource    string
	Title       string
	VisitorName string
	VisitorDoc  string
	Start       time.Time
	End         time.Time
}

type ReservationService interface {
	Create(ctx context.Context, userID primitive.ObjectID, req ReservationRequest) (*domain.Reservation, error)
	List(ctx context.Context, kind domain.ReservationKind, from, to time.Time) ([]domain.Reservation, error)
	Cancel(ctx context.Context, id, requesterID primitive.ObjectID, requesterRole domain.Role) error
}

type reservationService struct {
	repo   repository.ReservationRepository
	logger *zap.Logger
}

func NewReservationService(repo repository.ReservationRepository, logger *zap.Logger) ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reservationService{repo: repo, logger: logger}
}

func validateReservation(req *ReservationRequest) error {
	req.Resource = strings.TrimSpace(req.Resource)
	req.VisitorName = strings.TrimSpace(req.VisitorName)

	switch req.Kind {
	case domain.ReservationRoom:
		if req.Resource == "" {
			return fmt.Errorf("%w: room is required", ErrInvalidInput)
		}
	case domain.ReservationVisitor:
		if req.VisitorName == "" {
			return fmt.Errorf("%w: visitor name is required", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown reservation kind %q", ErrInvalidInput, req.Kind)
	}
	if req.Start.IsZero() || req.End.IsZero() || !req.Start.Before(req.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidInput)
	}
	if req.End.Sub(req.Start) > maxReservationSpan {
		return fmt.Errorf("%w: reservation longer than %s", ErrInvalidInput, maxReservationSpan)
	}
	return nil
}

func (s *reservationService) Create(ctx context.Context, userID primitive.ObjectID, req ReservationRequest) (*domain.Reservation, error) {
	if err := validateReservation(&req); err != nil {
		return nil, err
	}

	// Visitors share the reception desk; only rooms are exclusive.
	if req.Kind == domain.ReservationRoom {
		clashes, err := s.repo.FindOverlapping(ctx, req.Kind, req.Resource, req.Start, req.End)
		if err != nil {
			return nil, err
		}
		if len(clashes) > 0 {
			return nil, ErrReservationConflict
		}
	}

	r := &domain.Reservation{
		Kind:        req.Kind,
		Resource:    req.Resource,
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		VisitorName: req.VisitorName,
		VisitorDoc:  strings.TrimSpace(req.VisitorDoc),
		Start:       req.Start.UTC(),
		End:         req.End.UTC(),
	}
	id, err := s.repo.Create(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	r.ID = id
	s.logger.Info("reservation created",
		zap.String("id", id.Hex()),
		zap.String("kind", string(r.Kind)),
		zap.String("resource", r.Resource),
		zap.Time("start", r.Start))
	return r, nil
}

// List returns reservations intersecting [from, to). An empty kind lists both kinds.
func (s *reservationService) List(ctx context.Context, kind domain.ReservationKind, from, to time.Time) ([]domain.Reservation, error) {
	if kind != "" && kind != domain.ReservationRoom && kind != domain.ReservationVisitor {
		return nil, fmt.Errorf("%w: unknown reservation kind %q", ErrInvalidInput, kind)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}
	return s.repo.ListRange(ctx, kind, from, to)
}

func (s *reservationService) Cancel(ctx context.Context, id, requesterID primitive.ObjectID, requesterRole domain.Role) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	if r.UserID != requesterID && requesterRole != domain.RoleAdmin {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	s.logger.Info("reservation cancelled", zap.String("id", id.Hex()), zap.String("by", requesterID.Hex()))
	return nil
}
