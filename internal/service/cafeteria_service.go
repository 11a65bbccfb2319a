package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/exchange"
	"corpintranet/portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReasonStoreFailed marks an accepted selection the store could not write.
const ReasonStoreFailed exchange.Reason = "STORE_FAILED"

var ErrEmptyMenu = errors.New("menu import contains no days")

// MonthView is one user's exchange calendar for a month.
type MonthView struct {
	Now              time.Time           `json:"now"`
	EarliestEligible domain.Date         `json:"earliestEligible"`
	Days             []exchange.Decision `json:"days"`
}

// RejectedDate is a submitted selection that was not persisted.
type RejectedDate struct {
	Date   domain.Date     `json:"date"`
	Reason exchange.Reason `json:"reason"`
}

// SubmitResult summarizes one submission.
type SubmitResult struct {
	InsertedCount      int            `json:"insertedCount"`
	UpdatedCount       int            `json:"updatedCount"`
	TotalPointsAwarded int            `json:"totalPointsAwarded"`
	Rejected           []RejectedDate `json:"rejected"`
}

type CafeteriaService interface {
	GetMonth(ctx context.Context, userID primitive.ObjectID, year int, month time.Month, pending []exchange.Selection) (*MonthView, error)
	PlanBulkApply(ctx context.Context, year int, month time.Month, target domain.Protein) ([]exchange.Selection, error)
	Submit(ctx context.Context, userID primitive.ObjectID, selections []exchange.Selection) (*SubmitResult, error)
	ImportMenu(ctx context.Context, days []domain.MenuDay) (int, error)
	Tally(ctx context.Context, year int, month time.Month) ([]domain.ExchangeTally, error)
	// Now is the service clock in the cafeteria timezone.
	Now() time.Time
}

type cafeteriaService struct {
	menuRepo     repository.MenuRepository
	exchangeRepo repository.ExchangeRepository
	points       PointsService
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// CafeteriaOption customizes a CafeteriaService.
type CafeteriaOption func(*cafeteriaService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CafeteriaOption {
	return func(s *cafeteriaService) { s.now = now }
}

// NewCafeteriaService evaluates every deadline in loc. points may be nil.
func NewCafeteriaService(
	menuRepo repository.MenuRepository,
	exchangeRepo repository.ExchangeRepository,
	points PointsService,
	loc *time.Location,
	logger *zap.Logger,
	opts ...CafeteriaOption,
) CafeteriaService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &cafeteriaService{
		menuRepo:     menuRepo,
		exchangeRepo: exchangeRepo,
		points:       points,
		loc:          loc,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *cafeteriaService) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *cafeteriaService) loadMenu(ctx context.Context, from, to domain.Date) (exchange.Menu, []domain.MenuDay, error) {
	days, err := s.menuRepo.GetRange(ctx, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("load menu: %w", err)
	}
	menu, err := exchange.NewMenu(days)
	if err != nil {
		return nil, nil, fmt.Errorf("load menu: %w", err)
	}
	return menu, days, nil
}

// GetMonth resolves every menu day of the month against the user's saved
// exchanges and the caller's unsaved selections.
func (s *cafeteriaService) GetMonth(ctx context.Context, userID primitive.ObjectID, year int, month time.Month, pending []exchange.Selection) (*MonthView, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidInput, month)
	}
	now := s.Now()
	from, to := domain.MonthRange(year, month)

	menu, _, err := s.loadMenu(ctx, from, to)
	if err != nil {
		return nil, err
	}

	saved, err := s.exchangeRepo.GetByUserAndRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load exchanges: %w", err)
	}
	existing := make(map[domain.Date]*domain.Exchange, len(saved))
	for i := range saved {
		existing[saved[i].Date] = &saved[i]
	}

	unsaved := make(map[domain.Date]*exchange.Selection, len(pending))
	for i := range pending {
		sel := pending[i]
		sel.NewProtein = canonicalProtein(sel.NewProtein)
		unsaved[sel.Date] = &sel
	}

	view := &MonthView{
		Now:              now,
		EarliestEligible: exchange.EarliestEligibleDate(now),
		Days:             make([]exchange.Decision, 0, len(menu)),
	}
	for _, date := range menu.Dates() {
		if decision, ok := exchange.ResolveDay(date, menu, existing[date], unsaved[date], now); ok {
			view.Days = append(view.Days, decision)
		}
	}
	return view, nil
}

// PlanBulkApply lists the selections that would apply target to every
// remaining eligible day of the month, in date order.
func (s *cafeteriaService) PlanBulkApply(ctx context.Context, year int, month time.Month, target domain.Protein) ([]exchange.Selection, error) {
	target = canonicalProtein(target)
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown protein %q", ErrInvalidInput, target)
	}
	from, to := domain.MonthRange(year, month)
	_, days, err := s.loadMenu(ctx, from, to)
	if err != nil {
		return nil, err
	}

	plan := exchange.PlanBulkApply(target, days, s.Now())
	selections := make([]exchange.Selection, 0, len(plan))
	for _, sel := range plan {
		selections = append(selections, sel)
	}
	sort.Slice(selections, func(i, j int) bool { return selections[i].Date.Before(selections[j].Date) })
	return selections, nil
}

// Submit persists the submittable subset of selections. The original protein
// of every selection is taken from the stored menu, never from the caller.
func (s *cafeteriaService) Submit(ctx context.Context, userID primitive.ObjectID, selections []exchange.Selection) (*SubmitResult, error) {
	result := &SubmitResult{Rejected: []RejectedDate{}}
	if len(selections) == 0 {
		return result, nil
	}
	now := s.Now()

	from, to := selections[0].Date, selections[0].Date
	for _, sel := range selections[1:] {
		if sel.Date.Before(from) {
			from = sel.Date
		}
		if sel.Date.After(to) {
			to = sel.Date
		}
	}
	menu, _, err := s.loadMenu(ctx, from, to)
	if err != nil {
		return nil, err
	}

	checked := make([]exchange.Selection, len(selections))
	for i, sel := range selections {
		sel.NewProtein = canonicalProtein(sel.NewProtein)
		sel.OriginalProtein = ""
		if day, ok := menu[sel.Date]; ok {
			sel.OriginalProtein = day.DefaultProtein
		}
		checked[i] = sel
	}

	batch := exchange.BuildSubmissionBatch(checked, now)
	for _, r := range batch.Rejected {
		result.Rejected = append(result.Rejected, RejectedDate{Date: r.Selection.Date, Reason: r.Reason})
	}
	if len(batch.Accepted) == 0 {
		return result, nil
	}

	written, err := s.exchangeRepo.UpsertMany(ctx, userID, batch.Accepted)
	if err != nil && isTransient(err) {
		s.logger.Warn("exchange upsert failed, retrying", zap.String("user", userID.Hex()), zap.Error(err))
		written, err = s.exchangeRepo.UpsertMany(ctx, userID, batch.Accepted)
	}
	if err != nil {
		return nil, fmt.Errorf("save exchanges: %w", err)
	}

	for _, sel := range batch.Accepted {
		if failure, failed := written.Failed[sel.Date]; failed {
			s.logger.Error("exchange not saved", zap.String("user", userID.Hex()), zap.Stringer("date", sel.Date), zap.Error(failure))
			result.Rejected = append(result.Rejected, RejectedDate{Date: sel.Date, Reason: ReasonStoreFailed})
		}
	}
	result.InsertedCount = len(written.Inserted)
	result.UpdatedCount = len(written.Updated)

	if s.points != nil {
		for _, date := range written.Inserted {
			awarded, err := s.points.Award(ctx, userID, domain.PointsForExchange, date.String())
			if err != nil {
				s.logger.Warn("exchange points not awarded", zap.String("user", userID.Hex()), zap.Stringer("date", date), zap.Error(err))
				continue
			}
			result.TotalPointsAwarded += awarded
		}
	}

	s.logger.Info("exchanges submitted",
		zap.String("user", userID.Hex()),
		zap.Int("inserted", result.InsertedCount),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("rejected", len(result.Rejected)))
	return result, nil
}

// ImportMenu replaces the published defaults for the given dates.
func (s *cafeteriaService) ImportMenu(ctx context.Context, days []domain.MenuDay) (int, error) {
	if len(days) == 0 {
		return 0, ErrEmptyMenu
	}
	if _, err := exchange.NewMenu(days); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	n, err := s.menuRepo.UpsertMany(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("import menu: %w", err)
	}
	s.logger.Info("menu imported", zap.Int("days", len(days)), zap.Int("changed", n))
	return n, nil
}

func (s *cafeteriaService) Tally(ctx context.Context, year int, month time.Month) ([]domain.ExchangeTally, error) {
	from, to := domain.MonthRange(year, month)
	return s.exchangeRepo.Tally(ctx, from, to)
}

// canonicalProtein maps free-form input such as "frango" onto its label.
// Unrecognized input is returned unchanged so validation can reject it.
func canonicalProtein(p domain.Protein) domain.Protein {
	if n := exchange.NormalizeProtein(string(p)); n != "" {
		return n
	}
	return p
}
