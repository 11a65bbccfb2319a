package exchange

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"corpintranet/portal/internal/domain"
)

var ErrDuplicateMenuDay = errors.New("duplicate menu day")

// State is the display state of one menu day.
type State string

const (
	StateNone    State = "NONE"
	StatePending State = "PENDING"
	StateSaved   State = "SAVED"
)

// Selection is an exchange choice that has not been persisted yet.
type Selection struct {
	Date            domain.Date    `json:"date"`
	OriginalProtein string         `json:"originalProtein"`
	NewProtein      domain.Protein `json:"newProtein"`
}

// Decision is what the portal shows (and allows) for one menu day.
type Decision struct {
	Date             domain.Date    `json:"date"`
	OriginalProtein  string         `json:"originalProtein"`
	DefaultProtein   domain.Protein `json:"defaultProtein"` // normalized OriginalProtein, "" when unrecognized
	EffectiveProtein string         `json:"effectiveProtein"`
	State            State          `json:"state"`
	WithinDeadline   bool           `json:"withinDeadline"`
}

// Menu indexes menu days by date.
type Menu map[domain.Date]domain.MenuDay

// NewMenu validates days once: zero dates and repeated dates are rejected.
func NewMenu(days []domain.MenuDay) (Menu, error) {
	menu := make(Menu, len(days))
	for i, day := range days {
		if day.Date.IsZero() {
			return nil, fmt.Errorf("menu day %d: missing date", i)
		}
		if _, exists := menu[day.Date]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMenuDay, day.Date)
		}
		menu[day.Date] = day
	}
	return menu, nil
}

// Dates returns the menu dates in ascending order.
func (m Menu) Dates() []domain.Date {
	dates := make([]domain.Date, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// ResolveDay computes the Decision for date. It returns false when the menu
// has no entry for date: such a day is not shown at all.
//
// A pending selection that picks the day's own default protein is not an
// exchange; it collapses to StateNone and never reaches storage.
func ResolveDay(date domain.Date, menu Menu, existing *domain.Exchange, pending *Selection, now time.Time) (Decision, bool) {
	day, ok := menu[date]
	if !ok {
		return Decision{}, false
	}

	decision := Decision{
		Date:             date,
		OriginalProtein:  day.DefaultProtein,
		DefaultProtein:   NormalizeProtein(day.DefaultProtein),
		EffectiveProtein: day.DefaultProtein,
		State:            StateNone,
		WithinDeadline:   IsWithinDeadline(now, date),
	}

	if pending != nil && pending.NewProtein != "" {
		if pending.NewProtein == decision.DefaultProtein {
			return decision, true
		}
		decision.EffectiveProtein = string(pending.NewProtein)
		if existing != nil && existing.NewProtein == pending.NewProtein {
			decision.State = StateSaved
		} else {
			decision.State = StatePending
		}
		return decision, true
	}

	if existing != nil {
		decision.EffectiveProtein = string(existing.NewProtein)
		decision.State = StateSaved
	}
	return decision, true
}
