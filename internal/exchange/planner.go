package exchange

import (
	"time"

	"corpintranet/portal/internal/domain"
)

// PlanBulkApply builds the pending selections for "apply target to every
// remaining day". Days past the deadline and days that already serve target
// are skipped; an empty result means nothing was eligible.
func PlanBulkApply(target domain.Protein, days []domain.MenuDay, now time.Time) map[domain.Date]Selection {
	plan := make(map[domain.Date]Selection)
	for _, day := range days {
		if !IsWithinDeadline(now, day.Date) {
			continue
		}
		if NormalizeProtein(day.DefaultProtein) == target {
			continue
		}
		plan[day.Date] = Selection{
			Date:            day.Date,
			OriginalProtein: day.DefaultProtein,
			NewProtein:      target,
		}
	}
	return plan
}
