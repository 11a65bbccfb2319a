// Package exchange decides which cafeteria protein exchanges a user may still
// request, and in what state each menu day currently is.
//
// Every function is pure over its arguments. Callers sample the clock once per
// pass (one render, one submission) and pass the same now to every call, so a
// batch never straddles the cutoff.
package exchange

import (
	"time"

	"corpintranet/portal/internal/domain"
)

// CutoffHour is the local hour at which the earliest exchangeable day moves
// one day further out.
const CutoffHour = 16

// Cutoff returns today's cutoff instant in now's location.
func Cutoff(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, CutoffHour, 0, 0, 0, now.Location())
}

// EarliestEligibleDate is tomorrow before the cutoff and the day after
// tomorrow from the cutoff on (16:00:00 sharp already counts as past it).
func EarliestEligibleDate(now time.Time) domain.Date {
	today := domain.DateOf(now)
	if now.Before(Cutoff(now)) {
		return today.AddDays(1)
	}
	return today.AddDays(2)
}

// IsWithinDeadline reports whether an exchange for target may still be
// created or changed at now. There is no upper bound.
func IsWithinDeadline(now time.Time, target domain.Date) bool {
	return !target.Before(EarliestEligibleDate(now))
}
