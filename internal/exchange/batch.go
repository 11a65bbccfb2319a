package exchange

import (
	"strings"
	"time"

	"corpintranet/portal/internal/domain"
)

// Reason explains why a selection produced no action. Reasons are data for
// the end user, not Go errors.
type Reason string

const (
	ReasonUnrecognizedProtein Reason = "UNRECOGNIZED_PROTEIN"
	ReasonNoOpSelection       Reason = "NO_OP_SELECTION"
	ReasonDeadlineExpired     Reason = "DEADLINE_EXPIRED"
	ReasonNoMenuForDate       Reason = "NO_MENU_FOR_DATE"
)

// Rejection pairs a refused selection with its reason.
type Rejection struct {
	Selection Selection `json:"selection"`
	Reason    Reason    `json:"reason"`
}

// Batch is the submittable subset of a set of pending selections.
type Batch struct {
	Accepted []Selection
	Rejected []Rejection
}

// BuildSubmissionBatch filters pending down to what may be persisted at now.
// Repeated dates collapse to the last selection before validation, at the
// position of the first, so a later rejected selection also discards an
// earlier one for the same date.
func BuildSubmissionBatch(pending []Selection, now time.Time) Batch {
	var batch Batch
	for _, sel := range lastPerDate(pending) {
		if reason, ok := rejectReason(sel, now); !ok {
			batch.Rejected = append(batch.Rejected, Rejection{Selection: sel, Reason: reason})
			continue
		}
		batch.Accepted = append(batch.Accepted, sel)
	}
	return batch
}

// lastPerDate keeps one selection per date. Undated selections are kept as-is.
func lastPerDate(pending []Selection) []Selection {
	out := make([]Selection, 0, len(pending))
	position := make(map[domain.Date]int, len(pending))
	for _, sel := range pending {
		if sel.Date.IsZero() {
			out = append(out, sel)
			continue
		}
		if i, seen := position[sel.Date]; seen {
			out[i] = sel
			continue
		}
		position[sel.Date] = len(out)
		out = append(out, sel)
	}
	return out
}

func rejectReason(sel Selection, now time.Time) (Reason, bool) {
	if sel.NewProtein == "" || !sel.NewProtein.Valid() {
		return ReasonUnrecognizedProtein, false
	}
	original := strings.TrimSpace(sel.OriginalProtein)
	if original == "" || sel.Date.IsZero() {
		return ReasonNoMenuForDate, false
	}
	if strings.EqualFold(original, string(sel.NewProtein)) || NormalizeProtein(original) == sel.NewProtein {
		return ReasonNoOpSelection, false
	}
	if !IsWithinDeadline(now, sel.Date) {
		return ReasonDeadlineExpired, false
	}
	return "", true
}
