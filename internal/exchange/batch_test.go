package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpintranet/portal/internal/domain"
)

func TestBuildSubmissionBatch(t *testing.T) {
	now := at(2025, 8, 15, 16, 5, 0)

	pending := []Selection{
		{Date: domain.NewDate(2025, 8, 16), OriginalProtein: "Frango", NewProtein: domain.ProteinOmelete},          // today+1 after cutoff
		{Date: domain.NewDate(2025, 8, 17), OriginalProtein: "Frango", NewProtein: domain.ProteinOmelete},          // ok
		{Date: domain.NewDate(2025, 8, 18), OriginalProtein: "Frango grelhado", NewProtein: domain.ProteinFrango},  // no-op
		{Date: domain.NewDate(2025, 8, 19), OriginalProtein: "", NewProtein: domain.ProteinFrango},                 // no default
		{Date: domain.NewDate(2025, 8, 20), OriginalProtein: "Omelete", NewProtein: ""},                            // nothing picked
		{Date: domain.NewDate(2025, 8, 21), OriginalProtein: "Omelete", NewProtein: domain.Protein("Picanha")},     // not in enum
		{Date: domain.NewDate(2025, 8, 22), OriginalProtein: "Peixe", NewProtein: domain.ProteinOvoFrito},          // ok, unknown default
	}

	batch := BuildSubmissionBatch(pending, now)

	require.Len(t, batch.Accepted, 2)
	assert.Equal(t, domain.NewDate(2025, 8, 17), batch.Accepted[0].Date)
	assert.Equal(t, domain.NewDate(2025, 8, 22), batch.Accepted[1].Date)

	reasons := map[domain.Date]Reason{}
	for _, r := range batch.Rejected {
		reasons[r.Selection.Date] = r.Reason
	}
	assert.Equal(t, map[domain.Date]Reason{
		domain.NewDate(2025, 8, 16): ReasonDeadlineExpired,
		domain.NewDate(2025, 8, 18): ReasonNoOpSelection,
		domain.NewDate(2025, 8, 19): ReasonNoMenuForDate,
		domain.NewDate(2025, 8, 20): ReasonUnrecognizedProtein,
		domain.NewDate(2025, 8, 21): ReasonUnrecognizedProtein,
	}, reasons)
}

func TestBuildSubmissionBatch_BeforeCutoffAcceptsTomorrow(t *testing.T) {
	now := at(2025, 8, 15, 15, 30, 0)
	batch := BuildSubmissionBatch([]Selection{
		{Date: domain.NewDate(2025, 8, 16), OriginalProtein: "Frango", NewProtein: domain.ProteinOvoCozido},
	}, now)
	assert.Len(t, batch.Accepted, 1)
	assert.Empty(t, batch.Rejected)
}

func TestBuildSubmissionBatch_LastDuplicateWins(t *testing.T) {
	now := at(2025, 8, 15, 10, 0, 0)
	batch := BuildSubmissionBatch([]Selection{
		{Date: domain.NewDate(2025, 8, 20), OriginalProtein: "Frango", NewProtein: domain.ProteinOmelete},
		{Date: domain.NewDate(2025, 8, 21), OriginalProtein: "Frango", NewProtein: domain.ProteinOmelete},
		{Date: domain.NewDate(2025, 8, 20), OriginalProtein: "Frango", NewProtein: domain.ProteinOvoFrito},
	}, now)

	require.Len(t, batch.Accepted, 2)
	assert.Equal(t, domain.NewDate(2025, 8, 20), batch.Accepted[0].Date)
	assert.Equal(t, domain.ProteinOvoFrito, batch.Accepted[0].NewProtein)
	assert.Equal(t, domain.NewDate(2025, 8, 21), batch.Accepted[1].Date)
}

func TestBuildSubmissionBatch_LaterRejectionDiscardsEarlierSelection(t *testing.T) {
	now := at(2025, 8, 15, 10, 0, 0)
	revert := Selection{Date: domain.NewDate(2025, 8, 20), OriginalProtein: "Frango", NewProtein: domain.ProteinFrango}
	batch := BuildSubmissionBatch([]Selection{
		{Date: domain.NewDate(2025, 8, 20), OriginalProtein: "Frango", NewProtein: domain.ProteinOmelete},
		revert,
	}, now)

	assert.Empty(t, batch.Accepted)
	require.Len(t, batch.Rejected, 1)
	assert.Equal(t, revert, batch.Rejected[0].Selection)
	assert.Equal(t, ReasonNoOpSelection, batch.Rejected[0].Reason)
}

func TestBuildSubmissionBatch_LaterValidSelectionReplacesRejected(t *testing.T) {
	now := at(2025, 8, 15, 10, 0, 0)
	batch := BuildSubmissionBatch([]Selection{
		{Date: domain.NewDate(2025, 8, 20), OriginalProtein: "Frango", NewProtein: "Peixe"},
		{Date: domain.NewDate(2025, 8, 20), OriginalProtein: "Frango", NewProtein: domain.ProteinOvoCozido},
	}, now)

	assert.Empty(t, batch.Rejected)
	require.Len(t, batch.Accepted, 1)
	assert.Equal(t, domain.ProteinOvoCozido, batch.Accepted[0].NewProtein)
}

func TestBuildSubmissionBatch_NeverAcceptsNoOp(t *testing.T) {
	now := at(2025, 8, 15, 10, 0, 0)
	var pending []Selection
	for i, p := range domain.Proteins {
		pending = append(pending, Selection{Date: domain.NewDate(2025, 9, 1+i), OriginalProtein: string(p), NewProtein: p})
	}
	batch := BuildSubmissionBatch(pending, now)
	assert.Empty(t, batch.Accepted)
	for _, r := range batch.Rejected {
		assert.Equal(t, ReasonNoOpSelection, r.Reason)
	}
}

func TestBuildSubmissionBatch_Empty(t *testing.T) {
	batch := BuildSubmissionBatch(nil, at(2025, 8, 15, 10, 0, 0))
	assert.Empty(t, batch.Accepted)
	assert.Empty(t, batch.Rejected)
}
