package lifecycle

import (
	"testing"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
)

func items(completed, total int) []models.ChecklistItem {
	out := make([]models.ChecklistItem, total)
	for i := range out {
		out[i].Completed = i < completed
	}
	return out
}

func TestChecklistRatio(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{2, 3, 67},
		{1, 3, 33},
		{3, 3, 100},
	}
	for _, tc := range cases {
		if got := ChecklistRatio(items(tc.completed, tc.total)); got != tc.want {
			t.Errorf("ChecklistRatio(%d/%d) = %d, want %d", tc.completed, tc.total, got, tc.want)
		}
	}
}

func TestDeriveProgress_TerminalForces100(t *testing.T) {
	for _, status := range []models.ActionStatus{
		models.StatusCompleted, models.StatusVerified, models.StatusClosed,
	} {
		if got := DeriveProgress(items(1, 4), 42, status); got != 100 {
			t.Errorf("DeriveProgress(.., %s) = %d, want 100", status, got)
		}
	}
}

func TestDeriveProgress_PreExecutionForces0(t *testing.T) {
	for _, status := range []models.ActionStatus{
		models.StatusDraft, models.StatusPendingApproval, models.StatusApproved,
	} {
		if got := DeriveProgress(nil, 42, status); got != 0 {
			t.Errorf("DeriveProgress(.., %s) = %d, want 0", status, got)
		}
	}
}

func TestDeriveProgress_ChecklistWinsInProgress(t *testing.T) {
	if got := DeriveProgress(items(2, 4), 90, models.StatusInProgress); got != 50 {
		t.Errorf("checklist ratio should win, got %d", got)
	}
}

func TestDeriveProgress_BlockedKeepsChecklistRatio(t *testing.T) {
	// Blocking must not reroute a checklist-derived value through the
	// manual clamp: a finished checklist stays at 100.
	if got := DeriveProgress(items(3, 3), 100, models.StatusBlocked); got != 100 {
		t.Errorf("full checklist while blocked = %d, want 100", got)
	}
	if got := DeriveProgress(items(1, 4), 90, models.StatusBlocked); got != 25 {
		t.Errorf("checklist ratio should win while blocked, got %d", got)
	}
}

func TestDeriveProgress_ManualClamped(t *testing.T) {
	if got := DeriveProgress(nil, 150, models.StatusInProgress); got != 99 {
		t.Errorf("manual progress should clamp to 99, got %d", got)
	}
	if got := DeriveProgress(nil, -5, models.StatusInProgress); got != 0 {
		t.Errorf("manual progress should clamp to 0, got %d", got)
	}
	if got := DeriveProgress(nil, 60, models.StatusBlocked); got != 60 {
		t.Errorf("blocked keeps manual value, got %d", got)
	}
}
