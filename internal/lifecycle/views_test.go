package lifecycle

import (
	"testing"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
)

var viewNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestIsOverdue(t *testing.T) {
	cases := []struct {
		name   string
		due    time.Time
		status models.ActionStatus
		want   bool
	}{
		{"past due executing", viewNow.Add(-time.Hour), models.StatusInProgress, true},
		{"past due draft", viewNow.Add(-24 * time.Hour), models.StatusDraft, true},
		{"past due completed", viewNow.Add(-time.Hour), models.StatusCompleted, false},
		{"past due closed", viewNow.Add(-time.Hour), models.StatusClosed, false},
		{"future due", viewNow.Add(time.Hour), models.StatusInProgress, false},
		{"no due date", time.Time{}, models.StatusInProgress, false},
	}
	for _, tc := range cases {
		p := &models.ActionPlan{DueDate: tc.due, Status: tc.status}
		if got := IsOverdue(p, viewNow); got != tc.want {
			t.Errorf("%s: IsOverdue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsDueSoon(t *testing.T) {
	cases := []struct {
		name string
		due  time.Time
		want bool
	}{
		{"due in 1 hour", viewNow.Add(time.Hour), true},
		{"due in exactly 3 days", viewNow.Add(3 * 24 * time.Hour), true},
		{"due in 4 days", viewNow.Add(4 * 24 * time.Hour), false},
		{"already overdue", viewNow.Add(-time.Hour), false},
	}
	for _, tc := range cases {
		p := &models.ActionPlan{DueDate: tc.due, Status: models.StatusInProgress}
		if got := IsDueSoon(p, viewNow); got != tc.want {
			t.Errorf("%s: IsDueSoon = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestKanbanColumn_RuleOrder(t *testing.T) {
	cases := []struct {
		priority models.ActionPriority
		status   models.ActionStatus
		overdue  bool
		want     KanbanColumnName
	}{
		{models.PriorityLow, models.StatusInProgress, true, ColumnUrgent},
		{models.PriorityCritical, models.StatusDraft, false, ColumnUrgent},
		{models.PriorityCritical, models.StatusClosed, false, ColumnUrgent},
		{models.PriorityMedium, models.StatusDraft, false, ColumnToPlan},
		{models.PriorityMedium, models.StatusPendingApproval, false, ColumnToPlan},
		{models.PriorityMedium, models.StatusApproved, false, ColumnTodo},
		{models.PriorityMedium, models.StatusInProgress, false, ColumnInProgress},
		{models.PriorityMedium, models.StatusBlocked, false, ColumnInProgress},
		{models.PriorityMedium, models.StatusCompleted, false, ColumnDone},
		{models.PriorityMedium, models.StatusVerified, false, ColumnDone},
		{models.PriorityMedium, models.StatusClosed, false, ColumnDone},
	}
	for _, tc := range cases {
		got := KanbanColumn(tc.priority, tc.status, tc.overdue)
		if got != tc.want {
			t.Errorf("KanbanColumn(%s, %s, %v) = %s, want %s",
				tc.priority, tc.status, tc.overdue, got, tc.want)
		}
	}
}

func TestCalendarBuckets(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 10, d, 9, 0, 0, 0, time.UTC)
	}
	plans := []models.ActionPlan{
		{Title: "b", DueDate: day(20)},
		{Title: "a", DueDate: day(18)},
		{Title: "c", DueDate: day(20).Add(5 * time.Hour)},
		{Title: "skipped"},
	}

	buckets := CalendarBuckets(plans, time.UTC)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Date != "2026-10-18" || buckets[1].Date != "2026-10-20" {
		t.Errorf("buckets not date-ascending: %s, %s", buckets[0].Date, buckets[1].Date)
	}
	// Insertion order inside a bucket.
	if buckets[1].Plans[0].Title != "b" || buckets[1].Plans[1].Title != "c" {
		t.Errorf("bucket order not stable: %v", buckets[1].Plans)
	}
}
