package lifecycle

import (
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
)

// DueSoonHorizon is how far ahead of the due date a plan starts counting
// as due soon.
const DueSoonHorizon = 3 * 24 * time.Hour

// IsOverdue reports whether the plan is past due and still executing.
func IsOverdue(p *models.ActionPlan, now time.Time) bool {
	if p.DueDate.IsZero() || p.Status.IsTerminal() {
		return false
	}
	return now.After(p.DueDate)
}

// IsDueSoon reports whether the due date falls within the horizon and the
// plan is not already overdue.
func IsDueSoon(p *models.ActionPlan, now time.Time) bool {
	if p.DueDate.IsZero() || p.Status.IsTerminal() {
		return false
	}
	until := p.DueDate.Sub(now)
	return until > 0 && until <= DueSoonHorizon
}

type KanbanColumnName string

const (
	ColumnUrgent     KanbanColumnName = "urgent"
	ColumnToPlan     KanbanColumnName = "to_plan"
	ColumnTodo       KanbanColumnName = "todo"
	ColumnInProgress KanbanColumnName = "in_progress"
	ColumnDone       KanbanColumnName = "done"
)

// KanbanColumn buckets a plan for board display. Rules apply in order;
// the urgent rule short-circuits all others.
func KanbanColumn(priority models.ActionPriority, status models.ActionStatus, overdue bool) KanbanColumnName {
	if overdue || priority == models.PriorityCritical {
		return ColumnUrgent
	}
	switch status {
	case models.StatusDraft, models.StatusPendingApproval:
		return ColumnToPlan
	case models.StatusApproved:
		return ColumnTodo
	case models.StatusInProgress, models.StatusBlocked:
		return ColumnInProgress
	default:
		return ColumnDone
	}
}

// CalendarBucket groups plans sharing a local due date.
type CalendarBucket struct {
	Date  string              `json:"date"`
	Plans []models.ActionPlan `json:"plans"`
}

// CalendarBuckets groups plans by the local calendar date of their due
// date. Buckets come out date-ascending; within a bucket the input order
// is preserved. Plans without a due date are skipped.
func CalendarBuckets(plans []models.ActionPlan, loc *time.Location) []CalendarBucket {
	if loc == nil {
		loc = time.Local
	}
	index := map[string]int{}
	var buckets []CalendarBucket
	for _, p := range plans {
		if p.DueDate.IsZero() {
			continue
		}
		date := p.DueDate.In(loc).Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			i = len(buckets)
			index[date] = i
			buckets = append(buckets, CalendarBucket{Date: date})
		}
		buckets[i].Plans = append(buckets[i].Plans, p)
	}
	for i := 1; i < len(buckets); i++ {
		for j := i; j > 0 && buckets[j].Date < buckets[j-1].Date; j-- {
			buckets[j], buckets[j-1] = buckets[j-1], buckets[j]
		}
	}
	return buckets
}
