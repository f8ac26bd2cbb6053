package lifecycle

import (
	"testing"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"

	"pgregory.net/rapid"
)

func genPriority(t *rapid.T) models.ActionPriority {
	return rapid.SampledFrom([]models.ActionPriority{
		models.PriorityCritical, models.PriorityHigh,
		models.PriorityMedium, models.PriorityLow,
	}).Draw(t, "priority")
}

func genStatus(t *rapid.T) models.ActionStatus {
	return rapid.SampledFrom([]models.ActionStatus{
		models.StatusDraft, models.StatusPendingApproval, models.StatusApproved,
		models.StatusInProgress, models.StatusBlocked,
		models.StatusCompleted, models.StatusVerified, models.StatusClosed,
	}).Draw(t, "status")
}

// The kanban column is a pure function: same inputs, same column, and
// every input lands in exactly one of the five columns.
func TestKanbanColumn_Pure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		priority := genPriority(t)
		status := genStatus(t)
		overdue := rapid.Bool().Draw(t, "overdue")

		first := KanbanColumn(priority, status, overdue)
		second := KanbanColumn(priority, status, overdue)
		if first != second {
			t.Fatalf("column not deterministic: %s then %s", first, second)
		}

		switch first {
		case ColumnUrgent, ColumnToPlan, ColumnTodo, ColumnInProgress, ColumnDone:
		default:
			t.Fatalf("unknown column %s", first)
		}

		if overdue || priority == models.PriorityCritical {
			if first != ColumnUrgent {
				t.Fatalf("urgent rule must short-circuit, got %s", first)
			}
		}
	})
}

// Derived progress always lands in [0,100], hits 100 exactly on
// terminal statuses and 0 on pre-execution statuses.
func TestDeriveProgress_Bounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		status := genStatus(t)
		manual := rapid.IntRange(-50, 150).Draw(t, "manual")
		total := rapid.IntRange(0, 12).Draw(t, "total")
		completed := rapid.IntRange(0, total).Draw(t, "completed")

		got := DeriveProgress(items(completed, total), manual, status)
		if got < 0 || got > 100 {
			t.Fatalf("progress %d out of bounds", got)
		}
		if status.IsTerminal() && got != 100 {
			t.Fatalf("terminal status %s must force 100, got %d", status, got)
		}
		switch status {
		case models.StatusDraft, models.StatusPendingApproval, models.StatusApproved:
			if got != 0 {
				t.Fatalf("status %s must force 0, got %d", status, got)
			}
		}
	})
}
