package lifecycle

import (
	"math"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
)

// DeriveProgress computes the progress an action plan must carry for the
// given status. Terminal statuses force 100 and pre-execution statuses
// force 0. While executing (in progress or blocked), a non-empty
// checklist wins over the manual value; with no checklist the manual
// value is kept, clamped to [0,99].
func DeriveProgress(items []models.ChecklistItem, manual int, status models.ActionStatus) int {
	if status.IsTerminal() {
		return 100
	}
	switch status {
	case models.StatusDraft, models.StatusPendingApproval, models.StatusApproved:
		return 0
	}
	if len(items) > 0 {
		return ChecklistRatio(items)
	}
	return clamp(manual, 0, 99)
}

// ChecklistRatio is round(100 * completed / total).
func ChecklistRatio(items []models.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(items))))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
