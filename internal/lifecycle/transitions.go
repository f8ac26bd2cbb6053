package lifecycle

import "github.com/AlaBenAicha/sahtee-sub002/internal/models"

// transitions is the directed status graph. The only back-edge is the
// blocked <-> in_progress pair.
var transitions = map[models.ActionStatus][]models.ActionStatus{
	models.StatusDraft:           {models.StatusPendingApproval},
	models.StatusPendingApproval: {models.StatusApproved},
	models.StatusApproved:        {models.StatusInProgress},
	models.StatusInProgress:      {models.StatusBlocked, models.StatusCompleted},
	models.StatusBlocked:         {models.StatusInProgress},
	models.StatusCompleted:       {models.StatusVerified},
	models.StatusVerified:        {models.StatusClosed},
	models.StatusClosed:          {},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to models.ActionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks the table and the required fields of the
// target status.
func ValidateTransition(p *models.ActionPlan, to models.ActionStatus) error {
	if !CanTransition(p.Status, to) {
		return &models.InvalidTransitionError{From: p.Status, To: to}
	}
	switch to {
	case models.StatusApproved, models.StatusInProgress:
		if p.AssigneeID == "" {
			return &models.ValidationError{Field: "assigneeId", Reason: "required before " + string(to)}
		}
	case models.StatusVerified:
		if p.ReviewerID == "" {
			return &models.ValidationError{Field: "reviewerId", Reason: "required before verification"}
		}
	}
	return nil
}
