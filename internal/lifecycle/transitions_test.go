package lifecycle

import (
	"errors"
	"testing"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
)

func TestCanTransition_FullChain(t *testing.T) {
	chain := []models.ActionStatus{
		models.StatusDraft,
		models.StatusPendingApproval,
		models.StatusApproved,
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusVerified,
		models.StatusClosed,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Errorf("expected %s -> %s to be legal", chain[i], chain[i+1])
		}
	}
}

func TestCanTransition_BlockedPair(t *testing.T) {
	if !CanTransition(models.StatusInProgress, models.StatusBlocked) {
		t.Error("in_progress -> blocked should be legal")
	}
	if !CanTransition(models.StatusBlocked, models.StatusInProgress) {
		t.Error("blocked -> in_progress should be legal")
	}
}

func TestCanTransition_NoBackEdges(t *testing.T) {
	illegal := [][2]models.ActionStatus{
		{models.StatusClosed, models.StatusInProgress},
		{models.StatusCompleted, models.StatusInProgress},
		{models.StatusVerified, models.StatusCompleted},
		{models.StatusApproved, models.StatusDraft},
		{models.StatusInProgress, models.StatusApproved},
		{models.StatusDraft, models.StatusInProgress},
	}
	for _, pair := range illegal {
		if CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be illegal", pair[0], pair[1])
		}
	}
}

func TestValidateTransition_OffTable(t *testing.T) {
	p := &models.ActionPlan{Status: models.StatusClosed}
	err := ValidateTransition(p, models.StatusInProgress)

	var transition *models.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transition.From != models.StatusClosed || transition.To != models.StatusInProgress {
		t.Errorf("error carries wrong endpoints: %v", transition)
	}
}

func TestValidateTransition_RequiresAssignee(t *testing.T) {
	p := &models.ActionPlan{Status: models.StatusPendingApproval}
	err := ValidateTransition(p, models.StatusApproved)

	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Field != "assigneeId" {
		t.Errorf("expected assigneeId validation, got %s", validation.Field)
	}

	p.AssigneeID = "u-1"
	if err := ValidateTransition(p, models.StatusApproved); err != nil {
		t.Errorf("unexpected error with assignee set: %v", err)
	}
}

func TestValidateTransition_RequiresReviewer(t *testing.T) {
	p := &models.ActionPlan{Status: models.StatusCompleted, AssigneeID: "u-1"}
	err := ValidateTransition(p, models.StatusVerified)

	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	p.ReviewerID = "u-2"
	if err := ValidateTransition(p, models.StatusVerified); err != nil {
		t.Errorf("unexpected error with reviewer set: %v", err)
	}
}
