// Package lifecycle owns the CAPA state machine: status transitions,
// progress derivation and the pure view functions used for board and
// calendar grouping.
package lifecycle

import (
	"context"
	"log"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/graph"
	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferencePrefix prefixes generated CAPA references.
const ReferencePrefix = "CAPA"

type Engine struct {
	store  store.Store
	linker graph.Linker
	now    func() time.Time
}

// New builds an engine on the given store. The linker mirrors entity
// links to the graph store and may be nil.
func New(s store.Store, linker graph.Linker) *Engine {
	return &Engine{store: s, linker: linker, now: time.Now}
}

// CreateActionPlan validates and persists a new plan. Status starts at
// draft (progress 0) unless the caller provided a valid initial status.
// A plan created from an incident gets its id appended to the incident's
// linked CAPA set.
func (e *Engine) CreateActionPlan(ctx context.Context, p *models.ActionPlan) error {
	if p.OrganizationID == "" {
		return &models.ValidationError{Field: "organizationId", Reason: "required"}
	}
	if p.Title == "" {
		return &models.ValidationError{Field: "title", Reason: "required"}
	}
	switch p.Category {
	case models.CategoryCorrective, models.CategoryPreventive:
	default:
		return &models.ValidationError{Field: "category", Reason: "must be corrective or preventive"}
	}
	switch p.Priority {
	case models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return &models.ValidationError{Field: "priority", Reason: "unknown priority"}
	}
	if p.SourceType == "" {
		p.SourceType = models.SourceManual
	}
	switch p.SourceType {
	case models.SourceManual, models.SourceIncident, models.SourceAudit,
		models.SourceRiskAssessment, models.SourceObservation, models.SourceAISuggestion:
	default:
		return &models.ValidationError{Field: "sourceType", Reason: "unknown source type"}
	}
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	if p.Status != models.StatusDraft {
		return &models.ValidationError{Field: "status", Reason: "new plans start at draft"}
	}
	p.Progress = 0
	p.Version = 0

	now := e.now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if p.Reference == "" {
		seq, err := e.store.NextSequence(ctx, p.OrganizationID, ReferencePrefix, now)
		if err != nil {
			return err
		}
		p.Reference = models.FormatReference(ReferencePrefix, now, seq)
	}

	if err := e.store.CreateActionPlan(ctx, p); err != nil {
		return err
	}

	if p.SourceIncidentID != "" {
		incidentID, err := primitive.ObjectIDFromHex(p.SourceIncidentID)
		if err != nil {
			return &models.ValidationError{Field: "sourceIncidentId", Reason: "invalid id format"}
		}
		if err := e.store.LinkCapaToIncident(ctx, p.OrganizationID, incidentID, p.ID.Hex()); err != nil {
			return err
		}
		e.mirrorLink(ctx, p.OrganizationID, "capa", p.ID.Hex(), "ADDRESSES", "incident", p.SourceIncidentID)
	}
	return nil
}

// Transition moves a plan to the target status, stamping completion and
// verification times on entry and recomputing progress. The write is
// conditional on the version the plan was read at; a stale version
// surfaces as ConcurrencyConflict.
func (e *Engine) Transition(ctx context.Context, org string, id primitive.ObjectID, to models.ActionStatus, actor string) (*models.ActionPlan, error) {
	p, err := e.store.ActionPlan(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(p, to); err != nil {
		return nil, err
	}

	now := e.now()
	change := store.StatusChange{
		Status:    to,
		Progress:  DeriveProgress(p.ChecklistItems, p.Progress, to),
		UpdatedBy: actor,
		UpdatedAt: now,
	}
	switch to {
	case models.StatusCompleted:
		change.CompletedAt = &now
	case models.StatusVerified:
		change.VerifiedAt = &now
	}

	if err := e.store.ApplyStatusChange(ctx, org, id, p.Version, change); err != nil {
		return nil, err
	}
	return e.store.ActionPlan(ctx, org, id)
}

// SetManualProgress records an explicit progress value. Only legal while
// executing with an empty checklist; a non-empty checklist owns progress.
func (e *Engine) SetManualProgress(ctx context.Context, org string, id primitive.ObjectID, value int, actor string) (*models.ActionPlan, error) {
	p, err := e.store.ActionPlan(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusInProgress && p.Status != models.StatusBlocked {
		return nil, &models.ValidationError{Field: "progress", Reason: "only adjustable while executing"}
	}
	if len(p.ChecklistItems) > 0 {
		return nil, &models.ValidationError{Field: "progress", Reason: "derived from checklist, not settable"}
	}
	if err := e.store.SetProgress(ctx, org, id, clamp(value, 0, 99), actor, e.now()); err != nil {
		return nil, err
	}
	return e.store.ActionPlan(ctx, org, id)
}

// AddChecklistItem appends one item. Order continues from the current
// tail so concurrent appends never renumber existing items.
func (e *Engine) AddChecklistItem(ctx context.Context, org string, id primitive.ObjectID, description string, actor string) (*models.ChecklistItem, error) {
	if description == "" {
		return nil, &models.ValidationError{Field: "description", Reason: "required"}
	}
	p, err := e.store.ActionPlan(ctx, org, id)
	if err != nil {
		return nil, err
	}
	item := models.ChecklistItem{
		ID:          primitive.NewObjectID(),
		Description: description,
		Order:       len(p.ChecklistItems),
	}
	if err := e.store.AddChecklistItem(ctx, org, id, item); err != nil {
		return nil, err
	}
	if err := e.syncChecklistProgress(ctx, org, id, actor); err != nil {
		return nil, err
	}
	return &item, nil
}

// ToggleChecklistItem flips one item's completion and resyncs derived
// progress. Touching a single array element keeps concurrent edits to
// different items from clobbering each other.
func (e *Engine) ToggleChecklistItem(ctx context.Context, org string, id, itemID primitive.ObjectID, completed bool, actor string) (*models.ActionPlan, error) {
	if err := e.store.SetChecklistItem(ctx, org, id, itemID, completed, actor, e.now()); err != nil {
		return nil, err
	}
	if err := e.syncChecklistProgress(ctx, org, id, actor); err != nil {
		return nil, err
	}
	return e.store.ActionPlan(ctx, org, id)
}

func (e *Engine) syncChecklistProgress(ctx context.Context, org string, id primitive.ObjectID, actor string) error {
	p, err := e.store.ActionPlan(ctx, org, id)
	if err != nil {
		return err
	}
	if p.Status != models.StatusInProgress && p.Status != models.StatusBlocked {
		return nil
	}
	if len(p.ChecklistItems) == 0 {
		return nil
	}
	derived := ChecklistRatio(p.ChecklistItems)
	if derived == p.Progress {
		return nil
	}
	return e.store.SetProgress(ctx, org, id, derived, actor, e.now())
}

// AppendComment adds one comment without touching the rest of the
// document.
func (e *Engine) AppendComment(ctx context.Context, org string, id primitive.ObjectID, author, text string) (*models.Comment, error) {
	if text == "" {
		return nil, &models.ValidationError{Field: "text", Reason: "required"}
	}
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Author:    author,
		Text:      text,
		CreatedAt: e.now(),
	}
	if err := e.store.AppendComment(ctx, org, id, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateTrainingPlan persists a training plan spawned by a
// recommendation or entered manually.
func (e *Engine) CreateTrainingPlan(ctx context.Context, t *models.TrainingPlan) error {
	if t.OrganizationID == "" {
		return &models.ValidationError{Field: "organizationId", Reason: "required"}
	}
	if t.Title == "" {
		return &models.ValidationError{Field: "title", Reason: "required"}
	}
	if t.Status == "" {
		t.Status = "planned"
	}
	t.CreatedAt = e.now()
	return e.store.CreateTrainingPlan(ctx, t)
}

// CreateEquipmentRecommendation persists an equipment purchase proposal.
func (e *Engine) CreateEquipmentRecommendation(ctx context.Context, eq *models.EquipmentRecommendation) error {
	if eq.OrganizationID == "" {
		return &models.ValidationError{Field: "organizationId", Reason: "required"}
	}
	if eq.Title == "" {
		return &models.ValidationError{Field: "title", Reason: "required"}
	}
	if eq.Status == "" {
		eq.Status = "proposed"
	}
	eq.CreatedAt = e.now()
	return e.store.CreateEquipmentRecommendation(ctx, eq)
}

// Kanban reads the organization's plans and buckets them by column.
func (e *Engine) Kanban(ctx context.Context, org string) (map[KanbanColumnName][]models.ActionPlan, error) {
	plans, err := e.store.ActionPlans(ctx, store.ActionPlanQuery{OrganizationID: org})
	if err != nil {
		return nil, err
	}
	now := e.now()
	board := map[KanbanColumnName][]models.ActionPlan{}
	for _, p := range plans {
		col := KanbanColumn(p.Priority, p.Status, IsOverdue(&p, now))
		board[col] = append(board[col], p)
	}
	return board, nil
}

// Calendar groups plans due in [from, to] by local due date.
func (e *Engine) Calendar(ctx context.Context, org string, from, to time.Time, loc *time.Location) ([]CalendarBucket, error) {
	plans, err := e.store.ActionPlans(ctx, store.ActionPlanQuery{
		OrganizationID: org,
		DueAfter:       from,
		DueBefore:      to,
	})
	if err != nil {
		return nil, err
	}
	return CalendarBuckets(plans, loc), nil
}

// mirrorLink writes an edge to the graph store, best effort. A missing
// or failing graph never blocks the primary write.
func (e *Engine) mirrorLink(ctx context.Context, org, fromKind, fromID, rel, toKind, toID string) {
	if e.linker == nil {
		return
	}
	if err := e.linker.Link(ctx, org, fromKind, fromID, rel, toKind, toID); err != nil {
		log.Printf("graph link %s %s -[%s]-> %s %s failed: %v", fromKind, fromID, rel, toKind, toID, err)
	}
}
