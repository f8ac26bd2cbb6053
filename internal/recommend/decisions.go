package recommend

import (
	"context"
	"log"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Accept spawns the suggested entity and marks the recommendation
// accepted. Only pending recommendations can be accepted; anything else
// is a ConflictError. If spawning fails the recommendation stays
// pending, and if marking fails the spawned entity is removed again, so
// the pair never half-applies.
func (e *Engine) Accept(ctx context.Context, org string, id primitive.ObjectID, actor string) (string, error) {
	return e.decide(ctx, org, id, actor, models.RecommendationAccepted, nil)
}

// Modify merges the overrides onto the suggested item before spawning;
// otherwise identical to Accept. Zero-valued override fields keep the
// suggested value. The spawned entity still counts as AI generated.
func (e *Engine) Modify(ctx context.Context, org string, id primitive.ObjectID, actor string, overrides models.SuggestedItem) (string, error) {
	return e.decide(ctx, org, id, actor, models.RecommendationModified, &overrides)
}

// Reject marks the recommendation rejected without creating anything.
// Rejecting an already rejected recommendation is a no-op.
func (e *Engine) Reject(ctx context.Context, org string, id primitive.ObjectID, actor string) error {
	rec, err := e.store.Recommendation(ctx, org, id)
	if err != nil {
		return err
	}
	if rec.Status == models.RecommendationRejected {
		return nil
	}
	if err := e.store.DecideRecommendation(ctx, org, id, models.RecommendationRejected, actor, e.now(), ""); err != nil {
		return err
	}
	e.recordDecision(ctx, org, id.Hex(), actor, "rejected", "")
	return nil
}

func (e *Engine) decide(ctx context.Context, org string, id primitive.ObjectID, actor string, status models.RecommendationStatus, overrides *models.SuggestedItem) (string, error) {
	rec, err := e.store.Recommendation(ctx, org, id)
	if err != nil {
		return "", err
	}
	if rec.Status != models.RecommendationPending {
		return "", &models.ConflictError{Reason: "recommendation " + id.Hex() + " already decided"}
	}

	item := rec.SuggestedItem
	if overrides != nil {
		item = mergeSuggestedItem(item, *overrides)
	}

	spawnedID, cleanup, err := e.spawn(ctx, org, rec, item, actor)
	if err != nil {
		return "", err
	}

	if err := e.store.DecideRecommendation(ctx, org, id, status, actor, e.now(), spawnedID); err != nil {
		if cleanupErr := cleanup(ctx); cleanupErr != nil {
			log.Printf("rollback of spawned entity %s failed: %v", spawnedID, cleanupErr)
		}
		return "", err
	}
	e.recordDecision(ctx, org, id.Hex(), actor, string(status), spawnedID)
	return spawnedID, nil
}

type cleanupFunc func(ctx context.Context) error

// spawn creates the entity a recommendation proposes and returns its id
// together with a compensating delete.
func (e *Engine) spawn(ctx context.Context, org string, rec *models.Recommendation, item models.SuggestedItem, actor string) (string, cleanupFunc, error) {
	switch rec.Type {
	case models.RecommendationAction:
		category := item.Category
		if category == "" {
			category = models.CategoryPreventive
		}
		priority := item.Priority
		if priority == "" {
			priority = models.PriorityMedium
		}
		plan := &models.ActionPlan{
			OrganizationID:     org,
			Title:              item.Title,
			Description:        item.Description,
			Category:           category,
			Priority:           priority,
			DueDate:            item.DueDate,
			SourceType:         models.SourceAISuggestion,
			LinkedTrainingIDs:  item.LinkedTrainingIDs,
			LinkedEquipmentIDs: item.LinkedEquipmentIDs,
			AIGenerated:        true,
			AIConfidence:       rec.Confidence,
			AISuggestions:      []string{rec.Reasoning},
			CreatedBy:          actor,
		}
		if len(rec.BasedOn.IncidentIDs) > 0 {
			plan.SourceIncidentID = rec.BasedOn.IncidentIDs[0]
		}
		if err := e.lifecycle.CreateActionPlan(ctx, plan); err != nil {
			return "", nil, err
		}
		// The lifecycle engine linked the source incident; link the rest.
		rest := rec.BasedOn.IncidentIDs
		if len(rest) > 0 {
			rest = rest[1:]
		}
		for _, incidentHex := range rest {
			incidentID, err := primitive.ObjectIDFromHex(incidentHex)
			if err != nil {
				continue
			}
			if err := e.store.LinkCapaToIncident(ctx, org, incidentID, plan.ID.Hex()); err != nil {
				log.Printf("linking capa %s to incident %s failed: %v", plan.ID.Hex(), incidentHex, err)
			}
		}
		id := plan.ID
		return id.Hex(), func(ctx context.Context) error {
			return e.store.DeleteActionPlan(ctx, org, id)
		}, nil

	case models.RecommendationTraining:
		training := &models.TrainingPlan{
			OrganizationID: org,
			Title:          item.Title,
			Description:    item.Description,
			TargetAudience: item.TargetAudience,
			ScheduledFor:   item.DueDate,
			AIGenerated:    true,
			AIConfidence:   rec.Confidence,
			CreatedBy:      actor,
		}
		if err := e.lifecycle.CreateTrainingPlan(ctx, training); err != nil {
			return "", nil, err
		}
		id := training.ID
		return id.Hex(), func(ctx context.Context) error {
			return e.store.DeleteTrainingPlan(ctx, org, id)
		}, nil

	case models.RecommendationEquipment:
		equipment := &models.EquipmentRecommendation{
			OrganizationID: org,
			Title:          item.Title,
			Description:    item.Description,
			EquipmentType:  item.EquipmentType,
			EstimatedCost:  item.EstimatedCost,
			AIGenerated:    true,
			AIConfidence:   rec.Confidence,
			CreatedBy:      actor,
		}
		if err := e.lifecycle.CreateEquipmentRecommendation(ctx, equipment); err != nil {
			return "", nil, err
		}
		id := equipment.ID
		return id.Hex(), func(ctx context.Context) error {
			return e.store.DeleteEquipmentRecommendation(ctx, org, id)
		}, nil
	}
	return "", nil, &models.ValidationError{Field: "type", Reason: "unknown recommendation type " + string(rec.Type)}
}

func (e *Engine) recordDecision(ctx context.Context, org, recID, actor, decision, spawnedID string) {
	entry := &models.HistoryEntry{
		OrganizationID:   org,
		Kind:             models.HistoryDecision,
		Actor:            actor,
		RecommendationID: recID,
		Decision:         decision,
		SpawnedID:        spawnedID,
		CreatedAt:        e.now(),
	}
	if err := e.store.AppendHistory(ctx, entry); err != nil {
		log.Printf("appending decision history for %s failed: %v", recID, err)
	}
}

func mergeSuggestedItem(base, overrides models.SuggestedItem) models.SuggestedItem {
	if overrides.Title != "" {
		base.Title = overrides.Title
	}
	if overrides.Description != "" {
		base.Description = overrides.Description
	}
	if overrides.Category != "" {
		base.Category = overrides.Category
	}
	if overrides.Priority != "" {
		base.Priority = overrides.Priority
	}
	if overrides.TargetAudience != "" {
		base.TargetAudience = overrides.TargetAudience
	}
	if overrides.EquipmentType != "" {
		base.EquipmentType = overrides.EquipmentType
	}
	if overrides.EstimatedCost != 0 {
		base.EstimatedCost = overrides.EstimatedCost
	}
	if !overrides.DueDate.IsZero() {
		base.DueDate = overrides.DueDate
	}
	if len(overrides.LinkedTrainingIDs) > 0 {
		base.LinkedTrainingIDs = overrides.LinkedTrainingIDs
	}
	if len(overrides.LinkedEquipmentIDs) > 0 {
		base.LinkedEquipmentIDs = overrides.LinkedEquipmentIDs
	}
	return base
}
