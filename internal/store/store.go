// Package store is the persistence adapter for the CAPA engine. All
// business logic lives above it; implementations only translate typed
// operations into document reads and writes.
package store

import (
	"context"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActionPlanQuery struct {
	OrganizationID string
	Statuses       []models.ActionStatus
	AssigneeID     string
	SourceType     models.SourceType
	DueBefore      time.Time
	DueAfter       time.Time
}

type IncidentQuery struct {
	OrganizationID string
	OpenOnly       bool
	Since          time.Time
	Severities     []models.IncidentSeverity
}

type RecommendationQuery struct {
	OrganizationID string
	Statuses       []models.RecommendationStatus
	Types          []models.RecommendationType
}

// StatusChange is the contended-field write on an ActionPlan. It is
// applied conditionally on the version the caller read.
type StatusChange struct {
	Status      models.ActionStatus
	Progress    int
	CompletedAt *time.Time
	VerifiedAt  *time.Time
	UpdatedBy   string
	UpdatedAt   time.Time
}

type Store interface {
	// NextSequence returns the next per-organization, per-month counter
	// value for reference generation.
	NextSequence(ctx context.Context, org, prefix string, t time.Time) (int64, error)

	CreateActionPlan(ctx context.Context, p *models.ActionPlan) error
	ActionPlan(ctx context.Context, org string, id primitive.ObjectID) (*models.ActionPlan, error)
	ActionPlans(ctx context.Context, q ActionPlanQuery) ([]models.ActionPlan, error)
	ApplyStatusChange(ctx context.Context, org string, id primitive.ObjectID, expectVersion int64, change StatusChange) error
	SetProgress(ctx context.Context, org string, id primitive.ObjectID, progress int, by string, at time.Time) error
	AddChecklistItem(ctx context.Context, org string, id primitive.ObjectID, item models.ChecklistItem) error
	SetChecklistItem(ctx context.Context, org string, id, itemID primitive.ObjectID, completed bool, by string, at time.Time) error
	AppendComment(ctx context.Context, org string, id primitive.ObjectID, comment models.Comment) error
	DeleteActionPlan(ctx context.Context, org string, id primitive.ObjectID) error

	CreateIncident(ctx context.Context, in *models.Incident) error
	Incident(ctx context.Context, org string, id primitive.ObjectID) (*models.Incident, error)
	Incidents(ctx context.Context, q IncidentQuery) ([]models.Incident, error)
	LinkCapaToIncident(ctx context.Context, org string, incidentID primitive.ObjectID, capaID string) error

	CreateAudit(ctx context.Context, a *models.Audit) error
	Audits(ctx context.Context, org string) ([]models.Audit, error)

	CreateTrainingPlan(ctx context.Context, t *models.TrainingPlan) error
	TrainingPlans(ctx context.Context, org string) ([]models.TrainingPlan, error)
	DeleteTrainingPlan(ctx context.Context, org string, id primitive.ObjectID) error

	CreateEquipmentRecommendation(ctx context.Context, e *models.EquipmentRecommendation) error
	EquipmentRecommendations(ctx context.Context, org string) ([]models.EquipmentRecommendation, error)
	DeleteEquipmentRecommendation(ctx context.Context, org string, id primitive.ObjectID) error

	CreateRecommendation(ctx context.Context, r *models.Recommendation) error
	Recommendation(ctx context.Context, org string, id primitive.ObjectID) (*models.Recommendation, error)
	Recommendations(ctx context.Context, q RecommendationQuery) ([]models.Recommendation, error)
	// DecideRecommendation transitions pending -> status. Any other
	// current status yields a ConflictError.
	DecideRecommendation(ctx context.Context, org string, id primitive.ObjectID, status models.RecommendationStatus, by string, at time.Time, spawnedID string) error
	DeleteRecommendation(ctx context.Context, org string, id primitive.ObjectID) error

	AppendHistory(ctx context.Context, h *models.HistoryEntry) error
	History(ctx context.Context, org string, limit int64) ([]models.HistoryEntry, error)

	// Purge removes every document belonging to the organization.
	Purge(ctx context.Context, org string) error
}
