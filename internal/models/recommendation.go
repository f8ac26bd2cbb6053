package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RecommendationType string

const (
	RecommendationAction    RecommendationType = "action"
	RecommendationTraining  RecommendationType = "training"
	RecommendationEquipment RecommendationType = "equipment"
)

type RecommendationStatus string

const (
	RecommendationPending  RecommendationStatus = "pending"
	RecommendationAccepted RecommendationStatus = "accepted"
	RecommendationRejected RecommendationStatus = "rejected"
	RecommendationModified RecommendationStatus = "modified"
)

// BasedOn records the evidence a recommendation rests on.
type BasedOn struct {
	IncidentIDs       []string `bson:"incidentids" json:"incidentIds,omitempty"`
	RiskAssessmentIDs []string `bson:"riskassessmentids" json:"riskAssessmentIds,omitempty"`
	HistoricalData    bool     `bson:"historicaldata" json:"historicalData"`
}

// SuggestedItem is the entity a recommendation proposes to create. Which
// fields matter depends on the recommendation type.
type SuggestedItem struct {
	Title          string         `bson:"title" json:"title"`
	Description    string         `bson:"description" json:"description"`
	Category       ActionCategory `bson:"category" json:"category,omitempty"`
	Priority       ActionPriority `bson:"priority" json:"priority,omitempty"`
	DueDate        time.Time      `bson:"duedate" json:"dueDate,omitempty"`
	TargetAudience string         `bson:"targetaudience" json:"targetAudience,omitempty"`
	EquipmentType  string         `bson:"equipmenttype" json:"equipmentType,omitempty"`
	EstimatedCost  float64        `bson:"estimatedcost" json:"estimatedCost,omitempty"`

	LinkedTrainingIDs  []string `bson:"linkedtrainingids" json:"linkedTrainingIds,omitempty"`
	LinkedEquipmentIDs []string `bson:"linkedequipmentids" json:"linkedEquipmentIds,omitempty"`
}

// Recommendation is a pattern engine or external analysis proposal
// awaiting a human decision.
type Recommendation struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationID string               `bson:"organizationid" json:"organizationId"`
	Type           RecommendationType   `bson:"type" json:"type"`
	Status         RecommendationStatus `bson:"status" json:"status"`
	Confidence     int                  `bson:"confidence" json:"confidence"`
	Reasoning      string               `bson:"reasoning" json:"reasoning"`
	SuggestedItem  SuggestedItem        `bson:"suggesteditem" json:"suggestedItem"`
	BasedOn        BasedOn              `bson:"basedon" json:"basedOn"`

	DecidedBy string     `bson:"decidedby" json:"decidedBy,omitempty"`
	DecidedAt *time.Time `bson:"decidedat" json:"decidedAt,omitempty"`
	// SpawnedID is the hex id of the entity an accept or modify created.
	SpawnedID string    `bson:"spawnedid" json:"spawnedId,omitempty"`
	CreatedAt time.Time `bson:"createdat" json:"createdAt"`
}

// DedupKey identifies a recommendation by its type and evidence set,
// independent of incident ordering. Two candidates with the same key are
// the same finding.
func (r *Recommendation) DedupKey() string {
	ids := append([]string(nil), r.BasedOn.IncidentIDs...)
	sort.Strings(ids)
	return string(r.Type) + "|" + strings.Join(ids, ",")
}
