package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingPlan is a scheduled training, usually spawned from an accepted
// training recommendation.
type TrainingPlan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationID string             `bson:"organizationid" json:"organizationId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description,omitempty"`
	TargetAudience string             `bson:"targetaudience" json:"targetAudience,omitempty"`
	ScheduledFor   time.Time          `bson:"scheduledfor" json:"scheduledFor,omitempty"`
	Status         string             `bson:"status" json:"status"`
	AIGenerated    bool               `bson:"aigenerated" json:"aiGenerated"`
	AIConfidence   int                `bson:"aiconfidence" json:"aiConfidence,omitempty"`
	CreatedBy      string             `bson:"createdby" json:"createdBy"`
	CreatedAt      time.Time          `bson:"createdat" json:"createdAt"`
}

// EquipmentRecommendation is a protective equipment purchase proposal.
type EquipmentRecommendation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationID string             `bson:"organizationid" json:"organizationId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description,omitempty"`
	EquipmentType  string             `bson:"equipmenttype" json:"equipmentType,omitempty"`
	EstimatedCost  float64            `bson:"estimatedcost" json:"estimatedCost,omitempty"`
	Status         string             `bson:"status" json:"status"`
	AIGenerated    bool               `bson:"aigenerated" json:"aiGenerated"`
	AIConfidence   int                `bson:"aiconfidence" json:"aiConfidence,omitempty"`
	CreatedBy      string             `bson:"createdby" json:"createdBy"`
	CreatedAt      time.Time          `bson:"createdat" json:"createdAt"`
}
