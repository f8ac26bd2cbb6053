package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HistoryKind string

const (
	HistoryRuleRun  HistoryKind = "rule_run"
	HistoryDecision HistoryKind = "decision"
)

// HistoryEntry is the append-only trail of pattern engine runs and
// recommendation decisions.
type HistoryEntry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationID string             `bson:"organizationid" json:"organizationId"`
	Kind           HistoryKind        `bson:"kind" json:"kind"`

	// Rule run fields.
	IncidentCount int      `bson:"incidentcount" json:"incidentCount,omitempty"`
	EmittedIDs    []string `bson:"emittedids" json:"emittedIds,omitempty"`
	Note          string   `bson:"note" json:"note,omitempty"`

	// Decision fields.
	Actor            string `bson:"actor" json:"actor,omitempty"`
	RecommendationID string `bson:"recommendationid" json:"recommendationId,omitempty"`
	Decision         string `bson:"decision" json:"decision,omitempty"`
	SpawnedID        string `bson:"spawnedid" json:"spawnedId,omitempty"`

	CreatedAt time.Time `bson:"createdat" json:"createdAt"`
}
