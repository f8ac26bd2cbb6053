package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IncidentSeverity string

const (
	SeverityMinor    IncidentSeverity = "minor"
	SeverityModerate IncidentSeverity = "moderate"
	SeveritySevere   IncidentSeverity = "severe"
	SeverityCritical IncidentSeverity = "critical"
)

// Incident is a reported safety event. The pattern engine only reads
// incidents; CAPA links are the one field it appends to.
type Incident struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationID string             `bson:"organizationid" json:"organizationId"`
	Reference      string             `bson:"reference" json:"reference"`
	Type           string             `bson:"type" json:"type"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description,omitempty"`
	Severity       IncidentSeverity   `bson:"severity" json:"severity"`
	Category       string             `bson:"category" json:"category"`
	Status         string             `bson:"status" json:"status"`
	Location       string             `bson:"location" json:"location,omitempty"`
	OccurredAt     time.Time          `bson:"occurredat" json:"occurredAt"`
	ReportedBy     string             `bson:"reportedby" json:"reportedBy"`
	LinkedCapaIDs  []string           `bson:"linkedcapaids" json:"linkedCapaIds,omitempty"`
	CreatedAt      time.Time          `bson:"createdat" json:"createdAt"`
}

// Open reports whether the incident still counts for pattern analysis.
func (in *Incident) Open() bool {
	return in.Status != "closed" && in.Status != "resolved"
}

// Audit is a completed compliance audit whose findings can seed
// preventive actions.
type Audit struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationID string             `bson:"organizationid" json:"organizationId"`
	Reference      string             `bson:"reference" json:"reference"`
	Title          string             `bson:"title" json:"title"`
	Norm           string             `bson:"norm" json:"norm,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Findings       []string           `bson:"findings" json:"findings,omitempty"`
	PerformedAt    time.Time          `bson:"performedat" json:"performedAt"`
	CreatedAt      time.Time          `bson:"createdat" json:"createdAt"`
}
