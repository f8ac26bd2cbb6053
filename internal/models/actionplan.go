package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActionCategory string

const (
	CategoryCorrective ActionCategory = "corrective"
	CategoryPreventive ActionCategory = "preventive"
)

type ActionPriority string

const (
	PriorityCritical ActionPriority = "critical"
	PriorityHigh     ActionPriority = "high"
	PriorityMedium   ActionPriority = "medium"
	PriorityLow      ActionPriority = "low"
)

type ActionStatus string

const (
	StatusDraft           ActionStatus = "draft"
	StatusPendingApproval ActionStatus = "pending_approval"
	StatusApproved        ActionStatus = "approved"
	StatusInProgress      ActionStatus = "in_progress"
	StatusBlocked         ActionStatus = "blocked"
	StatusCompleted       ActionStatus = "completed"
	StatusVerified        ActionStatus = "verified"
	StatusClosed          ActionStatus = "closed"
)

// IsTerminal reports whether the work itself is finished. Terminal plans
// always carry progress 100 and never count as overdue.
func (s ActionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusVerified, StatusClosed:
		return true
	}
	return false
}

// SourceType records where a plan came from.
type SourceType string

const (
	SourceManual         SourceType = "manual"
	SourceIncident       SourceType = "incident"
	SourceAudit          SourceType = "audit"
	SourceRiskAssessment SourceType = "risk_assessment"
	SourceObservation    SourceType = "observation"
	SourceAISuggestion   SourceType = "ai_suggestion"
)

type ChecklistItem struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Description string             `bson:"description" json:"description"`
	Order       int                `bson:"order" json:"order"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedBy string             `bson:"completedby" json:"completedBy,omitempty"`
	CompletedAt *time.Time         `bson:"completedat" json:"completedAt,omitempty"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Author    string             `bson:"author" json:"author"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdat" json:"createdAt"`
}

// ActionPlan is a corrective or preventive action. Status, progress and
// the audit stamps are contended fields; writers go through the store's
// conditional update keyed on Version.
type ActionPlan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationID string             `bson:"organizationid" json:"organizationId"`
	Reference      string             `bson:"reference" json:"reference"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Category       ActionCategory     `bson:"category" json:"category"`
	Priority       ActionPriority     `bson:"priority" json:"priority"`
	Status         ActionStatus       `bson:"status" json:"status"`
	Progress       int                `bson:"progress" json:"progress"`
	Version        int64              `bson:"version" json:"version"`

	AssigneeID   string `bson:"assigneeid" json:"assigneeId"`
	AssigneeName string `bson:"assigneename" json:"assigneeName,omitempty"`
	ReviewerID   string `bson:"reviewerid" json:"reviewerId,omitempty"`

	DueDate        time.Time `bson:"duedate" json:"dueDate"`
	StartDate      time.Time `bson:"startdate" json:"startDate,omitempty"`
	EndDate        time.Time `bson:"enddate" json:"endDate,omitempty"`
	EstimatedHours float64   `bson:"estimatedhours" json:"estimatedHours,omitempty"`
	RequiredSkills []string  `bson:"requiredskills" json:"requiredSkills,omitempty"`

	SourceType       SourceType `bson:"sourcetype" json:"sourceType"`
	SourceIncidentID string     `bson:"sourceincidentid" json:"sourceIncidentId,omitempty"`
	SourceAuditID    string     `bson:"sourceauditid" json:"sourceAuditId,omitempty"`

	LinkedTrainingIDs  []string `bson:"linkedtrainingids" json:"linkedTrainingIds,omitempty"`
	LinkedEquipmentIDs []string `bson:"linkedequipmentids" json:"linkedEquipmentIds,omitempty"`
	LinkedDocumentIDs  []string `bson:"linkeddocumentids" json:"linkedDocumentIds,omitempty"`

	AIGenerated   bool     `bson:"aigenerated" json:"aiGenerated"`
	AIConfidence  int      `bson:"aiconfidence" json:"aiConfidence,omitempty"`
	AISuggestions []string `bson:"aisuggestions" json:"aiSuggestions,omitempty"`

	ChecklistItems []ChecklistItem `bson:"checklistitems" json:"checklistItems"`
	Comments       []Comment       `bson:"comments" json:"comments"`

	CompletedAt *time.Time `bson:"completedat" json:"completedAt,omitempty"`
	VerifiedAt  *time.Time `bson:"verifiedat" json:"verifiedAt,omitempty"`
	CreatedBy   string     `bson:"createdby" json:"createdBy"`
	CreatedAt   time.Time  `bson:"createdat" json:"createdAt"`
	UpdatedBy   string     `bson:"updatedby" json:"updatedBy,omitempty"`
	UpdatedAt   time.Time  `bson:"updatedat" json:"updatedAt"`
}
