package models

import "fmt"

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a status change outside the transition
// table.
type InvalidTransitionError struct {
	From ActionStatus
	To   ActionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// NotFoundError reports a missing entity within the caller's
// organization.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConcurrencyConflict reports a conditional write that lost to a
// concurrent writer. Safe to retry after re-reading.
type ConcurrencyConflict struct {
	Entity string
	ID     string
}

func (e *ConcurrencyConflict) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Entity, e.ID)
}

// ExternalServiceError reports a failing or misbehaving collaborator.
type ExternalServiceError struct {
	Service string
	Reason  string
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %s", e.Service, e.Reason)
}

// ConflictError reports an operation that clashes with the entity's
// current state, such as deciding an already-decided recommendation.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
