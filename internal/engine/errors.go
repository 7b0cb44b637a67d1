package engine

import (
	"fmt"

	"govready/internal/model"
)

// NotFoundError reports a catalog or record reference that does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ValidationError reports malformed input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ForbiddenTransitionError reports a workflow guard violation
type ForbiddenTransitionError struct {
	From      model.CollaborationState
	To        model.CollaborationState
	ActorRole string // relationship of the actor to the section
}

func (e *ForbiddenTransitionError) Error() string {
	from := string(e.From)
	if from == "" {
		from = "none"
	}
	return fmt.Sprintf("transition %s -> %s not allowed for %s", from, e.To, e.ActorRole)
}

// ConflictError reports a lost optimistic-concurrency race
type ConflictError struct {
	AssessmentID string
	SectionID    string
	Expected     model.CollaborationState
	Actual       model.CollaborationState
}

func (e *ConflictError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("section %s of assessment %s was modified concurrently (expected %s)", e.SectionID, e.AssessmentID, stateName(e.Expected))
	}
	return fmt.Sprintf("section %s of assessment %s is %s, expected %s", e.SectionID, e.AssessmentID, e.Actual, stateName(e.Expected))
}

// ComputationError reports a corrupt scoring input that was skipped
type ComputationError struct {
	QuestionID string
	Reason     string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("response for question %s skipped: %s", e.QuestionID, e.Reason)
}

func stateName(s model.CollaborationState) string {
	if s == model.StateNone {
		return "none"
	}
	return string(s)
}
