package model

import "time"

// CollaborationState is the review workflow status of one section
type CollaborationState string

const (
	StateDraft     CollaborationState = "draft"
	StateInReview  CollaborationState = "in_review"
	StateApproved  CollaborationState = "approved"
	StateRejected  CollaborationState = "rejected"
	StateCompleted CollaborationState = "completed"
)

// StateNone is the pseudo-state of a section with no workflow record yet
const StateNone CollaborationState = ""

// Valid reports whether s is a real workflow state
func (s CollaborationState) Valid() bool {
	switch s {
	case StateDraft, StateInReview, StateApproved, StateRejected, StateCompleted:
		return true
	}
	return false
}

// SignedOff reports whether a section in state s counts as signed off
func (s CollaborationState) SignedOff() bool {
	return s == StateApproved || s == StateCompleted
}

// Comment is an append-only workflow note
type Comment struct {
	ID        string             `json:"id" bson:"id"`
	AuthorID  string             `json:"authorId" bson:"authorId"`
	State     CollaborationState `json:"state" bson:"state"` // state entered with this note
	Body      string             `json:"body" bson:"body"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// SectionCollaborationState is the single workflow record per (Assessment, Section).
// Version increments on every write and guards compare-and-swap updates.
type SectionCollaborationState struct {
	ID           string             `json:"id" bson:"_id"`
	AssessmentID string             `json:"assessmentId" bson:"assessmentId"`
	SectionID    string             `json:"sectionId" bson:"sectionId"`
	CurrentState CollaborationState `json:"currentState" bson:"currentState"`
	AssignedTo   string             `json:"assignedTo" bson:"assignedTo"`
	ReviewedBy   string             `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ApprovedBy   string             `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	Comments     []Comment          `json:"comments" bson:"comments"`
	Version      int64              `json:"version" bson:"version"`
	LastUpdated  time.Time          `json:"lastUpdated" bson:"lastUpdated"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// Clone returns a deep copy so callers can mutate without touching stored state
func (s *SectionCollaborationState) Clone() *SectionCollaborationState {
	if s == nil {
		return nil
	}
	out := *s
	out.Comments = append([]Comment(nil), s.Comments...)
	return &out
}

// ActorRole is the platform-level role carried in an actor's token
type ActorRole string

const (
	RoleParticipant ActorRole = "participant"
	RoleAdmin       ActorRole = "admin"
)

// Actor is whoever attempts a workflow transition
type Actor struct {
	UserID    string    `json:"userId"`
	PersonaID string    `json:"personaId,omitempty"`
	Role      ActorRole `json:"role"`
	CanReview bool      `json:"canReview"`
	Active    bool      `json:"active"`
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// TransitionRequest is the request body for a section workflow transition
type TransitionRequest struct {
	TargetState   CollaborationState `json:"targetState"`
	ExpectedState CollaborationState `json:"expectedState,omitempty"` // optimistic check against a prior read
	AssignTo      string             `json:"assignTo,omitempty"`      // only used when creating the draft
	Comment       string             `json:"comment,omitempty"`
}

// ReassignRequest is the request body for changing a section's assignee
type ReassignRequest struct {
	AssignTo string `json:"assignTo"`
	Comment  string `json:"comment,omitempty"`
}
