package engine

import (
	"strings"
	"time"

	"govready/internal/model"
)

// Actor relationships reported in ForbiddenTransitionError
const (
	RelationInactive    = "inactive"
	RelationAssignee    = "assignee"
	RelationAdmin       = "admin"
	RelationReviewer    = "reviewer"
	RelationParticipant = "participant"
)

type edge struct {
	from model.CollaborationState
	to   model.CollaborationState
}

type guard func(actor model.Actor, current *model.SectionCollaborationState) bool

// transitions is the complete guard table; any pair not listed is forbidden
var transitions = map[edge]guard{
	{model.StateNone, model.StateDraft}:         anyParticipant,
	{model.StateDraft, model.StateInReview}:     isAssignee,
	{model.StateInReview, model.StateApproved}:  independentReviewer,
	{model.StateInReview, model.StateRejected}:  independentReviewer,
	{model.StateApproved, model.StateCompleted}: assigneeOrAdmin,
	{model.StateRejected, model.StateDraft}:     isAssignee,
}

func anyParticipant(model.Actor, *model.SectionCollaborationState) bool { return true }

func isAssignee(a model.Actor, s *model.SectionCollaborationState) bool {
	return s != nil && s.AssignedTo != "" && a.UserID == s.AssignedTo
}

// independentReviewer enforces segregation of duties: the assignee never reviews
// their own section, even with review capability.
func independentReviewer(a model.Actor, s *model.SectionCollaborationState) bool {
	return (a.CanReview || a.IsAdmin()) && !isAssignee(a, s)
}

func assigneeOrAdmin(a model.Actor, s *model.SectionCollaborationState) bool {
	return isAssignee(a, s) || a.IsAdmin()
}

func relationship(a model.Actor, s *model.SectionCollaborationState) string {
	switch {
	case !a.Active:
		return RelationInactive
	case isAssignee(a, s):
		return RelationAssignee
	case a.IsAdmin():
		return RelationAdmin
	case a.CanReview:
		return RelationReviewer
	default:
		return RelationParticipant
	}
}

func currentState(s *model.SectionCollaborationState) model.CollaborationState {
	if s == nil {
		return model.StateNone
	}
	return s.CurrentState
}

// CheckTransition applies the guard table. current is nil when the section has no
// workflow record yet.
func CheckTransition(current *model.SectionCollaborationState, target model.CollaborationState, actor model.Actor) error {
	forbidden := &ForbiddenTransitionError{
		From:      currentState(current),
		To:        target,
		ActorRole: relationship(actor, current),
	}
	if !actor.Active || strings.TrimSpace(actor.UserID) == "" {
		return forbidden
	}
	g, ok := transitions[edge{from: currentState(current), to: target}]
	if !ok || !g(actor, current) {
		return forbidden
	}
	return nil
}

// Transition is one requested workflow change. IDs and the clock are supplied by
// the caller so applying a transition stays deterministic.
type Transition struct {
	AssessmentID string
	SectionID    string
	Target       model.CollaborationState
	Actor        model.Actor
	AssignTo     string // assignee for a newly created draft; defaults to the actor
	Comment      string
	RecordID     string // used when creating the record
	CommentID    string
	Now          time.Time
}

// ApplyTransition validates t against current and returns the next record.
// current is never modified.
func ApplyTransition(current *model.SectionCollaborationState, t Transition) (*model.SectionCollaborationState, error) {
	if !t.Target.Valid() {
		return nil, &ValidationError{Field: "targetState", Reason: "unknown state " + string(t.Target)}
	}
	if err := CheckTransition(current, t.Target, t.Actor); err != nil {
		return nil, err
	}

	var next *model.SectionCollaborationState
	if current == nil {
		assignee := strings.TrimSpace(t.AssignTo)
		if assignee == "" {
			assignee = t.Actor.UserID
		}
		next = &model.SectionCollaborationState{
			ID:           t.RecordID,
			AssessmentID: t.AssessmentID,
			SectionID:    t.SectionID,
			CurrentState: t.Target,
			AssignedTo:   assignee,
			Comments:     []model.Comment{},
			Version:      1,
			CreatedAt:    t.Now,
		}
	} else {
		next = current.Clone()
		next.CurrentState = t.Target
		next.Version++
	}

	switch t.Target {
	case model.StateApproved:
		next.ReviewedBy = t.Actor.UserID
		next.ApprovedBy = t.Actor.UserID
	case model.StateRejected:
		next.ReviewedBy = t.Actor.UserID
		next.ApprovedBy = ""
	}

	next.LastUpdated = t.Now
	appendComment(next, t.CommentID, t.Actor.UserID, t.Comment, t.Now)
	return next, nil
}

// Reassign changes the assignee of an open section. Only active admins may
// reassign, and completed sections are frozen.
func Reassign(current *model.SectionCollaborationState, actor model.Actor, assignTo, comment, commentID string, now time.Time) (*model.SectionCollaborationState, error) {
	if current == nil {
		return nil, &ValidationError{Field: "section", Reason: "has no workflow record to reassign"}
	}
	if !actor.Active || !actor.IsAdmin() || current.CurrentState == model.StateCompleted {
		return nil, &ForbiddenTransitionError{
			From:      current.CurrentState,
			To:        current.CurrentState,
			ActorRole: relationship(actor, current),
		}
	}
	assignTo = strings.TrimSpace(assignTo)
	if assignTo == "" {
		return nil, &ValidationError{Field: "assignTo", Reason: "is required"}
	}

	next := current.Clone()
	next.AssignedTo = assignTo
	next.Version++
	next.LastUpdated = now
	appendComment(next, commentID, actor.UserID, comment, now)
	return next, nil
}

func appendComment(s *model.SectionCollaborationState, id, author, body string, now time.Time) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	s.Comments = append(s.Comments, model.Comment{
		ID:        id,
		AuthorID:  author,
		State:     s.CurrentState,
		Body:      body,
		CreatedAt: now,
	})
}
